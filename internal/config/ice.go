package config

import "github.com/pion/webrtc/v4"

// ICEServers builds the list handed to clients inside every addPeer
// emission. There is always one STUN entry; a TURN entry is appended
// only when enabled. The relay treats the result as opaque.
func ICEServers(cfg *Config) []webrtc.ICEServer {
	servers := []webrtc.ICEServer{
		{URLs: []string{cfg.StunURL}},
	}
	if cfg.TurnEnabled {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{cfg.TurnURL},
			Username:   cfg.TurnUsername,
			Credential: cfg.TurnPassword,
		})
	}
	return servers
}
