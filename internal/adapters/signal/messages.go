package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/okrel/parley/internal/app"
	"github.com/okrel/parley/internal/core"
)

// Inbound payloads. Fields are not schema-validated: absent fields keep
// their zero value and flow through into state and broadcasts as-is.

type joinPayload struct {
	Channel   string `json:"channel"`
	PeerName  string `json:"peerName"`
	PeerVideo bool   `json:"peerVideo"`
	PeerAudio bool   `json:"peerAudio"`
	PeerHand  bool   `json:"peerHand"`
}

type relayICEPayload struct {
	PeerID       core.SessionID  `json:"peer_id"`
	ICECandidate json.RawMessage `json:"ice_candidate"`
}

type relaySDPPayload struct {
	PeerID             core.SessionID  `json:"peer_id"`
	SessionDescription json.RawMessage `json:"session_description"`
}

type msgPayload struct {
	PeerConnections []core.SessionID `json:"peerConnections"`
	RoomID          string           `json:"room_id"`
	PrivateMsg      bool             `json:"privateMsg"`
	PeerID          core.SessionID   `json:"peer_id"`
	Name            string           `json:"name"`
	Msg             string           `json:"msg"`
}

type cNamePayload struct {
	PeerConnections []core.SessionID `json:"peerConnections"`
	RoomID          string           `json:"room_id"`
	PeerNameOld     string           `json:"peer_name_old"`
	PeerNameNew     string           `json:"peer_name_new"`
}

type peerStatusPayload struct {
	PeerConnections []core.SessionID `json:"peerConnections"`
	RoomID          string           `json:"room_id"`
	PeerName        string           `json:"peer_name"`
	Element         string           `json:"element"`
	Status          bool             `json:"status"`
}

// Outbound messages. Every emission carries its event name in the type
// field so the client can dispatch the same way the server does.

type addPeerMessage struct {
	Type              string             `json:"type"`
	PeerID            core.SessionID     `json:"peer_id"`
	Peers             app.Roster         `json:"peers"`
	ShouldCreateOffer bool               `json:"should_create_offer"`
	ICEServers        []webrtc.ICEServer `json:"iceServers"`
}

type removePeerMessage struct {
	Type   string         `json:"type"`
	PeerID core.SessionID `json:"peer_id"`
}

type iceCandidateMessage struct {
	Type         string          `json:"type"`
	PeerID       core.SessionID  `json:"peer_id"`
	ICECandidate json.RawMessage `json:"ice_candidate"`
}

type sessionDescriptionMessage struct {
	Type               string          `json:"type"`
	PeerID             core.SessionID  `json:"peer_id"`
	SessionDescription json.RawMessage `json:"session_description"`
}

type onMessageMessage struct {
	Type       string         `json:"type"`
	PeerID     core.SessionID `json:"peer_id"`
	PrivateMsg bool           `json:"privateMsg"`
	Name       string         `json:"name"`
	Msg        string         `json:"msg"`
}

type onCNameMessage struct {
	Type     string         `json:"type"`
	PeerID   core.SessionID `json:"peer_id"`
	PeerName string         `json:"peer_name"`
}

type onPeerStatusMessage struct {
	Type    string         `json:"type"`
	PeerID  core.SessionID `json:"peer_id"`
	Element string         `json:"element"`
	Status  bool           `json:"status"`
}
