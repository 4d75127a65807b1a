package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrel/parley/internal/core"
)

// ICE and SDP relays are pure point-to-point forwards: the payload
// names its target connection, no room lookup is involved, and the
// blob is never parsed. An unknown target means the peer is gone;
// trickle ICE is best-effort, so the candidate is dropped without
// telling the sender.

func (ctl *SignalWSController) handleRelayICE(sid core.SessionID, data []byte) {
	var p relayICEPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad relayICE payload")
		return
	}

	target, ok := ctl.Store.Lookup(p.PeerID)
	if !ok {
		return
	}
	ctl.sendJSON(target, iceCandidateMessage{
		Type:         "iceCandidate",
		PeerID:       sid,
		ICECandidate: p.ICECandidate,
	})
}

func (ctl *SignalWSController) handleRelaySDP(sid core.SessionID, data []byte) {
	var p relaySDPPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad relaySDP payload")
		return
	}

	target, ok := ctl.Store.Lookup(p.PeerID)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("peer", string(p.PeerID)).Msg("relay session description")
	ctl.sendJSON(target, sessionDescriptionMessage{
		Type:               "sessionDescription",
		PeerID:             sid,
		SessionDescription: p.SessionDescription,
	})
}
