package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrel/parley/internal/core"
	"github.com/okrel/parley/internal/domain"
)

// Chat, rename and status broadcasts trust the caller-provided
// recipient list instead of deriving fan-out from room membership.
// Recipients no longer in the registry are silently skipped.

func (ctl *SignalWSController) handleMsg(sid core.SessionID, data []byte) {
	var p msgPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad msg payload")
		return
	}

	out := onMessageMessage{
		Type:       "onMessage",
		PeerID:     sid,
		PrivateMsg: p.PrivateMsg,
		Name:       p.Name,
		Msg:        p.Msg,
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.RoomID).Bool("private", p.PrivateMsg).Msg("emit onMessage")

	// A private message goes only to its named target; if the target is
	// gone the message is dropped, never rebroadcast.
	if p.PrivateMsg {
		if target, ok := ctl.Store.Lookup(p.PeerID); ok {
			ctl.sendJSON(target, out)
		}
		return
	}

	for _, rid := range p.PeerConnections {
		if target, ok := ctl.Store.Lookup(rid); ok {
			ctl.sendJSON(target, out)
		}
	}
}

func (ctl *SignalWSController) handleCName(sid core.SessionID, data []byte) {
	var p cNamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad cName payload")
		return
	}

	matched, ok := ctl.Store.Rename(domain.RoomID(p.RoomID), p.PeerNameOld, p.PeerNameNew)
	if !ok || len(p.PeerConnections) == 0 {
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.RoomID).Str("peer", string(matched)).
		Str("peer_name", p.PeerNameNew).Msg("emit onCName")

	out := onCNameMessage{
		Type:     "onCName",
		PeerID:   matched,
		PeerName: p.PeerNameNew,
	}
	for _, rid := range p.PeerConnections {
		if target, ok := ctl.Store.Lookup(rid); ok {
			ctl.sendJSON(target, out)
		}
	}
}

func (ctl *SignalWSController) handlePeerStatus(sid core.SessionID, data []byte) {
	var p peerStatusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad peerStatus payload")
		return
	}

	matched := ctl.Store.SetStatus(
		domain.RoomID(p.RoomID), p.PeerName, domain.StatusElement(p.Element), p.Status)
	if matched == 0 || len(p.PeerConnections) == 0 {
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.RoomID).Str("element", p.Element).
		Bool("status", p.Status).Msg("emit onpeerStatus")

	// The broadcast reports the sender's id, not the matched record's.
	out := onPeerStatusMessage{
		Type:    "onpeerStatus",
		PeerID:  sid,
		Element: p.Element,
		Status:  p.Status,
	}
	for _, rid := range p.PeerConnections {
		if target, ok := ctl.Store.Lookup(rid); ok {
			ctl.sendJSON(target, out)
		}
	}
}
