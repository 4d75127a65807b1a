package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrel/parley/internal/app"
	"github.com/okrel/parley/internal/core"
	"github.com/okrel/parley/internal/domain"
)

func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}

	room := domain.RoomID(p.Channel)
	rec := domain.PeerRecord{
		Name:  p.PeerName,
		Video: p.PeerVideo,
		Audio: p.PeerAudio,
		Hand:  p.PeerHand,
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.Channel).Str("peer_name", p.PeerName).Msg("join")

	res, ok := ctl.Store.Join(sid, room, rec)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).
			Str("room", p.Channel).Msg("already joined")
		return
	}

	// One discovery pair per pre-existing member. The newcomer is always
	// the offer initiator, never the other way around, so glare cannot
	// happen regardless of arrival order.
	for _, ep := range res.Existing {
		ctl.sendJSON(ep.Conn, addPeerMessage{
			Type:              "addPeer",
			PeerID:            sid,
			Peers:             res.Roster,
			ShouldCreateOffer: false,
			ICEServers:        ctl.ICEServers,
		})
		ctl.sendJSON(conn, addPeerMessage{
			Type:              "addPeer",
			PeerID:            ep.SID,
			Peers:             res.Roster,
			ShouldCreateOffer: true,
			ICEServers:        ctl.ICEServers,
		})
		log.Info().Str("module", "signal").Str("sid", string(sid)).
			Str("peer", string(ep.SID)).Msg("emit addPeer")
	}
}

// leavePeer removes sid from one room and sends the bidirectional
// removal notices. Exposed on the controller because disconnect drives
// it once per joined room.
func (ctl *SignalWSController) leavePeer(
	sid core.SessionID,
	conn core.SignalConnection,
	room domain.RoomID,
) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	remaining, ok := ctl.Store.Leave(sid, room)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).
			Str("room", string(room)).Msg("not in room")
		return
	}
	ctl.emitRemovals(sid, conn, remaining)
}

func (ctl *SignalWSController) handleDisconnect(sid core.SessionID, conn core.SignalConnection) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	departures := ctl.Store.Disconnect(sid)
	for _, d := range departures {
		ctl.emitRemovals(sid, conn, d.Remaining)
	}
	conn.Close()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("disconnected")
}

func (ctl *SignalWSController) emitRemovals(
	sid core.SessionID,
	conn core.SignalConnection,
	remaining []app.Endpoint,
) {
	for _, ep := range remaining {
		ctl.sendJSON(ep.Conn, removePeerMessage{Type: "removePeer", PeerID: sid})
		ctl.sendJSON(conn, removePeerMessage{Type: "removePeer", PeerID: ep.SID})
		log.Info().Str("module", "signal").Str("sid", string(sid)).
			Str("peer", string(ep.SID)).Msg("emit removePeer")
	}
}
