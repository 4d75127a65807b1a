package signal

import (
	"testing"

	"github.com/okrel/parley/internal/core"
)

func TestMsgBroadcastToRecipients(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")
	z := connect(ctl, "Z")

	// "ghost" is stale; only live recipients are notified.
	ctl.handleSignal("X", x, []byte(`{"type":"msg","peerConnections":["Y","Z","ghost"],"room_id":"lobby","privateMsg":false,"name":"Alice","msg":"hi all"}`))

	for sid, conn := range map[string]*testConn{"Y": y, "Z": z} {
		msgs := conn.decoded(t)
		if len(msgs) != 1 {
			t.Fatalf("%s got %d frames, want 1", sid, len(msgs))
		}
		m := msgs[0]
		if m["type"] != "onMessage" || m["peer_id"] != "X" || m["msg"] != "hi all" || m["name"] != "Alice" {
			t.Fatalf("%s got %v", sid, m)
		}
		if m["privateMsg"] != false {
			t.Fatalf("%s: privateMsg flag wrong: %v", sid, m)
		}
	}
	if len(x.frames) != 0 {
		t.Fatal("sender echoed its own message")
	}
}

func TestMsgPrivate(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")
	z := connect(ctl, "Z")

	// Private messages ignore the recipient list entirely.
	ctl.handleSignal("X", x, []byte(`{"type":"msg","peerConnections":["Y","Z"],"room_id":"lobby","privateMsg":true,"peer_id":"Y","name":"Alice","msg":"psst"}`))

	if msgs := y.decoded(t); len(msgs) != 1 || msgs[0]["privateMsg"] != true || msgs[0]["peer_id"] != "X" {
		t.Fatalf("private target got %v", msgs)
	}
	if len(z.frames) != 0 {
		t.Fatal("private message leaked to the recipient list")
	}
}

func TestMsgPrivateToGoneTargetIsDropped(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")

	ctl.handleSignal("X", x, []byte(`{"type":"msg","peerConnections":["Y"],"privateMsg":true,"peer_id":"ghost","msg":"psst"}`))

	// No fallback broadcast: a private message either reaches its
	// target or dies.
	if len(y.frames) != 0 || len(x.frames) != 0 {
		t.Fatal("dropped private message produced emissions")
	}
}

func TestCNameRenamesFirstMatch(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")

	ctl.handleSignal("X", x, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	ctl.handleSignal("Y", y, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	x.reset()
	y.reset()

	ctl.handleSignal("Y", y, []byte(`{"type":"cName","peerConnections":["X"],"room_id":"lobby","peer_name_old":"Alice","peer_name_new":"Alicia"}`))

	msgs := x.decoded(t)
	if len(msgs) != 1 || msgs[0]["type"] != "onCName" || msgs[0]["peer_name"] != "Alicia" {
		t.Fatalf("X got %v, want one onCName with the new name", msgs)
	}
	matched := msgs[0]["peer_id"].(string)
	if matched != "X" && matched != "Y" {
		t.Fatalf("onCName names unknown peer %q", matched)
	}

	renamed := 0
	for _, sid := range []string{"X", "Y"} {
		rec, _ := ctl.Store.Peer("lobby", core.SessionID(sid))
		if rec.Name == "Alicia" {
			renamed++
		}
	}
	if renamed != 1 {
		t.Fatalf("renamed %d records, want exactly the first match", renamed)
	}
}

func TestCNameWithoutRecipientsStaysQuiet(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")

	ctl.handleSignal("X", x, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	x.reset()

	ctl.handleSignal("X", x, []byte(`{"type":"cName","peerConnections":[],"room_id":"lobby","peer_name_old":"Alice","peer_name_new":"Alicia"}`))

	if len(x.frames) != 0 {
		t.Fatal("rename with empty recipient list broadcast anyway")
	}
	if rec, _ := ctl.Store.Peer("lobby", "X"); rec.Name != "Alicia" {
		t.Fatalf("record not renamed: %+v", rec)
	}
}

func TestCNameNoMatchNoBroadcast(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")

	ctl.handleSignal("X", x, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	x.reset()

	ctl.handleSignal("Y", y, []byte(`{"type":"cName","peerConnections":["X"],"room_id":"lobby","peer_name_old":"Nobody","peer_name_new":"Anybody"}`))

	if len(x.frames) != 0 {
		t.Fatal("rename without a match broadcast anyway")
	}
}

func TestPeerStatusUpdatesAllMatchesReportsSender(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")
	z := connect(ctl, "Z")

	ctl.handleSignal("X", x, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	ctl.handleSignal("Y", y, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	ctl.handleSignal("Z", z, []byte(`{"type":"join","channel":"lobby","peerName":"Bob"}`))
	x.reset()
	y.reset()
	z.reset()

	ctl.handleSignal("Z", z, []byte(`{"type":"peerStatus","peerConnections":["X","Y"],"room_id":"lobby","peer_name":"Alice","element":"hand","status":true}`))

	for _, sid := range []string{"X", "Y"} {
		rec, _ := ctl.Store.Peer("lobby", core.SessionID(sid))
		if !rec.Hand {
			t.Fatalf("record %s not updated: %+v", sid, rec)
		}
	}

	for sid, conn := range map[string]*testConn{"X": x, "Y": y} {
		msgs := conn.decoded(t)
		if len(msgs) != 1 {
			t.Fatalf("%s got %d frames, want 1", sid, len(msgs))
		}
		m := msgs[0]
		if m["type"] != "onpeerStatus" || m["element"] != "hand" || m["status"] != true {
			t.Fatalf("%s got %v", sid, m)
		}
		// The event reports the sender's connection id, not one of the
		// matched records.
		if m["peer_id"] != "Z" {
			t.Fatalf("%s: peer_id = %v, want sender Z", sid, m["peer_id"])
		}
	}
}

func TestPeerStatusNoMatchNoBroadcast(t *testing.T) {
	ctl := newTestController()
	x := connect(ctl, "X")
	y := connect(ctl, "Y")

	ctl.handleSignal("X", x, []byte(`{"type":"join","channel":"lobby","peerName":"Alice"}`))
	x.reset()

	ctl.handleSignal("Y", y, []byte(`{"type":"peerStatus","peerConnections":["X"],"room_id":"lobby","peer_name":"Nobody","element":"video","status":true}`))

	if len(x.frames) != 0 {
		t.Fatal("status update without a match broadcast anyway")
	}
}
