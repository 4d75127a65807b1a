package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/okrel/parley/internal/app"
	"github.com/okrel/parley/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// SignalWSController is the protocol layer: it parses inbound signaling
// events, mutates the store and fans outbound messages out to the
// affected connections. Emission is fire-and-forget.
type SignalWSController struct {
	Store *app.Store

	// mu serializes handler bodies. A state change and the emissions it
	// produces must land on every affected connection before the next
	// handler runs, otherwise a join broadcast still in flight could be
	// overtaken by a removal notice. TrySend never blocks on the socket,
	// so the critical section stays short.
	mu sync.Mutex

	// ICEServers is injected verbatim into every addPeer emission; the
	// controller never inspects it.
	ICEServers []webrtc.ICEServer

	ReadLimit  int64
	PingPeriod time.Duration
}

func NewSignalWSController(store *app.Store, iceServers []webrtc.ICEServer) *SignalWSController {
	return &SignalWSController{
		Store:      store,
		ICEServers: iceServers,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection lifecycle:
// register, pump messages, and on read failure force a leave from every
// joined room before the id disappears from the registry.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("connection accepted")
	ctl.Store.Register(sid, conn)

	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
		ctl.handleDisconnect(sid, conn)
	}()
}
