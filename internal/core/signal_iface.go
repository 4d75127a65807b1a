package core

// Frame is a raw binary payload.
type Frame []byte

// SessionID identifies one live transport connection. It doubles as the
// peer_id clients see on the wire.
type SessionID string

// SignalConnection abstracts for a system messaging transport.
// Owned by the adapter; the adapter must Close() it. TrySend never
// blocks: a slow consumer gets its frame dropped, not queued forever.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
