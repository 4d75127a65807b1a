package domain

// RoomID is the client-supplied channel name. A room exists exactly as
// long as it has at least one member.
type RoomID string
