// Package domain contains entity without logic, just meta-data
package domain

// StatusElement selects which presence flag a peerStatus update targets.
type StatusElement string

const (
	ElementVideo StatusElement = "video"
	ElementAudio StatusElement = "audio"
	ElementHand  StatusElement = "hand"
)

// PeerRecord is a connection's presence within one room.
// Field values arrive from the join request and are stored as-is;
// absent fields stay at their zero value.
type PeerRecord struct {
	Name  string `json:"peer_name"`
	Video bool   `json:"peer_video"`
	Audio bool   `json:"peer_audio"`
	Hand  bool   `json:"peer_hand"`
}

// SetElement flips the flag selected by el. Unknown elements are
// ignored and reported back to the caller.
func (p *PeerRecord) SetElement(el StatusElement, status bool) bool {
	switch el {
	case ElementVideo:
		p.Video = status
	case ElementAudio:
		p.Audio = status
	case ElementHand:
		p.Hand = status
	default:
		return false
	}
	return true
}
