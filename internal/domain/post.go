package domain

import (
	"strings"
	"time"
)

// surrogateIDFloor separates server-assigned sequence ids from surrogate ids
// generated locally as epoch milliseconds. Anything above it was minted on
// this device and has never been acknowledged by the server.
const surrogateIDFloor = 1_000_000_000_000

type GalleryPost struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	UserPhoto string    `json:"userPhoto"`
	Photo     string    `json:"photo,omitempty"`
	Video     string    `json:"video,omitempty"`
	Message   string    `json:"message"`
	Date      time.Time `json:"date"`
	UserEmail string    `json:"userEmail,omitempty"`
}

// LocalOnly reports whether the post carries a client-generated surrogate id,
// meaning it was created on this device and never synced.
func (p GalleryPost) LocalOnly() bool {
	return p.ID >= surrogateIDFloor
}

// ShareText composes the message used when a post is shared externally.
func (p GalleryPost) ShareText(eventTitle string) string {
	text := p.UserName + " compartilhou uma homenagem no " + eventTitle
	if p.Message != "" {
		text += "\n\n" + p.Message
	}
	return strings.TrimSpace(text)
}
