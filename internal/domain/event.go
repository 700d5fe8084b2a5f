package domain

import "time"

// Event is the container all gallery posts attach to server-side. The client
// only ever cares about one canonical event per installation.
type Event struct {
	ID          int64
	Title       string
	Description string
	Date        time.Time
	Local       string
}
