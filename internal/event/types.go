package event

import "time"

// Event is any typed occurrence carried by a Bus.
type Event interface {
	Type() string
	Timestamp() time.Time
}
