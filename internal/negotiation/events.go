package negotiation

import "time"

const (
	EventTypeStatus   = "status"
	EventTypeMessage  = "message"
	EventTypeDecision = "decision"
	EventTypeDone     = "done"
	EventTypeError    = "error"
)

// StatusEvent is a free-text progress marker.
type StatusEvent struct {
	Message    string
	OccurredAt time.Time
}

func NewStatusEvent(message string) StatusEvent {
	return StatusEvent{Message: message, OccurredAt: time.Now().UTC()}
}

func (e StatusEvent) Type() string         { return EventTypeStatus }
func (e StatusEvent) Timestamp() time.Time { return e.OccurredAt }

// MessageEvent reports one thread append.
type MessageEvent struct {
	SupplierID int
	Role       Role
	Content    string
	Round      int
	OccurredAt time.Time
}

func NewMessageEvent(supplierID int, role Role, content string, round int) MessageEvent {
	return MessageEvent{
		SupplierID: supplierID,
		Role:       role,
		Content:    content,
		Round:      round,
		OccurredAt: time.Now().UTC(),
	}
}

func (e MessageEvent) Type() string         { return EventTypeMessage }
func (e MessageEvent) Timestamp() time.Time { return e.OccurredAt }

// DecisionEvent carries the final decision, emitted exactly once after
// all rounds complete.
type DecisionEvent struct {
	Decision   Decision
	OccurredAt time.Time
}

func NewDecisionEvent(decision Decision) DecisionEvent {
	return DecisionEvent{Decision: decision, OccurredAt: time.Now().UTC()}
}

func (e DecisionEvent) Type() string         { return EventTypeDecision }
func (e DecisionEvent) Timestamp() time.Time { return e.OccurredAt }

// DoneEvent is the terminal success marker.
type DoneEvent struct {
	OccurredAt time.Time
}

func NewDoneEvent() DoneEvent {
	return DoneEvent{OccurredAt: time.Now().UTC()}
}

func (e DoneEvent) Type() string         { return EventTypeDone }
func (e DoneEvent) Timestamp() time.Time { return e.OccurredAt }

// ErrorEvent is the terminal failure marker, mutually exclusive with
// DoneEvent.
type ErrorEvent struct {
	Message    string
	OccurredAt time.Time
}

func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Message: message, OccurredAt: time.Now().UTC()}
}

func (e ErrorEvent) Type() string         { return EventTypeError }
func (e ErrorEvent) Timestamp() time.Time { return e.OccurredAt }
