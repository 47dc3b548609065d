package events

// StartEvent is emitted once a submitted URL passes validation, before the
// first announcement.
type StartEvent struct {
	BaseEvent
	Target string `json:"target"`
	Stages int    `json:"stages"`
}

// NewStart creates a StartEvent.
func NewStart(scanID, target string, stages int) *StartEvent {
	return &StartEvent{
		BaseEvent: NewBase(EventTypeStart, scanID),
		Target:    target,
		Stages:    stages,
	}
}
