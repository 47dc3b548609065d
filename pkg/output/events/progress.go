package events

// ProgressEvent carries one progress announcement.
type ProgressEvent struct {
	BaseEvent
	Stage int    `json:"stage"` // 1-based
	Total int    `json:"total"`
	Icon  string `json:"icon,omitempty"`
	Text  string `json:"text"`
}

// NewProgress creates a ProgressEvent.
func NewProgress(scanID string, stage, total int, icon, text string) *ProgressEvent {
	return &ProgressEvent{
		BaseEvent: NewBase(EventTypeProgress, scanID),
		Stage:     stage,
		Total:     total,
		Icon:      icon,
		Text:      text,
	}
}

// Percent returns completion in 0..100.
func (e *ProgressEvent) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Stage) * 100 / float64(e.Total)
}
