package pipeline

import "fmt"

// ProgressEvent is reported each time a run enters a stage.
type ProgressEvent struct {
	RunID   string `json:"run_id"`
	Stage   Stage  `json:"stage"`
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// Observer receives progress events. Calls arrive in order on the goroutine
// running the pipeline, and Percent never decreases within a run.
type Observer interface {
	OnProgress(ProgressEvent)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ProgressEvent)

// OnProgress calls f(e).
func (f ObserverFunc) OnProgress(e ProgressEvent) { f(e) }

type nopObserver struct{}

func (nopObserver) OnProgress(ProgressEvent) {}

// ChannelObserver forwards events to a buffered channel so another goroutine
// can render them.
type ChannelObserver struct {
	ch chan ProgressEvent
}

// NewChannelObserver creates a ChannelObserver with room for every stage.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan ProgressEvent, 64)}
}

// OnProgress sends e without blocking. Events are dropped if the reader has
// fallen a full buffer behind.
func (o *ChannelObserver) OnProgress(e ProgressEvent) {
	select {
	case o.ch <- e:
	default:
	}
}

// Events returns the receive side of the channel.
func (o *ChannelObserver) Events() <-chan ProgressEvent {
	return o.ch
}

// Close closes the channel. No events may be sent afterwards.
func (o *ChannelObserver) Close() {
	close(o.ch)
}

// FormatProgress renders e as a single status line.
func FormatProgress(e ProgressEvent) string {
	return fmt.Sprintf("[%3d%%] %s", e.Percent, e.Label)
}
