package indexer

import (
	"context"
	"sync"
	"sync/atomic"
)

// FileAdded is reported once for every file newly written to the catalog.
type FileAdded struct {
	Path     string `json:"path"`
	Basename string `json:"basename"`
}

// Observer receives scan events. Methods are called synchronously from the
// scanning goroutine, in order; slow observers slow the scan down.
type Observer interface {
	OnProgress(p ScanProgress)
	OnFileAdded(f FileAdded)
	OnComplete(p ScanProgress)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnProgress(ScanProgress) {}
func (NopObserver) OnFileAdded(FileAdded)   {}
func (NopObserver) OnComplete(ScanProgress) {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Progress  func(ScanProgress)
	FileAdded func(FileAdded)
	Complete  func(ScanProgress)
}

func (o ObserverFuncs) OnProgress(p ScanProgress) {
	if o.Progress != nil {
		o.Progress(p)
	}
}

func (o ObserverFuncs) OnFileAdded(f FileAdded) {
	if o.FileAdded != nil {
		o.FileAdded(f)
	}
}

func (o ObserverFuncs) OnComplete(p ScanProgress) {
	if o.Complete != nil {
		o.Complete(p)
	}
}

// EventKind identifies the payload of an Event.
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventFileAdded EventKind = "fileAdded"
	EventComplete  EventKind = "complete"
)

// Event is one scan notification delivered through an EventChannel.
type Event struct {
	Kind     EventKind    `json:"kind"`
	Progress ScanProgress `json:"progress,omitzero"`
	File     FileAdded    `json:"file,omitzero"`
}

// EventChannel is an Observer that forwards events to a bounded channel.
// Progress events are dropped when the buffer is full; fileAdded and
// complete events wait for the reader until ctx is done.
type EventChannel struct {
	ctx     context.Context
	ch      chan Event
	dropped atomic.Int64
	once    sync.Once
}

// NewEventChannel returns an EventChannel with the given buffer size.
func NewEventChannel(ctx context.Context, size int) *EventChannel {
	if size < 1 {
		size = 1
	}
	return &EventChannel{ctx: ctx, ch: make(chan Event, size)}
}

// Events returns the receive side of the channel.
func (e *EventChannel) Events() <-chan Event {
	return e.ch
}

// Dropped returns how many progress events were discarded.
func (e *EventChannel) Dropped() int64 {
	return e.dropped.Load()
}

// Close closes the channel. Call it only after the scan using this observer
// has returned.
func (e *EventChannel) Close() {
	e.once.Do(func() { close(e.ch) })
}

func (e *EventChannel) OnProgress(p ScanProgress) {
	select {
	case e.ch <- Event{Kind: EventProgress, Progress: p}:
	default:
		e.dropped.Add(1)
	}
}

func (e *EventChannel) OnFileAdded(f FileAdded) {
	e.send(Event{Kind: EventFileAdded, File: f})
}

func (e *EventChannel) OnComplete(p ScanProgress) {
	e.send(Event{Kind: EventComplete, Progress: p})
}

func (e *EventChannel) send(ev Event) {
	// Prefer delivery when there is room, even if ctx is already done.
	select {
	case e.ch <- ev:
		return
	default:
	}
	select {
	case e.ch <- ev:
	case <-e.ctx.Done():
	}
}
