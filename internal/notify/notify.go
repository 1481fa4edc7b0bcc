// Package notify is the single-slot notification broadcast: one visible
// message at a time, pushed to every subscriber, auto-expiring after a fixed
// display duration unless superseded first.
package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a notification stays visible when the emitter
// does not choose its own duration.
const DefaultDuration = 5000 * time.Millisecond

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Notification is ephemeral: it lives in the slot until it expires or the
// next emission replaces it, and is never persisted.
type Notification struct {
	ID       int
	Message  string
	Severity Severity
}

// Channel holds the slot. There is no queue: a new emission preempts any
// not-yet-expired prior one, and the expiry timer restarts with it.
type Channel struct {
	duration time.Duration

	mu      sync.Mutex
	current *Notification
	nextID  int
	timer   *time.Timer
	subs    map[int]func(*Notification)
	nextSub int
}

// NewChannel creates a channel with the given display duration; zero or
// negative means DefaultDuration.
func NewChannel(duration time.Duration) *Channel {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Channel{
		duration: duration,
		subs:     map[int]func(*Notification){},
	}
}

// Emit replaces the visible notification and restarts the expiry timer.
func (c *Channel) Emit(message string, severity Severity) Notification {
	return c.EmitFor(message, severity, c.duration)
}

// EmitFor is Emit with a per-emission display duration.
func (c *Channel) EmitFor(message string, severity Severity, duration time.Duration) Notification {
	if duration <= 0 {
		duration = c.duration
	}
	c.mu.Lock()
	n := Notification{ID: c.nextID, Message: message, Severity: severity}
	c.nextID++
	c.current = &n
	if c.timer != nil {
		c.timer.Stop()
	}
	id := n.ID
	// The timer is scoped to this emission: by the time it fires, a newer
	// notification may own the slot, and then it must not clear anything.
	c.timer = time.AfterFunc(duration, func() { c.expire(id) })
	fns := c.subscribersLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(&n)
	}
	return n
}

// Shorthands used by the views.
func (c *Channel) ShowSuccess(message string) Notification { return c.Emit(message, Success) }
func (c *Channel) ShowError(message string) Notification   { return c.Emit(message, Error) }
func (c *Channel) ShowInfo(message string) Notification    { return c.Emit(message, Info) }

// Clear empties the slot immediately and cancels the pending expiry.
func (c *Channel) Clear() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
	fns := c.subscribersLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
}

// Current returns a copy of the visible notification, or nil.
func (c *Channel) Current() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	n := *c.current
	return &n
}

// Subscribe registers fn for slot changes; it fires immediately with the
// current state and on every emission and clear until cancel runs.
func (c *Channel) Subscribe(fn func(*Notification)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	current := c.current
	if current != nil {
		n := *current
		current = &n
	}
	c.mu.Unlock()

	fn(current)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Channel) expire(id int) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.timer = nil
	fns := c.subscribersLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
}

func (c *Channel) subscribersLocked() []func(*Notification) {
	fns := make([]func(*Notification), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	return fns
}
