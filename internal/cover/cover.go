// Package cover keeps the last known state of a motorized cover and fans
// position changes out to registered listeners.
package cover

import (
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
)

// Position is the raw device position, 0 meaning fully closed.
type Position = uint8

// Condition is the coarse open/closed state derived from the position.
type Condition string

const (
	Unknown Condition = "unknown"
	Open    Condition = "open"
	Closed  Condition = "closed"
)

// ConditionOf derives the condition for a reported position.
func ConditionOf(p Position) Condition {
	if p == 0 {
		return Closed
	}
	return Open
}

// State is an immutable snapshot of a cover.
type State struct {
	Name        string    `json:"name"`
	Position    Position  `json:"position"`
	HasPosition bool      `json:"-"`
	Condition   Condition `json:"state"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Listener receives every state change.
type Listener func(State)

// Cover is the upstream consumer of session position reports.
type Cover struct {
	name   string
	logger logrus.FieldLogger
	now    func() time.Time

	mu    sync.RWMutex
	state State

	listeners *hashmap.Map[string, Listener]
}

// New creates a cover in the Unknown state.
func New(name string, logger logrus.FieldLogger) *Cover {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cover{
		name:      name,
		logger:    logger,
		now:       time.Now,
		state:     State{Name: name, Condition: Unknown},
		listeners: hashmap.New[string, Listener](),
	}
}

// Snapshot returns the current state.
func (c *Cover) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnPositionUpdate records a reported position and notifies listeners.
// Its signature matches session.PositionCallback.
func (c *Cover) OnPositionUpdate(p Position) {
	c.mu.Lock()
	c.state = State{
		Name:        c.name,
		Position:    p,
		HasPosition: true,
		Condition:   ConditionOf(p),
		UpdatedAt:   c.now(),
	}
	st := c.state
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"cover":    c.name,
		"position": p,
		"state":    st.Condition,
	}).Info("Cover position updated")

	c.listeners.Range(func(id string, l Listener) bool {
		l(st)
		return true
	})
}

// Subscribe registers l under id, replacing any previous listener with that id.
func (c *Cover) Subscribe(id string, l Listener) {
	if l == nil {
		return
	}
	c.listeners.Set(id, l)
}

// Unsubscribe removes the listener registered under id.
func (c *Cover) Unsubscribe(id string) bool {
	return c.listeners.Del(id)
}
