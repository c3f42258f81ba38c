package chathub

import (
	"sync"
	"sync/atomic"
)

// connSet holds the live connections of one user.
type connSet struct {
	mu    sync.RWMutex
	conns map[string]Client
	// closed is set once the set has been unlinked from the registry.
	closed bool
}

// Registry maps user IDs to their live connections. Each user has its own
// lock, so traffic for one user never waits on another.
type Registry struct {
	users sync.Map // userID -> *connSet
	// closed is set by CloseAll; later connections are refused.
	closed atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a connection under its user. Once CloseAll has run the
// connection is closed instead and Add reports false.
func (r *Registry) Add(c Client) bool {
	for {
		if r.closed.Load() {
			c.Close()
			return false
		}
		v, _ := r.users.LoadOrStore(c.UserID(), &connSet{conns: make(map[string]Client)})
		set := v.(*connSet)

		set.mu.Lock()
		if set.closed {
			// Lost a race with the removal of the last connection, or
			// with CloseAll.
			set.mu.Unlock()
			continue
		}
		set.conns[c.ID()] = c
		set.mu.Unlock()

		// CloseAll may have started after the check above and missed the set.
		if r.closed.Load() {
			r.Remove(c)
			c.Close()
			return false
		}
		return true
	}
}

// Remove unregisters a connection. It reports whether the connection was
// registered.
func (r *Registry) Remove(c Client) bool {
	v, ok := r.users.Load(c.UserID())
	if !ok {
		return false
	}
	set := v.(*connSet)

	set.mu.Lock()
	defer set.mu.Unlock()
	current, ok := set.conns[c.ID()]
	if !ok || current != c {
		return false
	}
	delete(set.conns, c.ID())
	if len(set.conns) == 0 {
		set.closed = true
		r.users.CompareAndDelete(c.UserID(), set)
	}
	return true
}

// Connections returns a snapshot of the user's connections.
func (r *Registry) Connections(userID string) []Client {
	v, ok := r.users.Load(userID)
	if !ok {
		return nil
	}
	set := v.(*connSet)

	set.mu.RLock()
	defer set.mu.RUnlock()
	out := make([]Client, 0, len(set.conns))
	for _, c := range set.conns {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	n := 0
	r.users.Range(func(_, v any) bool {
		set := v.(*connSet)
		set.mu.RLock()
		n += len(set.conns)
		set.mu.RUnlock()
		return true
	})
	return n
}

// CloseAll unregisters and closes every connection.
func (r *Registry) CloseAll() {
	r.closed.Store(true)
	var all []Client
	r.users.Range(func(key, v any) bool {
		set := v.(*connSet)
		set.mu.Lock()
		for _, c := range set.conns {
			all = append(all, c)
		}
		set.conns = make(map[string]Client)
		set.closed = true
		r.users.CompareAndDelete(key, set)
		set.mu.Unlock()
		return true
	})
	for _, c := range all {
		c.Close()
	}
}
