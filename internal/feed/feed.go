// Package feed delivers workspace change notifications to attached canvas
// views. The in-process Broadcaster serves a single-process setup (TUI and
// store in one binary); Remote bridges to a sync server's websocket feed.
package feed

import (
	"sync"

	"corkboard-cli/internal/model"
)

// Broadcaster fans out change notifications per workspace.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(model.Change)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[string]map[int]func(model.Change){}}
}

// Subscribe registers fn for one workspace's changes and returns an
// unsubscribe function. fn is invoked on the publisher's goroutine;
// subscribers must hand off to their own loop (the TUI forwards into its
// bubbletea program).
func (b *Broadcaster) Subscribe(workspaceID string, fn func(model.Change)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.subs[workspaceID] == nil {
		b.subs[workspaceID] = map[int]func(model.Change){}
	}
	b.subs[workspaceID][id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[workspaceID], id)
	}, nil
}

// Publish delivers a change to every subscriber of its workspace.
func (b *Broadcaster) Publish(c model.Change) {
	b.mu.Lock()
	fns := make([]func(model.Change), 0, len(b.subs[c.WorkspaceID]))
	for _, fn := range b.subs[c.WorkspaceID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
