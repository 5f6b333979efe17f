// Package memory is a map-backed store. Write transactions operate on a copy
// of the data that replaces the live copy only when the callback succeeds.
package memory

import (
	"context"
	"sync"

	"tasktime/app/store"
)

type data struct {
	projects map[string]projectRow
	tags     map[string]tagRow
	tasks    map[string]taskRow
	entries  map[string]entryRow
	seq      int64
}

func newData() *data {
	return &data{
		projects: map[string]projectRow{},
		tags:     map[string]tagRow{},
		tasks:    map[string]taskRow{},
		entries:  map[string]entryRow{},
	}
}

func (d *data) clone() *data {
	out := &data{
		projects: make(map[string]projectRow, len(d.projects)),
		tags:     make(map[string]tagRow, len(d.tags)),
		tasks:    make(map[string]taskRow, len(d.tasks)),
		entries:  make(map[string]entryRow, len(d.entries)),
		seq:      d.seq,
	}
	for k, v := range d.projects {
		out.projects[k] = v
	}
	for k, v := range d.tags {
		out.tags[k] = v
	}
	for k, v := range d.tasks {
		out.tasks[k] = v.clone()
	}
	for k, v := range d.entries {
		out.entries[k] = v.clone()
	}
	return out
}

func (d *data) next() int64 {
	d.seq++
	return d.seq
}

// Store keeps everything in process memory.
type Store struct {
	mu   sync.RWMutex
	data *data
}

var _ store.Store = &Store{}

// New returns an empty store.
func New() *Store {
	return &Store{data: newData()}
}

// Read runs fn against the live data under a read lock.
func (s *Store) Read(ctx context.Context, fn func(store.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&tx{d: s.data, readOnly: true})
}

// Write runs fn against a copy and commits it if fn returns nil.
func (s *Store) Write(ctx context.Context, fn func(store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(&tx{d: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error {
	return nil
}
