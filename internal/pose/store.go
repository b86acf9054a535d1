package pose

import (
	"fmt"
	"sync"
)

// Store holds the latest observed pose of each body. Writers replace a pose
// wholesale; readers always get a complete snapshot and never wait for an
// observation to arrive.
type Store struct {
	mu      sync.RWMutex
	poses   [numBodies]Pose
	updates [numBodies]uint64
}

// NewStore seeds the store with the poses assumed before any observation.
func NewStore(initialAgent, initialTarget Pose) *Store {
	s := &Store{}
	s.poses[Agent] = initialAgent
	s.poses[Target] = initialTarget
	return s
}

// Update stores p for body b after rounding X and Y. Last write wins.
func (s *Store) Update(b Body, p Pose) error {
	if !b.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownBody, int(b))
	}
	rounded := Round(p)

	s.mu.Lock()
	s.poses[b] = rounded
	s.updates[b]++
	s.mu.Unlock()
	return nil
}

// Current returns the latest pose of b, or the initial one if nothing has
// been observed yet. Unknown bodies yield the zero pose.
func (s *Store) Current(b Body) Pose {
	if !b.valid() {
		return Pose{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poses[b]
}

// Snapshot reads both bodies under one lock.
func (s *Store) Snapshot() (agent, target Pose) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poses[Agent], s.poses[Target]
}

// Updates reports how many observations have been ingested for b.
func (s *Store) Updates(b Body) uint64 {
	if !b.valid() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates[b]
}
