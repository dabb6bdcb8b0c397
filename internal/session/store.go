// Package session keeps per-user dialogue progress for the lifetime of the
// process. It replaces the loosely typed temp-data bag of a generic FSM
// manager with a validated record so an out-of-range item index cannot be
// represented.
package session

import "sync"

// Progress tracks position and score inside one exercise.
type Progress struct {
	ItemIndex int
	Score     int
}

// State is the mutable per-user progress record.
type State struct {
	// CurrentExercise is 1..N while the course runs and N+1 once completed.
	CurrentExercise int
	// Score is the running total across the whole session.
	Score int
	// PerExercise holds the counters of every exercise visited this session.
	PerExercise map[int]*Progress
	// VoiceRetry marks that the previous attempt at the current pronunciation
	// sentence fell below the acceptance band. A second consecutive miss gets
	// a stronger retry prompt. Every evaluated turn commits the flag anew.
	VoiceRetry bool
}

// NewState returns a fresh session positioned at the first exercise.
func NewState() *State {
	return &State{
		CurrentExercise: 1,
		PerExercise:     map[int]*Progress{1: {}},
	}
}

// Current returns the progress record of the current exercise, creating it
// on first entry.
func (s *State) Current() *Progress {
	p, ok := s.PerExercise[s.CurrentExercise]
	if !ok {
		p = &Progress{}
		s.PerExercise[s.CurrentExercise] = p
	}
	return p
}

// Visited reports whether the exercise has been entered this session.
func (s *State) Visited(ordinal int) bool {
	_, ok := s.PerExercise[ordinal]
	return ok
}

// Clone produces a deep copy used for all-or-nothing turn commits.
func (s *State) Clone() *State {
	cp := &State{
		CurrentExercise: s.CurrentExercise,
		Score:           s.Score,
		VoiceRetry:      s.VoiceRetry,
		PerExercise:     make(map[int]*Progress, len(s.PerExercise)),
	}
	for k, v := range s.PerExercise {
		pv := *v
		cp.PerExercise[k] = &pv
	}
	return cp
}

// Equal reports whether two states carry identical progress. Used by tests
// to verify that failed turns leave the session untouched.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.CurrentExercise != other.CurrentExercise ||
		s.Score != other.Score ||
		s.VoiceRetry != other.VoiceRetry ||
		len(s.PerExercise) != len(other.PerExercise) {
		return false
	}
	for k, v := range s.PerExercise {
		ov, ok := other.PerExercise[k]
		if !ok || *v != *ov {
			return false
		}
	}
	return true
}

// Store is an in-memory session registry keyed by the opaque user ID.
// Distinct users are independent; one user's turns are serialized by the
// per-user lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*State

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*State),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Get returns a deep copy of the user's session, if one exists. Callers
// mutate the copy and commit it back with Put.
func (st *Store) Get(userID int64) (*State, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Put commits a session state for the user.
func (st *Store) Put(userID int64, s *State) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[userID] = s
}

// Reset installs a fresh session for the user and returns a copy of it.
func (st *Store) Reset(userID int64) *State {
	fresh := NewState()
	st.mu.Lock()
	st.sessions[userID] = fresh
	st.mu.Unlock()
	return fresh.Clone()
}

// Delete removes the user's session entirely.
func (st *Store) Delete(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// InProgress reports whether the user currently has a session.
func (st *Store) InProgress(userID int64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.sessions[userID]
	return ok
}

// Lock serializes turns for one user. It returns the unlock function.
func (st *Store) Lock(userID int64) func() {
	st.locksMu.Lock()
	l, ok := st.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		st.locks[userID] = l
	}
	st.locksMu.Unlock()
	l.Lock()
	return l.Unlock
}
