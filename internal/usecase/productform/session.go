package productform

import (
	"context"
	"sync"
	"time"

	domcategory "example.com/grocery-form/internal/domain/category"
	"example.com/grocery-form/internal/domain/form"
)

// Session holds the form of one browser. Events are applied one at a time under
// mu; network calls run outside the lock.
type Session struct {
	ID string

	mu           sync.Mutex
	state        form.State
	lastActivity time.Time
	cancelList   context.CancelFunc
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		state:        form.Initial(),
		lastActivity: now,
	}
}

// Snapshot returns the current state without consuming notices.
func (s *Session) Snapshot() form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) apply(events ...form.Event) form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.state = form.Apply(s.state, ev)
	}
	return s.state
}

// view returns the state to render and marks its notices as shown.
func (s *Session) view() form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	s.state = form.Apply(s.state, form.NoticeShown{})
	return st
}

// beginList tags a new list request and cancels the one it supersedes.
// The returned release func must be called once the request is over.
func (s *Session) beginList(parent context.Context, c domcategory.Category) (uint64, context.Context, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelList != nil {
		s.cancelList()
		s.cancelList = nil
	}
	s.state = form.Apply(s.state, form.ListRequested{Category: c})
	seq := s.state.ListSeq
	if c == "" {
		return seq, parent, func() {}
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancelList = cancel
	release := func() {
		cancel()
		s.mu.Lock()
		if s.state.ListSeq == seq {
			s.cancelList = nil
		}
		s.mu.Unlock()
	}
	return seq, ctx, release
}

func (s *Session) isCurrentList(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ListSeq == seq
}

// beginSubmit validates the form and flags it as submitting. The returned state
// is the snapshot the request is built from.
func (s *Session) beginSubmit(validate func(form.Fields) error) (form.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Submitting {
		return s.state, ErrSubmitInProgress
	}
	if err := validate(s.state.Fields); err != nil {
		s.state = form.Apply(s.state, form.SubmitRejected{Err: err})
		return s.state, err
	}
	s.state = form.Apply(s.state, form.SubmitStarted{})
	return s.state, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

// close cancels whatever list request is still in flight.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelList != nil {
		s.cancelList()
		s.cancelList = nil
	}
}

// Store keeps the sessions of every connected browser in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id, creating an empty one when needed.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if sess, ok := st.sessions[id]; ok {
		sess.touch(now)
		return sess
	}
	sess := newSession(id, now)
	st.sessions[id] = sess
	return sess
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than idle and returns how many went.
func (st *Store) Sweep(idle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	evicted := 0
	for id, sess := range st.sessions {
		if sess.idleSince(now) <= idle {
			continue
		}
		sess.close()
		delete(st.sessions, id)
		evicted++
	}
	return evicted
}

// Close tears every session down.
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, sess := range st.sessions {
		sess.close()
		delete(st.sessions, id)
	}
}
