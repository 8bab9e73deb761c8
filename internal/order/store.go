package order

import (
	"sort"
	"sync"
)

// Store holds at most one live Session per conversation key.
//
// Every operation on a key runs under that key's own mutex, so commands for
// the same group are serialized while different groups never wait on each
// other. The store-level mutex only guards the slot map.
type Store struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	mu      sync.Mutex
	refs    int
	session *Session
}

func NewStore() *Store {
	return &Store{slots: make(map[string]*slot)}
}

func (s *Store) acquire(key string) *slot {
	s.mu.Lock()
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{}
		s.slots[key] = sl
	}
	sl.refs++
	s.mu.Unlock()

	sl.mu.Lock()
	return sl
}

// release must be called with sl.mu held. Lock order is always slot then
// store here, and acquire never holds the store mutex while waiting on a slot.
func (s *Store) release(key string, sl *slot) {
	s.mu.Lock()
	sl.refs--
	if sl.refs == 0 && sl.session == nil {
		delete(s.slots, key)
	}
	s.mu.Unlock()
	sl.mu.Unlock()
}

// Apply runs fn with exclusive access to the key. fn receives a copy of the
// current session (nil when absent) and returns the session to store, or nil
// to remove it.
func (s *Store) Apply(key string, fn func(cur *Session) *Session) {
	sl := s.acquire(key)
	defer s.release(key, sl)
	sl.session = fn(sl.session.Clone()).Clone()
}

func (s *Store) Get(key string) (*Session, bool) {
	sl := s.acquire(key)
	defer s.release(key, sl)
	if sl.session == nil {
		return nil, false
	}
	return sl.session.Clone(), true
}

// Create opens sess under key unless a session is already open there. A nil
// sess opens an empty session.
func (s *Store) Create(key string, sess *Session) error {
	var err error
	s.Apply(key, func(cur *Session) *Session {
		if cur != nil {
			err = ErrAlreadyOpen
			return cur
		}
		if sess == nil {
			sess = &Session{}
		}
		sess.Key = key
		return sess
	})
	return err
}

func (s *Store) Mutate(key string, fn func(*Session) error) error {
	var err error
	s.Apply(key, func(cur *Session) *Session {
		if cur == nil {
			err = ErrNoActiveSession
			return nil
		}
		next := cur.Clone()
		if err = fn(next); err != nil {
			return cur
		}
		return next
	})
	return err
}

// Close removes and returns the session for key.
func (s *Store) Close(key string) (*Session, error) {
	var closed *Session
	s.Apply(key, func(cur *Session) *Session {
		closed = cur
		return nil
	})
	if closed == nil {
		return nil, ErrNoActiveSession
	}
	return closed, nil
}

// Snapshot returns copies of every live session ordered by key.
func (s *Store) Snapshot() []*Session {
	s.mu.Lock()
	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Strings(keys)

	out := make([]*Session, 0, len(keys))
	for _, k := range keys {
		if sess, ok := s.Get(k); ok {
			out = append(out, sess)
		}
	}
	return out
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return len(s.Snapshot())
}
