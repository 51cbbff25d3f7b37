package studio

import (
	"sync"

	"photo-style-studio/internal/catalog"
)

type Store struct {
	mu  sync.Mutex
	idx *catalog.Index
	m   map[key]*Session
}

type key struct {
	ChatID int64
	UserID int64
}

func NewStore(idx *catalog.Index) *Store {
	if idx == nil {
		idx = catalog.MustDefaultIndex()
	}
	return &Store{idx: idx, m: make(map[key]*Session)}
}

func (s *Store) Index() *catalog.Index {
	return s.idx
}

func (s *Store) Get(chatID, userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(chatID, userID).Clone()
}

// Update runs fn under the store lock and returns a copy of the result.
func (s *Store) Update(chatID, userID int64, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(st)
	}
	return st.Clone()
}

func (s *Store) Reset(chatID, userID int64) Session {
	return s.Update(chatID, userID, func(st *Session) {
		st.Reset(s.idx)
	})
}

func (s *Store) getOrCreateLocked(chatID, userID int64) *Session {
	k := key{ChatID: chatID, UserID: userID}
	if st, ok := s.m[k]; ok {
		return st
	}
	st := New(s.idx)
	s.m[k] = &st
	return s.m[k]
}
