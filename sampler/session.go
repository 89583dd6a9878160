package sampler

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"poemas-versos/models"
)

// Session 은 한 사용자의 카테고리 브라우징 상태다.
// Browsing(seen) -> (빈 결과) -> Exhausted 로만 전이하고, Exhausted 는 종료 상태다.
// Session 은 호출자가 소유하며 여러 세션 사이에 공유되는 상태는 없다.
type Session struct {
	mu        sync.Mutex
	category  string
	seen      IDSet
	exhausted bool
	busy      bool

	cacheIDs bool
	ids      []string
	loaded   bool
}

type SessionOption func(*Session)

// WithIDCache enumerates the category once and reuses the id list for the
// rest of the session. Poems added later are not offered to this session.
func WithIDCache() SessionOption {
	return func(s *Session) { s.cacheIDs = true }
}

// WithSeen resumes a session with ids already shown to the user.
func WithSeen(ids ...string) SessionOption {
	return func(s *Session) { s.seen.Add(ids...) }
}

func NewSession(category string, opts ...SessionOption) *Session {
	s := &Session{
		category: category,
		seen:     NewIDSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next batch of unseen poems. Once a call returns an empty
// batch the session is exhausted and later calls return empty without
// touching the store. Failed calls leave the session unchanged.
func (s *Session) Next(ctx context.Context, smp *Sampler, n int) ([]models.Poem, error) {
	if err := validate(s.category, n); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	if s.exhausted {
		s.mu.Unlock()
		return []models.Poem{}, nil
	}
	s.busy = true
	exclude := s.seen.Clone()
	cached, loaded := s.ids, s.loaded
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	var (
		out []models.Poem
		err error
	)
	if !s.cacheIDs {
		out, err = smp.SampleUnseen(ctx, s.category, exclude, n)
	} else {
		out, cached, err = s.nextCached(ctx, smp, exclude, n, cached, loaded)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cacheIDs {
		s.ids, s.loaded = cached, true
	}
	s.seen.Add(IDsOf(out)...)
	if len(out) == 0 {
		s.exhausted = true
	}
	s.mu.Unlock()
	return out, nil
}

func (s *Session) nextCached(ctx context.Context, smp *Sampler, exclude IDSet, n int, ids []string, loaded bool) ([]models.Poem, []string, error) {
	ctx, cancel := smp.withTimeout(ctx)
	defer cancel()

	if !loaded {
		var err error
		if ids, err = smp.listIDs(ctx, s.category); err != nil {
			return nil, nil, err
		}
	}
	out, dropped, err := smp.pick(ctx, s.category, ids, exclude, n)
	if err != nil {
		return nil, nil, fmt.Errorf("session %q: %w", s.category, err)
	}
	if len(dropped) > 0 {
		// 사라진 시는 캐시에서 빼서 다음 호출에서 다시 읽지 않는다.
		gone := NewIDSet(dropped...)
		ids = slices.DeleteFunc(slices.Clone(ids), gone.Has)
	}
	return out, ids, nil
}

func (s *Session) Category() string { return s.category }

func (s *Session) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

// Seen returns the ids shown so far, sorted.
func (s *Session) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.seen))
	for id := range s.seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
