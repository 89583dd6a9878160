// Package sampler는 카테고리별 랜덤 시 페이지네이션을 담당한다.
// 이미 보여준 ID 는 호출자가 넘겨주고, sampler 자체는 상태를 갖지 않는다.
package sampler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"poemas-versos/config"
	"poemas-versos/models"
)

// Store is the read-only collaborator the sampler needs.
// GetByIDs may return documents in any order and may omit missing ids.
type Store interface {
	ListIDsByCategory(ctx context.Context, category string) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Poem, error)
}

// ShuffleFunc has the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

type Sampler struct {
	store   Store
	timeout time.Duration
	shuffle ShuffleFunc
}

type Option func(*Sampler)

// WithTimeout bounds each SampleUnseen call. Zero means no extra deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Sampler) { s.timeout = d }
}

// WithShuffle replaces the permutation source (tests).
func WithShuffle(fn ShuffleFunc) Option {
	return func(s *Sampler) {
		if fn != nil {
			s.shuffle = fn
		}
	}
}

func New(store Store, opts ...Option) *Sampler {
	s := &Sampler{
		store:   store,
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleUnseen returns up to pageSize poems of category whose ids are not in exclude,
// in uniformly random order. An empty, nil-error result means the category is exhausted
// for this exclusion set.
func (s *Sampler) SampleUnseen(ctx context.Context, category string, exclude IDSet, pageSize int) ([]models.Poem, error) {
	if err := validate(category, pageSize); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ids, err := s.listIDs(ctx, category)
	if err != nil {
		return nil, err
	}
	out, _, err := s.pick(ctx, category, ids, exclude, pageSize)
	return out, err
}

func validate(category string, pageSize int) error {
	if category == "" {
		return fmt.Errorf("%w: category is empty", ErrInvalidArgument)
	}
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidArgument, pageSize)
	}
	return nil
}

func (s *Sampler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Sampler) listIDs(ctx context.Context, category string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	ids, err := s.store.ListIDsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%w: list ids of %q: %w", ErrDataUnavailable, category, err)
	}
	return ids, nil
}

// pick runs steps 2..6 over an already enumerated id list. Candidates that
// vanished, moved or lost approval after enumeration are skipped and the batch
// is refilled from the rest of the shuffled list, so an empty result only
// happens when no candidate survives. The skipped ids are returned as dropped.
func (s *Sampler) pick(ctx context.Context, category string, ids []string, exclude IDSet, pageSize int) (out []models.Poem, dropped []string, err error) {
	candidates := make([]string, 0, len(ids))
	dedup := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if exclude.Has(id) {
			continue
		}
		if _, dup := dedup[id]; dup {
			continue
		}
		dedup[id] = struct{}{}
		candidates = append(candidates, id)
	}
	out = make([]models.Poem, 0, min(pageSize, len(candidates)))
	if len(candidates) == 0 {
		return out, nil, nil
	}

	// Fisher–Yates (rand.Shuffle)
	s.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for next := 0; next < len(candidates) && len(out) < pageSize; {
		chosen := candidates[next:min(next+pageSize-len(out), len(candidates))]
		next += len(chosen)

		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		docs, err := s.store.GetByIDs(ctx, chosen)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: get %d poems: %w", ErrDataUnavailable, len(chosen), err)
		}

		byID := make(map[string]models.Poem, len(docs))
		for _, p := range docs {
			byID[p.ID.Hex()] = p
		}
		for _, id := range chosen {
			p, ok := byID[id]
			switch {
			case !ok:
				config.Logger.Debugf("sampler: poem %s vanished after enumeration", id)
			case p.Category != category:
				config.Logger.Debugf("sampler: poem %s moved from %q to %q", id, category, p.Category)
			case p.Status != models.PoemStatusApproved:
				config.Logger.Debugf("sampler: poem %s is %s now", id, p.Status)
			default:
				out = append(out, p)
				continue
			}
			dropped = append(dropped, id)
		}
	}
	return out, dropped, nil
}

// IDSet is a set of poem ids (hex strings).
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	s.Add(ids...)
	return s
}

// Has is safe on a nil set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDsOf returns the hex ids of poems in order.
func IDsOf(poems []models.Poem) []string {
	out := make([]string, 0, len(poems))
	for _, p := range poems {
		out = append(out, p.ID.Hex())
	}
	return out
}
