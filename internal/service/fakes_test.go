package service

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"laundry-api/internal/domain"
)

type fakeServiceRepo struct {
	mu      sync.Mutex
	rows    map[uint]domain.Service
	next    uint
	err     error
	listHit int
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{rows: map[uint]domain.Service{}}
}

func (f *fakeServiceRepo) Create(_ context.Context, s *domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.next++
	s.ID = f.next
	f.rows[s.ID] = stored(*s)
	return nil
}

func (f *fakeServiceRepo) FindByID(_ context.Context, id uint) (*domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeServiceRepo) ListActive(context.Context) ([]domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHit++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Service
	for _, s := range f.rows {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeServiceRepo) Save(_ context.Context, s *domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[s.ID] = stored(*s)
	return nil
}

// stored mimics the decimal(10,2) price column.
func stored(s domain.Service) domain.Service {
	s.Price = math.Round(s.Price*100) / 100
	return s
}

// gatedListRepo pauses the next armed ListActive after it has read the rows,
// until release is closed.
type gatedListRepo struct {
	*fakeServiceRepo
	armed    atomic.Bool
	snapshot chan struct{}
	release  chan struct{}
}

func newGatedListRepo() *gatedListRepo {
	return &gatedListRepo{
		fakeServiceRepo: newFakeServiceRepo(),
		snapshot:        make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedListRepo) ListActive(ctx context.Context) ([]domain.Service, error) {
	out, err := g.fakeServiceRepo.ListActive(ctx)
	if g.armed.CompareAndSwap(true, false) {
		close(g.snapshot)
		<-g.release
	}
	return out, err
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[uint]*domain.User
	next    uint
	lookups int
	err     error
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{byID: map[uint]*domain.User{}} }

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	f.next++
	u.ID = f.next
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}
