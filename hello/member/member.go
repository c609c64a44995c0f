// Package member holds the member domain of the hello application.
package member

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/beankit/errors"
)

// Grade is a membership level.
type Grade string

const (
	Basic Grade = "BASIC"
	VIP   Grade = "VIP"
)

// Member is a registered customer.
type Member struct {
	ID    int64  `json:"id" binding:"required,gt=0"`
	Name  string `json:"name" binding:"required"`
	Grade Grade  `json:"grade" binding:"required,oneof=BASIC VIP"`
}

// Repository stores members.
type Repository interface {
	Save(ctx context.Context, m Member) error
	FindByID(ctx context.Context, id int64) (Member, error)
}

// MemoryRepository keeps members in memory. Register it as a singleton so
// every service shares one store.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[int64]Member
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[int64]Member)}
}

func (r *MemoryRepository) Save(_ context.Context, m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[m.ID] = m
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.store[id]
	if !ok {
		return Member{}, errors.NotFound("member", fmt.Sprint(id))
	}
	return m, nil
}

// Service is the member use case layer.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Join registers a member.
func (s *Service) Join(ctx context.Context, m Member) error {
	return s.repo.Save(ctx, m)
}

// FindMember looks a member up by id.
func (s *Service) FindMember(ctx context.Context, id int64) (Member, error) {
	return s.repo.FindByID(ctx, id)
}

// Repository returns the backing repository.
func (s *Service) Repository() Repository {
	return s.repo
}
