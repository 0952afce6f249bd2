// Package placement decides where a new member lands in the forced matrices
// and applies the attach to the stored trees.
package placement

import (
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/google/uuid"
)

// CreditPolicy selects who receives the gift for a placement.
type CreditPolicy string

const (
	// CreditTargetOwner pays the owner of the matrix the member is attached to.
	CreditTargetOwner CreditPolicy = "owner"
	// CreditSecondLevel pays whoever gains the member on their second level:
	// the target owner once its first level is full, otherwise the owner of
	// the target's parent (the house when there is none).
	CreditSecondLevel CreditPolicy = "second_level"
)

func ParseCreditPolicy(s string) CreditPolicy {
	if CreditPolicy(s) == CreditSecondLevel {
		return CreditSecondLevel
	}
	return CreditTargetOwner
}

// Engine is bound to one set of repositories, usually the ones of a running
// unit of work.
type Engine struct {
	repos  domain.Repositories
	policy CreditPolicy
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Engine)

func WithCreditPolicy(p CreditPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(repos domain.Repositories, opts ...Option) *Engine {
	e := &Engine{
		repos:  repos,
		policy: CreditTargetOwner,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewMatrix builds an empty node owned by ownerID. The caller persists it.
func (e *Engine) NewMatrix(ownerID int64, status domain.Status, bt domain.BuildType) *domain.Matrix {
	now := e.now()
	return &domain.Matrix{
		ID:          e.newID(),
		OwnerID:     ownerID,
		Status:      status,
		BuildType:   bt,
		Tree:        []domain.Branch{},
		DisplayTree: []domain.DisplayBranch{},
		Members:     []int64{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
