package branches

import "context"

// RepositoryPort defines data access methods for branches.
type RepositoryPort interface {
	List(ctx context.Context) ([]Branch, error)
	Get(ctx context.Context, id int64) (*Branch, error)
	Create(ctx context.Context, in CreateBranchInput) (*Branch, error)
}

// Service handles branch business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all branches.
func (s *Service) List(ctx context.Context) ([]Branch, error) {
	return s.repo.List(ctx)
}

// Get returns one branch.
func (s *Service) Get(ctx context.Context, id int64) (*Branch, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a branch.
func (s *Service) Create(ctx context.Context, in CreateBranchInput) (*Branch, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}
