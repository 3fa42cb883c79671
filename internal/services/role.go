package services

import (
	"context"

	"github.com/growthzi/apiserver/types"
)

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (types.Role, error)
	GetByName(ctx context.Context, name string) (types.Role, error)
	List(ctx context.Context) ([]types.Role, error)
	Create(ctx context.Context, role types.Role) (types.Role, error)
	EnsureByName(ctx context.Context, role types.Role) error
}

// RoleService encapsulates role use-cases.
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

func (s *RoleService) GetByID(ctx context.Context, id string) (types.Role, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *RoleService) GetByName(ctx context.Context, name string) (types.Role, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *RoleService) List(ctx context.Context) ([]types.Role, error) {
	return s.repo.List(ctx)
}

func (s *RoleService) Create(ctx context.Context, role types.Role) (types.Role, error) {
	return s.repo.Create(ctx, role)
}
