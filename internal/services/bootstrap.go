package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/growthzi/apiserver/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Bootstrap seeds the role catalog and the default admin account.
// Run is idempotent and safe to invoke on every startup.
type Bootstrap struct {
	roles         RoleRepository
	users         UserRepository
	adminEmail    string
	adminPassword string
	logger        zerolog.Logger
}

func NewBootstrap(roles RoleRepository, users UserRepository, adminEmail, adminPassword string, logger zerolog.Logger) *Bootstrap {
	return &Bootstrap{
		roles:         roles,
		users:         users,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		logger:        logger,
	}
}

// Run inserts each catalog role iff no role with that name exists,
// never overwriting an existing role's permissions, then ensures the
// default admin account. A missing Admin role at account-creation time
// is a fatal configuration fault.
func (b *Bootstrap) Run(ctx context.Context) error {
	for _, seed := range auth.DefaultRoles() {
		if err := b.roles.EnsureByName(ctx, types.Role{
			Name:        seed.Name,
			Permissions: seed.Permissions,
		}); err != nil {
			return fmt.Errorf("seed role %s: %w", seed.Name, err)
		}
	}

	return b.ensureAdminAccount(ctx)
}

func (b *Bootstrap) ensureAdminAccount(ctx context.Context) error {
	_, err := b.users.GetByEmail(ctx, b.adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	adminRole, err := b.roles.GetByName(ctx, auth.AdminRoleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("cannot create default admin account: role %q is missing", auth.AdminRoleName)
		}
		return fmt.Errorf("load admin role: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(b.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = b.users.Create(ctx, types.User{
		Email:        b.adminEmail,
		PasswordHash: string(hashed),
		RoleID:       adminRole.ID,
	})
	if err != nil {
		// A concurrent first boot may win the insert race; the unique
		// index on email is the actual safety mechanism here.
		if errors.Is(err, store.ErrDuplicate) {
			b.logger.Info().Str("email", b.adminEmail).Msg("admin account already bootstrapped")
			return nil
		}
		return fmt.Errorf("create admin account: %w", err)
	}

	b.logger.Info().Str("email", b.adminEmail).Msg("created default admin account")
	return nil
}
