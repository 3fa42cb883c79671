package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/growthzi/apiserver/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleRepo(t *testing.T) (*RoleRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoleRepository(db), mock
}

func TestRoleGetByNameDecodesPermissions(t *testing.T) {
	repo, mock := newRoleRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "permissions"}).
		AddRow("r1", "Editor", []byte(`["websites:create","websites:read_own"]`))
	mock.ExpectQuery("SELECT id, name, permissions").
		WithArgs("Editor").
		WillReturnRows(rows)

	role, err := repo.GetByName(context.Background(), "Editor")
	require.NoError(t, err)
	assert.Equal(t, "r1", role.ID)
	assert.Equal(t, []string{"websites:create", "websites:read_own"}, role.Permissions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGetByIDNotFound(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectQuery("SELECT id, name, permissions").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "permissions"}))

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCreateEncodesPermissions(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectExec("INSERT INTO roles").
		WithArgs(sqlmock.AnyArg(), "Moderator", []byte(`["websites:edit_all"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	role, err := repo.Create(context.Background(), types.Role{
		Name:        "Moderator",
		Permissions: []string{"websites:edit_all"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCreateDuplicateName(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectExec("INSERT INTO roles").
		WithArgs(sqlmock.AnyArg(), "Editor", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), types.Role{
		Name:        "Editor",
		Permissions: []string{"websites:create"},
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleEnsureByNameConflictIsNoop(t *testing.T) {
	repo, mock := newRoleRepo(t)

	mock.ExpectExec("ON CONFLICT \\(name\\) DO NOTHING").
		WithArgs(sqlmock.AnyArg(), "Editor", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.EnsureByName(context.Background(), types.Role{
		Name:        "Editor",
		Permissions: []string{"websites:create"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleList(t *testing.T) {
	repo, mock := newRoleRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "permissions"}).
		AddRow("r1", "Admin", []byte(`["users:manage"]`)).
		AddRow("r2", "Viewer", []byte(`["websites:read_all"]`))
	mock.ExpectQuery("SELECT id, name, permissions").WillReturnRows(rows)

	roles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Admin", roles[0].Name)
	assert.Equal(t, []string{"websites:read_all"}, roles[1].Permissions)
	require.NoError(t, mock.ExpectationsWereMet())
}
