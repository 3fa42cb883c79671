package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/growthzi/apiserver/internal/auth"
	"github.com/growthzi/apiserver/internal/events"
	"github.com/growthzi/apiserver/internal/services"
	"github.com/growthzi/apiserver/internal/store"
	"github.com/growthzi/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "handlers-test-secret"
	testPassword = "pw"
)

type memUsers struct {
	byID map[string]types.User
	seq  int
}

func (m *memUsers) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range m.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) List(_ context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(m.byID))
	for _, user := range m.byID {
		users = append(users, user)
	}
	return users, nil
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	user.CreatedAt = time.Now()
	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) AssignRole(_ context.Context, userID, roleID string) error {
	user, ok := m.byID[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.RoleID = roleID
	m.byID[userID] = user
	return nil
}

type memRoles struct {
	byID map[string]types.Role
	seq  int
}

func (m *memRoles) GetByID(_ context.Context, id string) (types.Role, error) {
	role, ok := m.byID[id]
	if !ok {
		return types.Role{}, store.ErrNotFound
	}
	return role, nil
}

func (m *memRoles) GetByName(_ context.Context, name string) (types.Role, error) {
	for _, role := range m.byID {
		if role.Name == name {
			return role, nil
		}
	}
	return types.Role{}, store.ErrNotFound
}

func (m *memRoles) List(_ context.Context) ([]types.Role, error) {
	roles := make([]types.Role, 0, len(m.byID))
	for _, role := range m.byID {
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *memRoles) Create(_ context.Context, role types.Role) (types.Role, error) {
	for _, existing := range m.byID {
		if existing.Name == role.Name {
			return types.Role{}, store.ErrDuplicate
		}
	}
	m.seq++
	role.ID = fmt.Sprintf("role-%d", m.seq)
	m.byID[role.ID] = role
	return role, nil
}

func (m *memRoles) EnsureByName(ctx context.Context, role types.Role) error {
	if _, err := m.GetByName(ctx, role.Name); err == nil {
		return nil
	}
	_, err := m.Create(ctx, role)
	return err
}

type memSites struct {
	byID map[string]types.Website
	seq  int
}

func (m *memSites) Get(_ context.Context, id string) (types.Website, error) {
	site, ok := m.byID[id]
	if !ok {
		return types.Website{}, store.ErrNotFound
	}
	return site, nil
}

func (m *memSites) List(_ context.Context, ownerID string) ([]types.Website, error) {
	sites := make([]types.Website, 0, len(m.byID))
	for _, site := range m.byID {
		if ownerID == "" || site.OwnerID == ownerID {
			sites = append(sites, site)
		}
	}
	return sites, nil
}

func (m *memSites) Create(_ context.Context, site types.Website) (types.Website, error) {
	m.seq++
	site.ID = fmt.Sprintf("11111111-0000-0000-0000-%012d", m.seq)
	now := time.Now()
	site.CreatedAt = now
	site.UpdatedAt = now
	m.byID[site.ID] = site
	return site, nil
}

func (m *memSites) UpdateContent(_ context.Context, id string, content []byte) (types.Website, error) {
	site, ok := m.byID[id]
	if !ok {
		return types.Website{}, store.ErrNotFound
	}
	site.Content = content
	site.UpdatedAt = time.Now()
	m.byID[id] = site
	return site, nil
}

func (m *memSites) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type fakeGenerator struct {
	content types.SiteContent
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (types.SiteContent, error) {
	if f.err != nil {
		return types.SiteContent{}, f.err
	}
	return f.content, nil
}

type fakeSnapshots struct {
	keys []string
	err  error
}

func (f *fakeSnapshots) Publish(_ context.Context, site types.Website) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := fmt.Sprintf("sites/%s/index.html", site.ID)
	f.keys = append(f.keys, key)
	return key, nil
}

// fixture wires the full router against in-memory repositories.
type fixture struct {
	t      *testing.T
	users  *memUsers
	roles  *memRoles
	sites  *memSites
	gen    *fakeGenerator
	snaps  *fakeSnapshots
	router *chi.Mux

	admin   types.User
	editorA types.User
	editorB types.User
	viewer  types.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		users: &memUsers{byID: make(map[string]types.User)},
		roles: &memRoles{byID: make(map[string]types.Role)},
		sites: &memSites{byID: make(map[string]types.Website)},
		gen:   &fakeGenerator{content: types.SiteContent{Title: "Acme", Hero: types.HeroSection{Headline: "Build fast"}}},
		snaps: &fakeSnapshots{},
	}

	ctx := context.Background()
	for _, seed := range auth.DefaultRoles() {
		require.NoError(t, f.roles.EnsureByName(ctx, types.Role{Name: seed.Name, Permissions: seed.Permissions}))
	}

	f.admin = f.addUser("admin@x.com", auth.AdminRoleName)
	f.editorA = f.addUser("editor-a@x.com", auth.EditorRoleName)
	f.editorB = f.addUser("editor-b@x.com", auth.EditorRoleName)
	f.viewer = f.addUser("viewer@x.com", auth.ViewerRoleName)

	logger := zerolog.Nop()
	publisher := events.NewPublisher(nil, "")

	userService := services.NewUserService(f.users)
	roleService := services.NewRoleService(f.roles)
	websiteService := services.NewWebsiteService(f.sites, f.gen, f.snaps, publisher, logger)

	authorizer := auth.NewAuthorizer(testSecret, f.users, f.roles)
	gate := NewGate(authorizer, logger)

	authHandler := NewAuthHandler(userService, roleService, publisher, testSecret, time.Hour, logger)
	websiteHandler := NewWebsiteHandler(websiteService, logger)
	adminHandler := NewAdminHandler(roleService, userService, logger)
	previewHandler := NewPreviewHandler(websiteService, logger)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) { AuthRouter(r, authHandler, gate) })
	router.Route("/api/websites", func(r chi.Router) { WebsiteRouter(r, websiteHandler, gate) })
	router.Route("/api/admin", func(r chi.Router) { AdminRouter(r, adminHandler, gate) })
	router.Route("/preview", func(r chi.Router) { PreviewRouter(r, previewHandler) })
	f.router = router

	return f
}

func (f *fixture) addUser(email, roleName string) types.User {
	f.t.Helper()
	role, err := f.roles.GetByName(context.Background(), roleName)
	require.NoError(f.t, err)

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(f.t, err)

	user, err := f.users.Create(context.Background(), types.User{
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       role.ID,
	})
	require.NoError(f.t, err)
	return user
}

func (f *fixture) addWebsite(owner types.User, content string) types.Website {
	f.t.Helper()
	site, err := f.sites.Create(context.Background(), types.Website{
		OwnerID: owner.ID,
		Content: json.RawMessage(content),
	})
	require.NoError(f.t, err)
	return site
}

func (f *fixture) token(user types.User) string {
	f.t.Helper()
	token, err := auth.IssueToken(user.ID, []byte(testSecret), time.Hour)
	require.NoError(f.t, err)
	return token
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value))
	return value
}
