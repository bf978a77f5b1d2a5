package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/kubestro/core/pkg/async"
	"github.com/kubestro/core/pkg/auth"
	"github.com/kubestro/core/pkg/catalog"
	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/session"
	"github.com/kubestro/core/pkg/setup"
	"github.com/kubestro/core/pkg/user"
)

const testPassword = "S3cret-pass!"

// memoryUsers is a full in-memory user.Repository.
type memoryUsers struct {
	users    map[uuid.UUID]*user.User
	subjects map[string]uuid.UUID
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		users:    make(map[uuid.UUID]*user.User),
		subjects: make(map[string]uuid.UUID),
	}
}

func (r *memoryUsers) collides(u *user.User) bool {
	for _, existing := range r.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Username.String() == u.Username.String() ||
			existing.Email.String() == u.Email.String() {
			return true
		}
	}
	return false
}

func (r *memoryUsers) Create(ctx context.Context, u *user.User) error {
	if r.collides(u) {
		return user.ErrAlreadyExists
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memoryUsers) CreateOIDCUser(ctx context.Context, u *user.User, subject string) error {
	if _, taken := r.subjects[subject]; taken || r.collides(u) {
		return user.ErrAlreadyExists
	}
	copied := *u
	r.users[u.ID] = &copied
	r.subjects[subject] = u.ID
	return nil
}

func (r *memoryUsers) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, user.ErrNotFound
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email user.Email) (*user.User, error) {
	for _, u := range r.users {
		if u.Email.String() == email.String() {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range r.users {
		if u.Username.String() == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) FindByOIDCSubject(ctx context.Context, subject string) (*user.User, error) {
	id, ok := r.subjects[subject]
	if !ok {
		return nil, nil
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r *memoryUsers) FindAll(ctx context.Context) ([]*user.User, error) {
	var all []*user.User
	for _, u := range r.users {
		copied := *u
		all = append(all, &copied)
	}
	return all, nil
}

func (r *memoryUsers) Update(ctx context.Context, u *user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	if r.collides(u) {
		return user.ErrAlreadyExists
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memoryUsers) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// memoryCatalog is an in-memory catalog.Store.
type memoryCatalog struct {
	repos map[uuid.UUID]*catalog.Repository
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{repos: make(map[uuid.UUID]*catalog.Repository)}
}

func (s *memoryCatalog) Create(ctx context.Context, create catalog.CreateRepository) (*catalog.Repository, error) {
	for _, repo := range s.repos {
		if repo.Name == create.Name || repo.URL == create.URL {
			return nil, catalog.ErrAlreadyExists
		}
	}
	repo := &catalog.Repository{ID: uuid.New(), Name: create.Name, URL: create.URL}
	s.repos[repo.ID] = repo
	return repo, nil
}

func (s *memoryCatalog) FindAll(ctx context.Context, search string) ([]*catalog.Repository, error) {
	var repos []*catalog.Repository
	for _, repo := range s.repos {
		if search != "" && !strings.Contains(repo.Name, search) && !strings.Contains(repo.URL, search) {
			continue
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (s *memoryCatalog) FindOne(ctx context.Context, id uuid.UUID) (*catalog.Repository, error) {
	if repo, ok := s.repos[id]; ok {
		return repo, nil
	}
	return nil, nil
}

func (s *memoryCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.repos[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.repos, id)
	return nil
}

// staticFetcher serves canned package indexes.
type staticFetcher struct {
	indexes map[string][]catalog.Package
}

func (f *staticFetcher) Fetch(ctx context.Context, url string) ([]catalog.Package, error) {
	return f.indexes[url], nil
}

// fixture is a fully wired test server on in-memory backends.
type fixture struct {
	server   *Server
	users    *memoryUsers
	auth     *auth.Service
	sessions *session.Store
	setup    *setup.Manager
	fetcher  *staticFetcher
	log      *logrus.Logger
}

// newFixture builds a server. installed toggles whether boot provisions
// the admin account.
func newFixture(t *testing.T, installed bool) *fixture {
	t.Helper()

	log, _ := logrustest.NewNullLogger()

	users := newMemoryUsers()
	authSvc, err := auth.NewService(users, auth.NewArgon2Hasher(), auth.NewPolicyValidator(), log)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewStore(client)

	adminPassword := ""
	if installed {
		adminPassword = testPassword
	}
	mgr := setup.NewManager(users, authSvc, "admin@acme.com", adminPassword, log)
	require.NoError(t, mgr.Initialize(context.Background()))

	fetcher := &staticFetcher{indexes: make(map[string][]catalog.Package)}
	catalogSvc := catalog.NewService(newMemoryCatalog(), catalog.NewCache(client), fetcher, &async.SyncExecutor{}, log)

	f := &fixture{
		users:    users,
		auth:     authSvc,
		sessions: sessions,
		setup:    mgr,
		fetcher:  fetcher,
		log:      log,
	}
	f.server = NewServer(Dependencies{
		Users:    users,
		Auth:     authSvc,
		Sessions: sessions,
		Setup:    mgr,
		Catalog:  catalogSvc,
		Log:      log,
	})
	return f
}

// do runs one request through the full middleware chain.
func (f *fixture) do(method, path, body, sessionCookie string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionCookie})
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

// register creates an account directly through the service.
func (f *fixture) register(t *testing.T, username, email string) *user.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), username, email, testPassword)
	require.NoError(t, err)
	return u
}

// sessionFor logs the user's id into a fresh session.
func (f *fixture) sessionFor(t *testing.T, u *user.User) string {
	t.Helper()
	id, err := f.sessions.Login(context.Background(), "", u.ID)
	require.NoError(t, err)
	return id
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) httputil.Problem {
	t.Helper()
	var p httputil.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

// sessionCookieValue extracts the session cookie set by a response, or ""
func sessionCookieValue(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}
