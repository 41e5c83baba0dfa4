package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"report_portal/internal/blob"
	"report_portal/internal/domain"
	"report_portal/internal/middleware"
	"report_portal/internal/service"
	"report_portal/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers struct{ users []domain.User }

func (m *memUsers) FindByUsername(_ context.Context, username string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		if u.Username == username {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) ListClients(context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		if u.Role == domain.RoleClient {
			out = append(out, u)
		}
	}
	return out, nil
}

type memReports struct {
	mu    sync.Mutex
	rows  []domain.Report
	users *memUsers
}

func (m *memReports) ListAll(ctx context.Context) ([]domain.ReportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ReportRow, 0, len(m.rows))
	for _, r := range m.rows {
		row := domain.ReportRow{Report: r}
		if u, err := m.users.FindByID(ctx, r.ClientID); err == nil {
			row.ClientName = u.Name
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memReports) ListByClient(_ context.Context, clientID uint) ([]domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Report
	for _, r := range m.rows {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReports) FindByID(_ context.Context, id uint) (*domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memReports) Create(_ context.Context, r *domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, *r)
	return nil
}

func (m *memReports) FileNamesByClient(_ context.Context, clientID uint) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.rows {
		if r.ClientID == clientID {
			out = append(out, r.FileName)
		}
	}
	return out, nil
}

type noopNotifier struct{}

func (noopNotifier) ReportUploaded(context.Context, *domain.User, *domain.Report) error { return nil }

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// testApp is the full router over in-memory repositories, a miniredis
// session store and the local blob backend served by the router itself.
type testApp struct {
	router  http.Handler
	redis   *miniredis.Miniredis
	reports *memReports
	local   *blob.LocalStore
	svc     *service.ReportService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	users := &memUsers{users: []domain.User{
		{ID: 1, Username: "admin", PasswordHash: hash(t, "admin-pass"), Role: domain.RoleAdmin, Name: "Lab Admin"},
		{ID: 2, Username: "abc", PasswordHash: hash(t, "abc-pass"), Role: domain.RoleClient, Name: "ABC Company", Email: "ops@abc.test"},
		{ID: 3, Username: "xyz", PasswordHash: hash(t, "xyz-pass"), Role: domain.RoleClient, Name: "XYZ Corporation"},
	}}
	reports := &memReports{users: users}

	app := &testApp{redis: miniredis.RunT(t), reports: reports}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	rdb := redis.NewClient(&redis.Options{Addr: app.redis.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := session.NewRedisStore(rdb, time.Hour)

	local, err := blob.NewLocalStore(t.TempDir(), "test-secret", srv.URL)
	require.NoError(t, err)
	app.local = local
	app.svc = service.NewReportService(users, reports, local, blob.NewFetcher(5*time.Second, 0), noopNotifier{}, nil, time.Minute)

	router, err := NewRouter(Deps{
		Auth:           service.NewAuthService(users, sessions, nil),
		Reports:        app.svc,
		Sessions:       sessions,
		LocalBlobs:     local,
		Gate:           middleware.GatePolicy{RedirectAuthenticatedFromLogin: true},
		Cookie:         CookieConfig{Name: "sid", TTL: time.Hour},
		MaxUploadBytes: 1 << 20,
	})
	require.NoError(t, err)
	app.router = router
	return app
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) postLogin(username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

// login signs in and returns the session cookie
func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := a.postLogin(username, password)
	require.Equal(t, http.StatusFound, w.Code)
	return sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}
