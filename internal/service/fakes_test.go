package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"report_portal/internal/blob"
	"report_portal/internal/domain"
	"report_portal/internal/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- users ---

type fakeUsers struct {
	users   []domain.User
	findErr error
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) ([]domain.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.User
	for _, u := range f.users {
		if u.Username == username {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) ListClients(context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Role == domain.RoleClient {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- reports ---

type fakeReports struct {
	mu        sync.Mutex
	rows      []domain.Report
	users     *fakeUsers
	createErr error
	nextID    uint
}

func (f *fakeReports) ListAll(context.Context) ([]domain.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ReportRow, 0, len(f.rows))
	for _, r := range f.rows {
		row := domain.ReportRow{Report: r}
		if u, err := f.users.FindByID(context.Background(), r.ClientID); err == nil {
			row.ClientName = u.Name
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeReports) ListByClient(_ context.Context, clientID uint) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Report
	for _, r := range f.rows {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReports) FindByID(_ context.Context, id uint) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReports) Create(_ context.Context, r *domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	r.ID = 100 + f.nextID
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeReports) FileNamesByClient(_ context.Context, clientID uint) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.rows {
		if r.ClientID == clientID {
			out = append(out, r.FileName)
		}
	}
	return out, nil
}

// --- blobs ---

type memObject struct {
	data     []byte
	ctype    string
	modified time.Time
}

// memBlobs serves its signed URLs from an httptest server so downloads go
// through a real HTTP fetch.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string]memObject
	srv     *httptest.Server
	putErr  error
	signErr error
	now     func() time.Time
}

func newMemBlobs(t *testing.T) *memBlobs {
	t.Helper()
	m := &memBlobs{objects: map[string]memObject{}, now: time.Now}
	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		obj, ok := m.objects[strings.TrimPrefix(r.URL.Path, "/")]
		m.mu.Unlock()
		if !ok || r.URL.Query().Get("sig") != "ok" {
			http.Error(w, "denied", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", obj.ctype)
		_, _ = w.Write(obj.data)
	}))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *memBlobs) Put(_ context.Context, container, key string, data []byte, ct string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[container+"/"+key] = memObject{data: append([]byte(nil), data...), ctype: ct, modified: m.now()}
	return nil
}

func (m *memBlobs) SignedURL(_ context.Context, container, key string, _ time.Duration) (string, error) {
	if m.signErr != nil {
		return "", m.signErr
	}
	return m.srv.URL + "/" + container + "/" + key + "?sig=ok", nil
}

func (m *memBlobs) List(_ context.Context, container string) ([]blob.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []blob.Info
	for k, o := range m.objects {
		if strings.HasPrefix(k, container+"/") {
			out = append(out, blob.Info{Key: strings.TrimPrefix(k, container+"/"), Size: int64(len(o.data)), LastModified: o.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memBlobs) Delete(_ context.Context, container, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, container+"/"+key)
	return nil
}

func (m *memBlobs) has(container, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[container+"/"+key]
	return ok
}

// --- notifier ---

type fakeNotifier struct {
	mu   sync.Mutex
	sent []uint
	err  error
}

func (f *fakeNotifier) ReportUploaded(_ context.Context, client *domain.User, report *domain.Report) error {
	if f.err != nil {
		return f.err
	}
	if client.Email == "" {
		return domain.ErrMail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, report.ID)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// --- sessions ---

type fakeSessions struct {
	mu         sync.Mutex
	sessions   map[string]*session.Session
	destroyErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*session.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, user *domain.SessionUser) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &session.Session{ID: uuid.NewString(), User: user, CreatedAt: time.Now()}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessions) Destroy(_ context.Context, id string) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

// --- fixtures ---

var errBoom = errors.New("boom")

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func seedUsers(t *testing.T) *fakeUsers {
	t.Helper()
	return &fakeUsers{users: []domain.User{
		{ID: 1, Username: "admin", PasswordHash: mustHash(t, "admin-pass"), Role: domain.RoleAdmin, Name: "Lab Admin"},
		{ID: 2, Username: "abc", PasswordHash: mustHash(t, "abc-pass"), Role: domain.RoleClient, Name: "ABC Company", Email: "ops@abc.test"},
		{ID: 3, Username: "xyz", PasswordHash: mustHash(t, "xyz-pass"), Role: domain.RoleClient, Name: "XYZ Corporation"},
	}}
}

var (
	adminUser  = &domain.SessionUser{ID: 1, Username: "admin", Role: domain.RoleAdmin}
	abcUser    = &domain.SessionUser{ID: 2, Username: "abc", Role: domain.RoleClient}
	xyzUser    = &domain.SessionUser{ID: 3, Username: "xyz", Role: domain.RoleClient}
	strayUser  = &domain.SessionUser{ID: 9, Username: "ghost", Role: "auditor"}
	samplePDF  = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\n%%EOF")
	sampleDate = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
)

type harness struct {
	users    *fakeUsers
	reports  *fakeReports
	blobs    *memBlobs
	notifier *fakeNotifier
	svc      *ReportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := seedUsers(t)
	reports := &fakeReports{users: users, rows: []domain.Report{
		{ID: 1, Name: "Air Quality Test", FileName: "1_sample.pdf", Date: sampleDate, ClientID: 2},
		{ID: 2, Name: "Water Quality Test", FileName: "2_sample.pdf", Date: sampleDate, ClientID: 3},
		{ID: 3, Name: "Noise Test", FileName: "3_sample.pdf", Date: sampleDate, ClientID: 2},
	}}
	blobs := newMemBlobs(t)
	notifier := &fakeNotifier{}
	svc := NewReportService(users, reports, blobs, blob.NewFetcher(5*time.Second, 0), notifier, nil, 15*time.Minute)
	return &harness{users: users, reports: reports, blobs: blobs, notifier: notifier, svc: svc}
}
