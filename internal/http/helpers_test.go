package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/tasks-service/internal/domain"
	api "github.com/tazhibayda/tasks-service/internal/http"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
)

const testSecret = "test_secret"

// fakeStore implements repo.UserRepository and repo.TaskRepository in
// memory with the same query semantics as the Mongo store.
type fakeStore struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	tasks  map[int64]*domain.Task
	nextID int64
	base   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*domain.User),
		tasks: make(map[int64]*domain.Task),
		base:  time.Now().UTC(),
	}
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := f.users[key]; ok {
		return repo.ErrEmailExists
	}
	u.ID = primitive.NewObjectID()
	u.Email = key
	u.CreatedAt = time.Now().UTC()
	cp := *u
	f.users[key] = &cp
	return nil
}

func (f *fakeStore) UpsertGoogle(_ context.Context, email, name, sub string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(email))
	if u, ok := f.users[key]; ok {
		u.Provider = "google"
		u.ExternalID = sub
		cp := *u
		return &cp, nil
	}
	u := &domain.User{
		ID: primitive.NewObjectID(), Email: key, Name: name,
		Provider: "google", ExternalID: sub, CreatedAt: time.Now().UTC(),
	}
	f.users[key] = u
	cp := *u
	return &cp, nil
}

func (f *fakeStore) matching(owner primitive.ObjectID, q string) []*domain.Task {
	var out []*domain.Task
	for _, t := range f.tasks {
		if t.UserID != owner {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(q)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Done != out[j].Done {
			return !out[i].Done // pending first
		}
		return out[i].CreatedAt.After(out[j].CreatedAt) // newest first
	})
	return out
}

func (f *fakeStore) ListByOwner(_ context.Context, owner primitive.ObjectID, p repo.ListParams) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.matching(owner, p.Q)
	if p.Skip >= len(all) {
		return nil, nil
	}
	all = all[p.Skip:]
	if p.Limit < len(all) {
		all = all[:p.Limit]
	}
	out := make([]domain.Task, 0, len(all))
	for _, t := range all {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) CountByOwner(_ context.Context, owner primitive.ObjectID, q string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(owner, q))), nil
}

func (f *fakeStore) CreateTask(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	t.Done = false
	// strictly increasing timestamps keep the ordering deterministic
	t.CreatedAt = f.base.Add(time.Duration(f.nextID) * time.Second)
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeStore) FindTask(_ context.Context, id int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) ToggleTask(_ context.Context, id int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	t.Done = !t.Done
	cp := *t
	return &cp, nil
}

func (f *fakeStore) DeleteTaskByOwner(_ context.Context, id int64, owner primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.UserID != owner {
		return false, nil
	}
	delete(f.tasks, id)
	return true, nil
}

type testEnv struct {
	T      *testing.T
	Store  *fakeStore
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fs := newFakeStore()
	h := api.NewHandler(fs, fs, testSecret, 60, nil, 0, queue.NewNoop(),
		oauth.NewGoogle("", "", "", "state_secret"))
	return &testEnv{T: t, Store: fs, Router: api.NewRouter(h)}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in a user, returning the bearer header.
func (e *testEnv) signup(email string) map[string]string {
	e.T.Helper()
	w := e.do("POST", "/api/auth/register", `{"email":"`+email+`","password":"StrongP@ss1","name":"U"}`, nil)
	if w.Code != 201 {
		e.T.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	w = e.do("POST", "/api/auth/login", `{"email":"`+email+`","password":"StrongP@ss1"}`, nil)
	if w.Code != 200 {
		e.T.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var lr struct{ Access string }
	if err := json.Unmarshal(w.Body.Bytes(), &lr); err != nil || lr.Access == "" {
		e.T.Fatalf("login resp: %v %s", err, w.Body.String())
	}
	return map[string]string{"Authorization": "Bearer " + lr.Access}
}
