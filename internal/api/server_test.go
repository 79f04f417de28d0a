package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/progressr/internal/progress"
	"github.com/mark3labs/progressr/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "s3cret"

type countingSignaler struct{ count int }

func (c *countingSignaler) Signal() error {
	c.count++
	return nil
}

type fakeController struct {
	running    bool
	restartErr error
}

func (f *fakeController) Start() (string, error) {
	if f.running {
		return supervisor.AlreadyRunning, nil
	}
	f.running = true
	return supervisor.Started, nil
}

func (f *fakeController) Stop() (string, error) {
	if !f.running {
		return supervisor.AlreadyStopped, nil
	}
	f.running = false
	return supervisor.Stopped, nil
}

func (f *fakeController) Status() string {
	if f.running {
		return supervisor.Running
	}
	return supervisor.Stopped
}

func (f *fakeController) Restart(context.Context) (string, error) {
	if f.restartErr != nil {
		return "", f.restartErr
	}
	f.running = true
	return supervisor.Started, nil
}

type testEnv struct {
	handler http.Handler
	service *progress.Service
	signals *countingSignaler
	ctl     *fakeController
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	sig := &countingSignaler{}
	svc := progress.NewService(progress.NewStore(t.TempDir()), sig)
	ctl := &fakeController{}
	if opts.APIKey == "" {
		opts.APIKey = testKey
	}
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	return &testEnv{
		handler: New(svc, ctl, mcp, opts).Router(),
		service: svc,
		signals: sig,
		ctl:     ctl,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(HeaderAPIKey, testKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, key := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		if key != "" {
			req.Header.Set(HeaderAPIKey, key)
		}
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message"`)
	}

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	code, _ := env.do(t, http.MethodPost, "/mcp", "")
	assert.Equal(t, http.StatusTeapot, code)
}

func TestEmptySecretRejectsEverything(t *testing.T) {
	svc := progress.NewService(progress.NewStore(t.TempDir()), nil)
	handler := New(svc, nil, nil, Options{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set(HeaderAPIKey, "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCRUDFlow(t *testing.T) {
	env := newTestEnv(t, Options{})

	code, body := env.do(t, http.MethodPost, "/api/task", `{"name": "Alpha"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Task 'alpha' created", body["message"])

	code, _ = env.do(t, http.MethodPost, "/api/task", `{"name": "alpha"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, body = env.do(t, http.MethodPost, "/api/task", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "task name must not be empty", body["message"])

	code, _ = env.do(t, http.MethodPost, "/api/task", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodPut, "/api/task/alpha/activate", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task 'alpha' is now active", body["message"])

	code, _ = env.do(t, http.MethodPost, "/api/task/alpha/category", `{"name": "Art"}`)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = env.do(t, http.MethodPost, "/api/task/ghost/category", `{"name": "art"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodPost, "/api/task/alpha/category/art/task", `{"name": "concept"}`)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = env.do(t, http.MethodPost, "/api/task/alpha/category/art/task", `{"name": "concept"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPut, "/api/task/alpha/category/art/task/concept", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodPut, "/api/task/alpha/category/art/task/missing", "")
	assert.Equal(t, http.StatusNotFound, code)

	signals := env.signals.count
	code, _ = env.do(t, http.MethodPost, "/api/task/alpha/category/art/note", `{"note": "palette"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, signals, env.signals.count)

	code, body = env.do(t, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, code)
	alpha := body["alpha"].(map[string]any)
	assert.Equal(t, true, alpha["active"])
	art := alpha["categories"].(map[string]any)["art"].(map[string]any)
	assert.Equal(t, "palette", art["note"])
	assert.Equal(t, map[string]any{"concept": true}, art["subtasks"])

	code, body = env.do(t, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(100), body["aggregate"])

	code, _ = env.do(t, http.MethodDelete, "/api/task/alpha/category/art/note", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodPut, "/api/task/alpha/category/art", `{"name": "design"}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, "/api/task/alpha/category/design/task/concept", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, "/api/task/alpha/category/design", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, "/api/task/alpha/category/design", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = env.do(t, http.MethodPut, "/api/task/alpha", `{"name": "Beta"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task renamed to 'beta'", body["message"])

	code, _ = env.do(t, http.MethodDelete, "/api/task/beta", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, "/api/task/beta", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEscapedPathParams(t *testing.T) {
	env := newTestEnv(t, Options{})

	code, _ := env.do(t, http.MethodPost, "/api/task", `{"name": "space game"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body := env.do(t, http.MethodPut, "/api/task/space%20game/activate", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task 'space game' is now active", body["message"])

	// Names holding a literal percent sign or slash arrive double-encoded.
	code, _ = env.do(t, http.MethodPost, "/api/task", `{"name": "a%41"}`)
	require.Equal(t, http.StatusCreated, code)
	code, body = env.do(t, http.MethodPut, "/api/task/a%2541/activate", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Task 'a%41' is now active", body["message"])

	code, _ = env.do(t, http.MethodPost, "/api/task/a%2541/category", `{"name": "ui/ux"}`)
	require.Equal(t, http.StatusCreated, code)
	code, _ = env.do(t, http.MethodPost, "/api/task/a%2541/category/ui%2Fux/task", `{"name": "50% done"}`)
	require.Equal(t, http.StatusCreated, code)
	code, _ = env.do(t, http.MethodPut, "/api/task/a%2541/category/ui%2Fux/task/50%25%20done", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodDelete, "/api/task/a%2541", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestControlEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{})

	send := func(method, path string) (int, string) {
		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		var out statusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return rec.Code, out.Status
	}

	code, status := send(http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stopped", status)

	code, status = send(http.MethodPost, "/stop")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "already stopped", status)

	code, status = send(http.MethodPost, "/start")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "started", status)

	code, status = send(http.MethodPost, "/start")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "already running", status)

	code, status = send(http.MethodPost, "/restart")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "started", status)

	env.ctl.restartErr = errors.New("spawn failed")
	code, status = send(http.MethodPost, "/restart")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "error", status)

	code, status = send(http.MethodPost, "/stop")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stopped", status)
}

func TestControlRequiresKey(t *testing.T) {
	env := newTestEnv(t, Options{ControlRequiresKey: true})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	code, body := env.do(t, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stopped", body["status"])
}

func TestControlWithoutController(t *testing.T) {
	svc := progress.NewService(progress.NewStore(t.TempDir()), nil)
	handler := New(svc, nil, nil, Options{APIKey: testKey}).Router()

	req := httptest.NewRequest(http.MethodPost, "/start", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardAndHealth(t *testing.T) {
	env := newTestEnv(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "X-API-KEY")

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
}
