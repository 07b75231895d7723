package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/htmlgateway/internal/gateway"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/logging"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/htmlgateway/internal/markup"
	"github.com/GriffinCanCode/htmlgateway/internal/storage"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	router  *gin.Engine
	mem     *storage.Memory
	gw      *gateway.Gateway
	metrics *monitoring.Metrics
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := storage.NewMemory()
	mem.MkdirAll("html_files")

	gw, err := gateway.New(mem, markup.CSSCounter{}, gateway.Config{})
	require.NoError(t, err)
	gw.WithClock(func() time.Time { return fixedTime })

	metrics := monitoring.NewMetrics()
	router := gin.New()
	NewHandlers(gw, logging.NewNop(), metrics).Register(router)

	return &testEnv{router: router, mem: mem, gw: gw, metrics: metrics}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) read(t *testing.T, name string) string {
	t.Helper()
	data, err := e.mem.ReadFile(t.Context(), name)
	require.NoError(t, err)
	return string(data)
}

func TestRoot(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgInternalError, w.Body.String())

	env.mem.Put("index.html", "<!DOCTYPE html><html><body>Home</body></html>")
	w = env.do("GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<!DOCTYPE html><html><body>Home</body></html>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestCountImgTags(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/count-img-tags", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	env.mem.Put("html_files/a.html", `<img src="1"><p><img src="2"></p>`)
	env.mem.Put("html_files/b.html", `<p>none</p>`)
	env.mem.Put("html_files/notes.txt", `<img>`)

	w = env.do("GET", "/count-img-tags", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"file":"a.html","count":2},{"file":"b.html","count":0}]`, w.Body.String())

	env.mem.Fail(storage.OpRead, "html_files/b.html", errors.New("disk"))
	w = env.do("GET", "/count-img-tags", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgInternalError, w.Body.String())
}

func TestGenerateBasicHTML(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/generate-basic-html", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(gateway.BasicPage()), w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, string(gateway.BasicPage()), env.read(t, "new_page.html"))

	env.mem.Fail(storage.OpWrite, "new_page.html", errors.New("read-only"))
	w = env.do("GET", "/generate-basic-html", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerateMultipleHTML(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
		wantFiles  int
	}{
		{"three files", "?numberOfFiles=3", http.StatusOK, "3 HTML files generated successfully!", 3},
		{"missing", "", http.StatusBadRequest, MsgInvalidCount, 0},
		{"non-numeric", "?numberOfFiles=abc", http.StatusBadRequest, MsgInvalidCount, 0},
		{"zero", "?numberOfFiles=0", http.StatusBadRequest, MsgInvalidCount, 0},
		{"negative", "?numberOfFiles=-2", http.StatusBadRequest, MsgInvalidCount, 0},
		{"fraction", "?numberOfFiles=2.5", http.StatusBadRequest, MsgInvalidCount, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t)

			w := env.do("GET", "/generate-multiple-html"+tt.query, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())

			for i := 1; i <= tt.wantFiles; i++ {
				assert.Equal(t, string(gateway.NumberedPage(i)), env.read(t, gateway.NumberedPageName(i)))
			}
			assert.False(t, env.mem.Exists(gateway.NumberedPageName(tt.wantFiles+1)))
		})
	}
}

func TestUpdateHTML(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantFile   string
	}{
		{
			name:       "plain keyword",
			body:       `{"keyword":"cat","replacement":"dog"}`,
			wantStatus: http.StatusOK,
			wantBody:   "File updated successfully.",
			wantFile:   "dog and dog, a.b, a-b",
		},
		{
			name:       "pattern keyword",
			body:       `{"keyword":"a.b","replacement":"X"}`,
			wantStatus: http.StatusOK,
			wantFile:   "cat and cat, X, X",
			wantBody:   "File updated successfully.",
		},
		{
			name:       "literal mode",
			body:       `{"keyword":"a.b","replacement":"X","mode":"literal"}`,
			wantStatus: http.StatusOK,
			wantBody:   "File updated successfully.",
			wantFile:   "cat and cat, X, a-b",
		},
		{
			name:       "missing keyword",
			body:       `{"replacement":"dog"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   MsgInvalidBody,
			wantFile:   "cat and cat, a.b, a-b",
		},
		{
			name:       "keyword of wrong type",
			body:       `{"keyword":5,"replacement":"dog"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   MsgInvalidBody,
			wantFile:   "cat and cat, a.b, a-b",
		},
		{
			name:       "malformed json",
			body:       `{"keyword":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   MsgInvalidBody,
			wantFile:   "cat and cat, a.b, a-b",
		},
		{
			name:       "unknown mode",
			body:       `{"keyword":"cat","replacement":"dog","mode":"fuzzy"}`,
			wantStatus: http.StatusBadRequest,
			wantFile:   "cat and cat, a.b, a-b",
		},
		{
			name:       "invalid pattern",
			body:       `{"keyword":"(cat","replacement":"dog"}`,
			wantStatus: http.StatusBadRequest,
			wantFile:   "cat and cat, a.b, a-b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t)
			env.mem.Put("about.html", "cat and cat, a.b, a-b")

			w := env.do("PUT", "/update-html", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			assert.Equal(t, tt.wantFile, env.read(t, "about.html"))
		})
	}
}

func TestUpdateHTMLMissingFile(t *testing.T) {
	env := setupTest(t)

	w := env.do("PUT", "/update-html", `{"keyword":"cat","replacement":"dog"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgInternalError, w.Body.String())
}

func TestDeleteHTML(t *testing.T) {
	env := setupTest(t)
	env.mem.Put("obsolete_page.html", "old")

	w := env.do("DELETE", "/delete-html", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File obsolete_page.html deleted successfully.", w.Body.String())
	assert.False(t, env.mem.Exists("obsolete_page.html"))

	w = env.do("DELETE", "/delete-html", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgInternalError, w.Body.String())
}

func TestRenameSingleFile(t *testing.T) {
	env := setupTest(t)
	env.mem.Put("about.html", "about")

	w := env.do("PUT", "/rename-single-file", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File renamed successfully.", w.Body.String())
	assert.False(t, env.mem.Exists("about.html"))
	assert.Equal(t, "about", env.read(t, "about1.html"))

	w = env.do("PUT", "/rename-single-file", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRenameMultipleFilesWait(t *testing.T) {
	env := setupTest(t)
	env.mem.Put("html_files/a.html", "a")
	env.mem.Put("html_files/b.html", "b")

	w := env.do("PUT", "/rename-multiple-files?wait=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Files renamed successfully.", w.Body.String())
	taskID := w.Header().Get("X-Task-ID")
	require.NotEmpty(t, taskID)

	assert.Equal(t, "a", env.read(t, "html_files/a.html_1709294400000.html"))
	assert.Equal(t, "b", env.read(t, "html_files/b.html_1709294400000.html"))

	w = env.do("GET", "/rename-tasks/"+taskID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var status gateway.TaskStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, taskID, status.ID.String())
	assert.Equal(t, 2, status.Total)
	assert.Equal(t, 2, status.Renamed)
	assert.True(t, status.Done)
}

func TestRenameMultipleFilesHidesPerFileErrors(t *testing.T) {
	env := setupTest(t)
	env.mem.Put("html_files/a.html", "a")
	env.mem.Fail(storage.OpRename, "html_files/a.html", errors.New("busy"))

	w := env.do("PUT", "/rename-multiple-files?wait=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Files renamed successfully.", w.Body.String())
	assert.True(t, env.mem.Exists("html_files/a.html"))
}

func TestRenameMultipleFilesRespondsBeforeCompletion(t *testing.T) {
	env := setupTest(t)
	env.mem.Put("html_files/a.html", "a")

	w := env.do("PUT", "/rename-multiple-files", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Files renamed successfully.", w.Body.String())

	require.NoError(t, env.gw.Close(t.Context()))
	assert.True(t, env.mem.Exists("html_files/a.html_1709294400000.html"))
}

func TestRenameMultipleFilesMissingDirectory(t *testing.T) {
	env := setupTest(t)
	require.NoError(t, env.mem.Remove(t.Context(), "html_files"))

	w := env.do("PUT", "/rename-multiple-files", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("X-Task-ID"))
}

func TestRenameMultipleFilesDuringShutdown(t *testing.T) {
	env := setupTest(t)
	env.mem.Put("html_files/a.html", "a")
	require.NoError(t, env.gw.Close(t.Context()))

	w := env.do("PUT", "/rename-multiple-files", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, MsgShuttingDown, w.Body.String())
	assert.True(t, env.mem.Exists("html_files/a.html"))
}

func TestRenameTaskNotFound(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/rename-tasks/garbage", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("GET", "/rename-tasks/task_01HQXW5P7R8ZYFG9K3NMVJT2CD", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgTaskNotFound, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTest(t)

	w := env.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "stats")

	w = env.do("GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "htmlgateway_uptime_seconds")
}
