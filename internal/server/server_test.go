package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/learnsphere/internal/catalog"
	"github.com/madhava-poojari/learnsphere/internal/config"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repo := store.NewMemStore()
	sd, err := store.LoadSeed("")
	require.NoError(t, err)
	require.NoError(t, sd.Apply(context.Background(), repo))

	cfg := &config.Config{
		BindAddr:        ":0",
		DefaultViewerID: "USR00ALEX1",
		MaxReceiptBytes: 1 << 20,
		ReceiptStorage:  config.ReceiptsLocal,
		UploadDir:       t.TempDir(),
		CSRFKey:         "0123456789abcdef0123456789abcdef",
		CORSOrigins:     []string{"http://localhost:3000"},
	}
	files := utils.NewFileStorage(cfg.UploadDir, "http://localhost:8080/uploads")
	gw := payment.NewSignedGateway("server-secret", "http://localhost:8080", time.Minute)
	svc := service.New(repo, catalog.NewService(repo, nil, time.Minute), gw, files, cfg.MaxReceiptBytes)
	return NewServer(cfg, repo, svc).Handler()
}

func TestServerMountsAPIAndPages(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/courses", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestAPISkipsCSRFButPagesEnforceIt(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/me/enrollments", strings.NewReader(`{"course_id":8}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/courses/5/enroll", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/v1/courses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
