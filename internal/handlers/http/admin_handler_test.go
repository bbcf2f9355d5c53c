package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"futurfounder/internal/core/domain"
	"futurfounder/internal/core/ports"
	"futurfounder/internal/core/services"
	"futurfounder/internal/infrastructure/middleware"
	"futurfounder/internal/infrastructure/repositories/memory"
	"futurfounder/pkg/config"
	"futurfounder/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminSecret = "test-secret"

func setupAdminRouter(t *testing.T) (*gin.Engine, *services.AnalyticsService, ports.AssignmentRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewMemoryAssignmentRepository()
	cfg := config.DefaultConfig().Analytics
	analytics := services.NewAnalyticsService(cfg, repo, nil, zap.NewNop().Sugar())
	analytics.Initialize()
	t.Cleanup(analytics.Close)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(zap.NewNop().Sugar()))
	NewAdminHandler(analytics, repo).SetupRoutes(router, middleware.AdminAuthMiddleware(adminSecret))
	return router, analytics, repo
}

func adminToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	router, _, _ := setupAdminRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/assignments/v1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeUnauthorized), resp.Error)
}

func TestAdminRoutes_RejectWrongSecret(t *testing.T) {
	router, _, _ := setupAdminRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/assignments/v1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "wrong-secret"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAssignments(t *testing.T) {
	router, _, repo := setupAdminRouter(t)

	require.NoError(t, repo.Put(context.Background(), "v1", domain.AssignmentMap{
		"hero": {TestID: "hero", VariantID: "control", VariantName: "Control"},
	}))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/assignments/v1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, adminSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		VisitorID   string               `json:"visitor_id"`
		Assignments domain.AssignmentMap `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "v1", resp.VisitorID)
	assert.Equal(t, domain.VariantID("control"), resp.Assignments["hero"].VariantID)
}

func TestGetAssignments_UnknownVisitorNotFound(t *testing.T) {
	router, _, _ := setupAdminRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/assignments/never-seen", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, adminSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeNotFound), resp.Error)
}

func TestReconfigure_TogglesGates(t *testing.T) {
	router, analytics, _ := setupAdminRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"conversion_tracking_enabled": false,
		"debug":                       true,
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/reconfigure", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken(t, adminSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cfg := analytics.Config()
	assert.False(t, cfg.ConversionTrackingEnabled)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.ABTestingEnabled, "omitted fields keep their values")
	assert.Equal(t, services.StateReady, analytics.State(), "facade is ready again after the swap")
}
