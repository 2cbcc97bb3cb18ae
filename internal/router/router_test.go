package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ancpricing/internal/handler"
	"ancpricing/internal/router"
	"ancpricing/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func TestSetup_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := router.Setup(handler.NewPricingHandler(new(mocks.MockPricingService)), handler.NewHealthHandler(okPinger{}), nil)

	want := map[string]bool{
		"POST /api/v1/pricing/import":          true,
		"GET /api/v1/pricing":                  true,
		"GET /api/v1/pricing/:id":              true,
		"GET /api/v1/pricing/:id/validation":   true,
		"POST /api/v1/pricing/:id/totals":      true,
		"POST /api/v1/pricing/:id/revalidate":  true,
		"GET /api/v1/pricing/:id/export-check": true,
		"POST /api/v1/pricing/:id/export.csv":  true,
		"GET /api/v1/pricing/:id/source":       true,
		"DELETE /api/v1/pricing/:id":           true,
		"GET /healthz":                         true,
		"GET /readyz":                          true,
		"GET /swagger/*any":                    true,
	}
	for _, route := range r.Routes() {
		delete(want, route.Method+" "+route.Path)
	}
	assert.Empty(t, want, "routes not registered")
}

func TestSetup_ServesSwaggerDoc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := router.Setup(handler.NewPricingHandler(new(mocks.MockPricingService)), handler.NewHealthHandler(okPinger{}), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/pricing/import")
}
