package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedAPI struct {
	router   *gin.Engine
	cache    *ResponseCache
	calls    int
	analyzes int
}

func newCachedAPI(t *testing.T, ttl time.Duration) *cachedAPI {
	gin.SetMode(gin.TestMode)
	api := &cachedAPI{router: gin.New(), cache: NewResponseCache(ttl, "/api/forms/analyze")}
	t.Cleanup(api.cache.Stop)

	api.router.Use(api.cache.Invalidate(), api.cache.Cache())
	api.router.GET("/api/applications/stats", func(c *gin.Context) {
		api.calls++
		c.JSON(http.StatusOK, gin.H{"count": api.calls})
	})
	api.router.GET("/api/applications/:id", func(c *gin.Context) {
		api.calls++
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "count": api.calls})
	})
	api.router.PUT("/api/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	api.router.POST("/api/forms/analyze", func(c *gin.Context) {
		api.analyzes++
		var body map[string]string
		_ = c.BindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"html": body["html"], "count": api.analyzes})
	})
	return api
}

func (api *cachedAPI) do(t *testing.T, method, path, body string) map[string]any {
	t.Helper()
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	api.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestResponseCache_CachesGET(t *testing.T) {
	api := newCachedAPI(t, time.Minute)
	assert.Equal(t, float64(1), api.do(t, "GET", "/api/applications/stats", "")["count"])
	assert.Equal(t, float64(1), api.do(t, "GET", "/api/applications/stats", "")["count"])
	assert.Equal(t, float64(2), api.do(t, "GET", "/api/applications/stats?platform=Lever", "")["count"])
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	api := newCachedAPI(t, time.Minute)
	api.do(t, "GET", "/api/applications/9", "")
	assert.Equal(t, float64(2), api.do(t, "GET", "/api/applications/9", "")["count"])
}

func TestResponseCache_Expires(t *testing.T) {
	api := newCachedAPI(t, time.Minute)
	now := time.Now()
	api.cache.now = func() time.Time { return now }

	api.do(t, "GET", "/api/applications/stats", "")
	now = now.Add(2 * time.Minute)
	assert.Equal(t, float64(2), api.do(t, "GET", "/api/applications/stats", "")["count"])
}

func TestResponseCache_InvalidatedByWrites(t *testing.T) {
	api := newCachedAPI(t, time.Minute)
	api.do(t, "GET", "/api/applications/stats", "")
	api.do(t, "PUT", "/api/profile", `{"personal_info":{}}`)
	assert.Equal(t, float64(2), api.do(t, "GET", "/api/applications/stats", "")["count"])
}

func TestResponseCache_CachesListedPOSTByBody(t *testing.T) {
	api := newCachedAPI(t, time.Minute)

	first := api.do(t, "POST", "/api/forms/analyze", `{"html":"<form></form>"}`)
	again := api.do(t, "POST", "/api/forms/analyze", `{"html":"<form></form>"}`)
	other := api.do(t, "POST", "/api/forms/analyze", `{"html":"<input>"}`)

	assert.Equal(t, float64(1), first["count"])
	assert.Equal(t, float64(1), again["count"])
	assert.Equal(t, "<form></form>", again["html"])
	assert.Equal(t, float64(2), other["count"])

	// a cached POST is not a write
	assert.Equal(t, float64(1), api.do(t, "GET", "/api/applications/stats", "")["count"])
	assert.Equal(t, float64(1), api.do(t, "GET", "/api/applications/stats", "")["count"])
}
