package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type CacheEntry struct {
	Body        []byte
	ContentType string
	ExpiresAt   time.Time
}

// ResponseCache memoises successful GET responses, plus POSTs to the
// listed paths keyed on their body. Any successful write through
// Invalidate clears it.
type ResponseCache struct {
	cache     map[string]*CacheEntry
	mu        sync.RWMutex
	ttl       time.Duration
	postPaths map[string]bool
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewResponseCache(ttl time.Duration, postPaths ...string) *ResponseCache {
	rc := &ResponseCache{
		cache:     make(map[string]*CacheEntry),
		ttl:       ttl,
		postPaths: make(map[string]bool, len(postPaths)),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	for _, p := range postPaths {
		rc.postPaths[p] = true
	}
	go rc.cleanup()
	return rc
}

func (rc *ResponseCache) Stop() {
	rc.stopOnce.Do(func() { close(rc.stop) })
}

func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && !(c.Request.Method == http.MethodPost && rc.postPaths[c.FullPath()]) {
			c.Next()
			return
		}

		key := rc.generateKey(c)

		rc.mu.RLock()
		entry, exists := rc.cache[key]
		rc.mu.RUnlock()
		if exists && rc.now().Before(entry.ExpiresAt) {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Body)
			c.Abort()
			return
		}

		writer := &responseWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK && writer.body.Len() > 0 {
			rc.mu.Lock()
			rc.cache[key] = &CacheEntry{
				Body:        bytes.Clone(writer.body.Bytes()),
				ContentType: writer.Header().Get("Content-Type"),
				ExpiresAt:   rc.now().Add(rc.ttl),
			}
			rc.mu.Unlock()
		}
	}
}

// Invalidate clears the cache after every successful write request.
func (rc *ResponseCache) Invalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if rc.postPaths[c.FullPath()] {
			return
		}
		if c.Writer.Status() < http.StatusBadRequest {
			rc.Clear()
		}
	}
}

func (rc *ResponseCache) Clear() {
	rc.mu.Lock()
	rc.cache = make(map[string]*CacheEntry)
	rc.mu.Unlock()
}

func (rc *ResponseCache) generateKey(c *gin.Context) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write([]byte(c.Request.URL.RawQuery))

	if c.Request.Method == http.MethodPost {
		body, _ := c.GetRawData()
		h.Write(body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (rc *ResponseCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rc.stop:
			return
		case <-ticker.C:
			rc.mu.Lock()
			now := rc.now()
			for key, entry := range rc.cache {
				if now.After(entry.ExpiresAt) {
					delete(rc.cache, key)
				}
			}
			rc.mu.Unlock()
		}
	}
}

type responseWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
