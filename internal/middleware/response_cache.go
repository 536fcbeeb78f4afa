package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ResponseCache is a short-lived read cache for GET responses. Entries are
// keyed by URL plus bearer token so two users never see each other's data,
// and the whole cache is flushed on any successful write request: a student
// who just submitted must immediately see fresh results.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	status      int
	contentType string
	body        []byte
	expiresAt   time.Time
}

// NewResponseCache creates a ResponseCache with the given entry TTL.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Cacheable URL prefixes. Everything else always hits the handlers.
var cacheablePrefixes = []string{
	"/api/v1/exams",
	"/api/v1/questions",
	"/api/v1/classes",
	"/api/v1/groups",
	"/api/v1/subjects",
	"/api/v1/chapters",
	"/api/v1/topics",
	"/api/v1/exam-results",
}

func cacheable(path string) bool {
	for _, prefix := range cacheablePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

type captureWriter struct {
	gin.ResponseWriter
	body []byte
}

func (cw *captureWriter) Write(data []byte) (int, error) {
	cw.body = append(cw.body, data...)
	return cw.ResponseWriter.Write(data)
}

func (cw *captureWriter) WriteString(s string) (int, error) {
	return cw.Write([]byte(s))
}

// Middleware serves cached GET responses and invalidates on writes.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			if c.Writer.Status() < http.StatusBadRequest {
				rc.Flush()
			}
			return
		}

		if !cacheable(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI() + "|" + c.GetHeader("Authorization")

		rc.mu.Lock()
		entry, ok := rc.entries[key]
		if ok && time.Now().Before(entry.expiresAt) {
			rc.mu.Unlock()
			c.Header("X-Cache", "HIT")
			c.Data(entry.status, entry.contentType, entry.body)
			c.Abort()
			return
		}
		delete(rc.entries, key)
		rc.mu.Unlock()

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		if cw.Status() != http.StatusOK {
			return
		}

		rc.mu.Lock()
		rc.entries[key] = &cacheEntry{
			status:      cw.Status(),
			contentType: cw.Header().Get("Content-Type"),
			body:        cw.body,
			expiresAt:   time.Now().Add(rc.ttl),
		}
		rc.mu.Unlock()
	}
}

// Flush drops every cached entry.
func (rc *ResponseCache) Flush() {
	rc.mu.Lock()
	rc.entries = make(map[string]*cacheEntry)
	rc.mu.Unlock()
}
