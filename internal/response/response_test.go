package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newEnvelopeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"pong": true})
	})
	return r
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	r := newEnvelopeRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	headerID := w.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("X-Request-ID header missing")
	}

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Metadata.RequestID != headerID {
		t.Errorf("metadata id %q, header id %q", body.Metadata.RequestID, headerID)
	}
	if body.Metadata.Timestamp == "" {
		t.Error("metadata timestamp missing")
	}
}

func TestRequestIDHonorsInboundHeader(t *testing.T) {
	r := newEnvelopeRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "caller-supplied-id" {
		t.Errorf("header id = %q, want caller-supplied-id", got)
	}

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Metadata.RequestID != "caller-supplied-id" {
		t.Errorf("metadata id = %q, want caller-supplied-id", body.Metadata.RequestID)
	}
}
