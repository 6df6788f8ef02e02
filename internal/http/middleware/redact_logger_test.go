package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	in := "email=ann@example.org&phone=+1 212-555-1212&id=123e4567-e89b-42d3-a456-426614174000"
	out := Redact(in)
	for _, leaked := range []string{"ann@example.org", "555-1212", "123e4567"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("%q leaked in %q", leaked, out)
		}
	}
	for _, tag := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(out, tag) {
			t.Fatalf("missing %s in %q", tag, out)
		}
	}
	if Redact("") != "" {
		t.Fatal("empty stays empty")
	}
}

func TestRedactingLogger_MasksAndLevels(t *testing.T) {
	buf := captureLogger(t)
	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}, SkipPaths: []string{"/metrics"}}))
	r.GET("/ok", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside handler")
		c.String(http.StatusOK, "ok")
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "m") })

	req := httptest.NewRequest(http.MethodGet, "/ok?to=bob@example.org", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-Api-Key", "k-123")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	out := buf.String()
	for _, leaked := range []string{"secret-token", "k-123", "bob@example.org"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("%q leaked: %s", leaked, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want handler line + 2 access lines, got %d:\n%s", len(lines), out)
	}
	var handlerLine, okLine, badLine map[string]any
	_ = json.Unmarshal([]byte(lines[0]), &handlerLine)
	_ = json.Unmarshal([]byte(lines[1]), &okLine)
	_ = json.Unmarshal([]byte(lines[2]), &badLine)
	if handlerLine["path"] != "/ok" || handlerLine["request_id"] == "" {
		t.Fatalf("request-scoped logger missing fields: %v", handlerLine)
	}
	if okLine["level"] != "info" || okLine["authenticated"] != false {
		t.Fatalf("ok line = %v", okLine)
	}
	if badLine["level"] != "warn" {
		t.Fatalf("bad line = %v", badLine)
	}
}
