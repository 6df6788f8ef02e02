package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) *gin.Engine {
	r := gin.New()
	r.Use(IdempotencyValidator(opts, lookup))
	r.POST("/wish", func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": key, "replay": IsReplay(c), "bypass": IsRateBypass(c)})
	})
	return r
}

func TestIdempotencyValidator_NoHeader(t *testing.T) {
	called := false
	r := idemRouter(IdempotencyOptions{}, func(context.Context, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wish", nil))
	if w.Code != http.StatusOK || called {
		t.Fatalf("status=%d lookupCalled=%v", w.Code, called)
	}
	if body := decodeBody(t, w); body["key"] != "" || body["replay"] != false {
		t.Fatalf("body = %v", body)
	}
}

func TestIdempotencyValidator_Invalid(t *testing.T) {
	r := idemRouter(IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z]+$`)}, nil)
	for _, key := range []string{"toolongkey", "UPPER", "sp ace"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/wish", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["code"] != "bad_idempotency_key" {
			t.Fatalf("key %q: status %d body %s", key, w.Code, w.Body.String())
		}
	}
}

func TestIdempotencyValidator_ReplayFlagsAndClientScope(t *testing.T) {
	var gotClient, gotKey string
	r := idemRouter(IdempotencyOptions{}, func(_ context.Context, clientID, key string, _ time.Time) (bool, error) {
		gotClient, gotKey = clientID, key
		return key == "seen-1", nil
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wish", nil)
	req.Header.Set(HeaderIdempotencyKey, "seen-1")
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	r.ServeHTTP(w, req)
	body := decodeBody(t, w)
	if body["key"] != "seen-1" || body["replay"] != true || body["bypass"] != true {
		t.Fatalf("body = %v", body)
	}
	if gotClient != "198.51.100.1" || gotKey != "seen-1" {
		t.Fatalf("lookup args = %q %q", gotClient, gotKey)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/wish", nil)
	req.Header.Set(HeaderIdempotencyKey, "fresh")
	r.ServeHTTP(w, req)
	if body := decodeBody(t, w); body["key"] != "fresh" || body["replay"] != false {
		t.Fatalf("body = %v", body)
	}
}

func TestIdempotencyValidator_LookupErrorIsLogged(t *testing.T) {
	buf := captureLogger(t)
	r := idemRouter(IdempotencyOptions{}, func(context.Context, string, string, time.Time) (bool, error) {
		return false, errors.New("db down")
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wish", nil)
	req.Header.Set(HeaderIdempotencyKey, "k")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("lookup errors must not block: %d", w.Code)
	}
	if !strings.Contains(buf.String(), "idempotency lookup failed") {
		t.Fatalf("log = %s", buf.String())
	}
}
