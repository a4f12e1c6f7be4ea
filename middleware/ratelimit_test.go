package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		ok, _ := rl.allow("10.0.0.1", now)
		if !ok {
			t.Fatalf("request %d rejected, want admitted", i+1)
		}
	}

	ok, retryAfter := rl.allow("10.0.0.1", now)
	if ok {
		t.Fatal("request over the limit admitted, want rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("retryAfter = %v, want within (0, window]", retryAfter)
	}

	// Other clients are unaffected.
	if ok, _ := rl.allow("10.0.0.2", now); !ok {
		t.Error("different client rejected, want admitted")
	}

	// The window expiring resets the count.
	if ok, _ := rl.allow("10.0.0.1", now.Add(2*time.Minute)); !ok {
		t.Error("request after window expiry rejected, want admitted")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := newRateLimiter(2, time.Minute)
	router := gin.New()
	router.Use(rl.middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	status := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if got := status(); got != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", got)
	}
	if got := status(); got != http.StatusOK {
		t.Fatalf("second request status = %d, want 200", got)
	}
	if got := status(); got != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", got)
	}
}

// The limiter must not hold its lock while the handler chain runs: a slow
// handler admitted first cannot block a later request's admit decision.
func TestRateLimiterDoesNotSerializeHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := newRateLimiter(10, time.Minute)
	release := make(chan struct{})
	entered := make(chan struct{})

	router := gin.New()
	router.Use(rl.middleware())
	router.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	router.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodGet, "/slow", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}()
	<-entered

	done := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/fast", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		done <- w.Code
	}()

	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Errorf("fast request status = %d, want 200", code)
		}
	case <-time.After(2 * time.Second):
		t.Error("fast request blocked behind the slow handler")
	}

	close(release)
	wg.Wait()
}
