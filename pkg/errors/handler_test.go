package errors

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestErrorBudget(t *testing.T) {
	h := NewErrorHandler("", nil)
	h.maxErrors = 2

	for i := 0; i < 2; i++ {
		h.IncrementError()
	}
	if h.Exhausted() {
		t.Error("Exhausted() = true at the limit, want false")
	}

	if got := h.IncrementError(); got != 3 {
		t.Errorf("IncrementError() = %v, want %v", got, 3)
	}
	if !h.Exhausted() {
		t.Error("Exhausted() = false over the limit, want true")
	}
}

func TestShutdownOnExhaustedBudget(t *testing.T) {
	var shutdownCalled atomic.Bool
	exited := make(chan int, 1)

	h := NewErrorHandler("", func() { shutdownCalled.Store(true) })
	h.maxErrors = 0
	h.resetInterval = time.Hour
	h.checkInterval = 10 * time.Millisecond
	h.exitFunc = func(code int) { exited <- code }

	h.IncrementError()
	h.start()
	defer h.Stop()

	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("exit code = %v, want %v", code, 1)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not shut down")
	}
	if !shutdownCalled.Load() {
		t.Error("shutdown callback was not invoked")
	}
}

func TestReportPostsToWebhook(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %v, want application/json", r.Header.Get("Content-Type"))
		}
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewErrorHandler(srv.URL, nil)
	h.Report(ReportErrorOptions{Error: "Test", Message: "prueba"})

	if got := hits.Load(); got != 1 {
		t.Errorf("webhook hits = %v, want %v", got, 1)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	func() {
		defer RecoverMiddleware()()
		panic("boom")
	}()
}

func TestGoRecovers(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	Go("test", func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()
}
