package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestServer(t *testing.T, source SourceFunc) *Server {
	t.Helper()
	defaults := GenerateOptions{Words: 2, MaxAttempts: 100, Seed: 1}
	srv := NewServer(NewStore(), source, defaults, log.New(io.Discard))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

type jobResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	Crossword *struct {
		Rows  int `json:"rows"`
		Cols  int `json:"cols"`
		Words []struct {
			Word string `json:"word"`
		} `json:"words"`
		Clue *struct {
			Word string `json:"word"`
		} `json:"clue"`
	} `json:"crossword"`
}

// createJob posts a build request and waits for the build to end.
func createJob(t *testing.T, srv *Server, body string) jobResponse {
	t.Helper()
	w := do(t, srv, "POST", "/api/crosswords", body)
	if w.Code != http.StatusAccepted {
		t.Fatalf("create: expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var job jobResponse
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job ID is empty")
	}
	srv.Wait()
	return job
}

func getJob(t *testing.T, srv *Server, id string) jobResponse {
	t.Helper()
	w := do(t, srv, "GET", "/api/crosswords/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var job jobResponse
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	return job
}

func TestFullCrosswordFlow(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor, roo))

	job := createJob(t, srv, `{"clue":true}`)
	got := getJob(t, srv, job.ID)
	if got.Status != StatusReady {
		t.Fatalf("expected status ready, got %q (%s)", got.Status, got.Error)
	}
	if got.Crossword == nil {
		t.Fatal("crossword should be included once ready")
	}
	if got.Crossword.Rows != 3 || got.Crossword.Cols != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", got.Crossword.Rows, got.Crossword.Cols)
	}
	if len(got.Crossword.Words) != 2 || got.Crossword.Words[0].Word != "KOT" {
		t.Fatalf("unexpected words: %+v", got.Crossword.Words)
	}
	if got.Crossword.Clue == nil || got.Crossword.Clue.Word != "ROO" {
		t.Fatalf("expected clue ROO, got %+v", got.Crossword.Clue)
	}

	// Plain-text rendering.
	w := do(t, srv, "GET", "/api/crosswords/"+job.ID+"/text", "")
	if w.Code != http.StatusOK {
		t.Fatalf("text: expected 200, got %d", w.Code)
	}
	if want := "{K}(O){T}\n      (O)\n      (R)\n"; w.Body.String() != want {
		t.Fatalf("text: expected %q, got %q", want, w.Body.String())
	}

	// Right letter.
	w = do(t, srv, "POST", "/api/crosswords/"+job.ID+"/guess", `{"row":2,"col":2,"letter":"r"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("guess: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res GuessResult
	json.NewDecoder(w.Body).Decode(&res)
	if !res.Correct || res.Guessed != 1 || res.Remaining != 4 {
		t.Fatalf("unexpected guess result: %+v", res)
	}

	// Wrong letter.
	w = do(t, srv, "POST", "/api/crosswords/"+job.ID+"/guess", `{"row":0,"col":0,"letter":"Z"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("guess: expected 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&res)
	if res.Correct || res.Guessed != 1 {
		t.Fatalf("unexpected guess result: %+v", res)
	}

	// Listing.
	w = do(t, srv, "GET", "/api/crosswords", "")
	var list []jobResponse
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 1 || list[0].ID != job.ID {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateUsesDefaults(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))

	job := createJob(t, srv, "")
	got := getJob(t, srv, job.ID)
	if got.Status != StatusReady {
		t.Fatalf("expected status ready, got %q (%s)", got.Status, got.Error)
	}
	if got.Crossword.Clue != nil {
		t.Fatal("clue should be off by default")
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))

	for _, body := range []string{`{"words":0}`, `{"words":61}`, `{"words":`, `{"words":"two"}`} {
		w := do(t, srv, "POST", "/api/crosswords", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if n := len(srv.store.ListJobs()); n != 0 {
		t.Fatalf("expected no job, got %d", n)
	}
}

func TestBuildFailure(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot))

	job := createJob(t, srv, `{"words":2}`)
	got := getJob(t, srv, job.ID)
	if got.Status != StatusFailed {
		t.Fatalf("expected status failed, got %q", got.Status)
	}
	if got.Error == "" {
		t.Fatal("failed job should carry an error")
	}

	w := do(t, srv, "GET", "/api/crosswords/"+job.ID+"/text", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("text on failed job: expected 409, got %d", w.Code)
	}
}

func TestNotReady(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))
	job := srv.store.CreateJob(GenerateOptions{Words: 2})

	w := do(t, srv, "GET", "/api/crosswords/"+job.ID+"/text", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("text: expected 409, got %d", w.Code)
	}
	w = do(t, srv, "POST", "/api/crosswords/"+job.ID+"/guess", `{"row":0,"col":0,"letter":"K"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("guess: expected 409, got %d", w.Code)
	}
}

func TestGuessValidation(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))
	job := createJob(t, srv, "")

	for _, body := range []string{`{"row":0,"col":0,"letter":"5"}`, `{"row":0,"col":0,"letter":"AB"}`, `{"row":0,"col":0,"letter":""}`, `not json`} {
		w := do(t, srv, "POST", "/api/crosswords/"+job.ID+"/guess", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestUnknownCrossword(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))

	for _, tc := range []struct{ method, path, body string }{
		{"GET", "/api/crosswords/nope", ""},
		{"GET", "/api/crosswords/nope/text", ""},
		{"GET", "/api/crosswords/nope/events", ""},
		{"POST", "/api/crosswords/nope/guess", `{"row":0,"col":0,"letter":"A"}`},
	} {
		w := do(t, srv, tc.method, tc.path, tc.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestEventsSendsInitialStatus(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))
	job := createJob(t, srv, "")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/crosswords/"+job.ID+"/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for srv.sse.Subscribers(job.ID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("events stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %s", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "event: status\ndata: ") {
		t.Fatalf("expected initial status frame, got %q", body)
	}
	if !strings.Contains(body, job.ID) {
		t.Fatal("status frame should carry the job")
	}
	if n := srv.sse.Subscribers(job.ID); n != 0 {
		t.Fatalf("expected 0 subscribers after disconnect, got %d", n)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))

	w := do(t, srv, "GET", "/api/crosswords", "")

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for key, expected := range headers {
		if got := w.Header().Get(key); got != expected {
			t.Errorf("header %s: expected %q, got %q", key, expected, got)
		}
	}

	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Content-Security-Policy header missing")
	}
}

func TestCreateRateLimited(t *testing.T) {
	srv := newTestServer(t, sliceSourceFunc(kot, tor))
	defer srv.Wait()

	for i := range 5 {
		if w := do(t, srv, "POST", "/api/crosswords", ""); w.Code != http.StatusAccepted {
			t.Fatalf("request %d: expected 202, got %d", i+1, w.Code)
		}
	}
	if w := do(t, srv, "POST", "/api/crosswords", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("6th request: expected 429, got %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Second)
	defer rl.stop()

	// First 3 should pass.
	for i := range 3 {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th should be blocked.
	if rl.allow("1.2.3.4") {
		t.Fatal("4th request should be rate limited")
	}

	// Different IP should still be allowed.
	if !rl.allow("5.6.7.8") {
		t.Fatal("different IP should be allowed")
	}
}

func TestRateLimiterEvict(t *testing.T) {
	rl := newRateLimiter(3, time.Second)
	defer rl.stop()

	rl.allow("1.2.3.4")
	rl.allow("5.6.7.8")
	rl.visitors["1.2.3.4"].lastSeen = time.Now().Add(-time.Hour)

	rl.evict(time.Now().Add(-limiterMaxIdle))
	if _, ok := rl.visitors["1.2.3.4"]; ok {
		t.Fatal("idle bucket should be evicted")
	}
	if _, ok := rl.visitors["5.6.7.8"]; !ok {
		t.Fatal("recent bucket should be kept")
	}
}

func TestRateLimiterStop(t *testing.T) {
	rl := newRateLimiter(3, time.Second)
	rl.stop()
	rl.stop() // should not block or panic

	select {
	case <-rl.done:
	default:
		t.Fatal("sweep goroutine still running after stop")
	}
}

func TestServerCloseStopsLimiters(t *testing.T) {
	srv := NewServer(NewStore(), sliceSourceFunc(kot), GenerateOptions{Words: 1}, log.New(io.Discard))
	srv.Close()

	for name, rl := range map[string]*rateLimiter{"build": srv.buildRL, "guess": srv.guessRL} {
		select {
		case <-rl.done:
		case <-time.After(time.Second):
			t.Fatalf("%s limiter sweep did not exit", name)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected 10.0.0.1, got %s", got)
	}

	req.RemoteAddr = "not-an-addr"
	if got := clientIP(req); got != "not-an-addr" {
		t.Fatalf("expected raw address, got %s", got)
	}
}

func TestParseLetter(t *testing.T) {
	for in, want := range map[string]bool{"a": true, " Z ": true, "é": true, "ab": false, "1": false, "": false} {
		if _, ok := parseLetter(in); ok != want {
			t.Errorf("parseLetter(%q): expected %v, got %v", in, want, ok)
		}
	}
}
