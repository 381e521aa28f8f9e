package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	maxWords     = 60
	buildTimeout = 2 * time.Minute
)

const (
	limiterSweep   = time.Minute
	limiterMaxIdle = 5 * time.Minute
)

// rateLimiter is a per-IP token bucket. A background sweep drops idle
// buckets until stop is called.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *rateLimiter) sweep() {
	defer close(rl.done)
	ticker := time.NewTicker(limiterSweep)
	defer ticker.Stop()
	for {
		select {
		case <-rl.quit:
			return
		case now := <-ticker.C:
			rl.evict(now.Add(-limiterMaxIdle))
		}
	}
}

// evict drops the buckets last used before cutoff.
func (rl *rateLimiter) evict(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.visitors {
		if b.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// stop ends the sweep and waits for it to exit. It is safe to call more than
// once.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.quit) })
	<-rl.done
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	if refill := int(now.Sub(b.lastSeen) / rl.interval); refill > 0 {
		b.tokens = min(b.tokens+refill*rl.rate, rl.rate)
		b.lastSeen = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// clientIP strips the port from the request's remote address so every
// connection of a host shares one bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	store    *Store
	source   SourceFunc
	defaults GenerateOptions
	sse      *Broadcaster
	logger   *log.Logger
	buildRL  *rateLimiter
	guessRL  *rateLimiter
	builds   sync.WaitGroup
}

// NewServer creates a configured HTTP server. Crosswords are generated from
// words produced by source, with defaults filling unset request fields.
func NewServer(store *Store, source SourceFunc, defaults GenerateOptions, logger *log.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		source:   source,
		defaults: defaults,
		sse:      NewBroadcaster(),
		logger:   logger,
		buildRL:  newRateLimiter(5, time.Minute),  // 5 builds/min per IP
		guessRL:  newRateLimiter(60, time.Second), // 60 guesses/sec per IP
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/crosswords", s.handleCreateCrossword)
	s.mux.HandleFunc("GET /api/crosswords", s.handleListCrosswords)
	s.mux.HandleFunc("GET /api/crosswords/{id}", s.handleGetCrossword)
	s.mux.HandleFunc("GET /api/crosswords/{id}/text", s.handleRenderCrossword)
	s.mux.HandleFunc("POST /api/crosswords/{id}/guess", s.handleGuess)
	s.mux.HandleFunc("GET /api/crosswords/{id}/events", s.handleEvents)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	s.mux.ServeHTTP(w, r)
}

// Wait blocks until every build started so far has finished.
func (s *Server) Wait() {
	s.builds.Wait()
}

// Close stops the rate limiters' background sweeps.
func (s *Server) Close() {
	s.buildRL.stop()
	s.guessRL.stop()
}

// --- Crossword handlers ---

// POST /api/crosswords: start generating a crossword.
func (s *Server) handleCreateCrossword(w http.ResponseWriter, r *http.Request) {
	if !s.buildRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Words *int    `json:"words"`
		Clue  *bool   `json:"clue"`
		Seed  *uint64 `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	opts := s.defaults
	if req.Words != nil {
		opts.Words = *req.Words
	}
	if req.Clue != nil {
		opts.Clue = *req.Clue
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if opts.Words < 1 || opts.Words > maxWords {
		jsonError(w, "'words' must be between 1 and 60", http.StatusBadRequest)
		return
	}

	job := s.store.CreateJob(opts)
	s.builds.Add(1)
	go s.build(job)

	writeJSON(w, http.StatusAccepted, job)
}

// build runs the generation of one job and publishes its progress.
func (s *Server) build(job *Job) {
	defer s.builds.Done()

	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	logger := s.logger.With("job", job.ID)
	cw, err := Generate(ctx, s.source, job.Options, logger, func(evt Event) {
		// The final event goes out once the job holds the crossword.
		if evt.Type != EventDone {
			s.publish(job.ID, evt.Type, evt)
		}
	})
	if err != nil {
		logger.Error("build failed", "err", err)
		job.fail(err)
		s.publish(job.ID, EventFailed, Event{Type: EventFailed, Error: err.Error()})
		return
	}

	job.finish(cw)
	s.publish(job.ID, EventDone, Event{Type: EventDone, Words: cw.Words(), Letters: cw.Letters()})
}

func (s *Server) publish(jobID, event string, payload any) {
	if err := s.sse.Publish(jobID, event, payload); err != nil {
		s.logger.Warn("publish event", "job", jobID, "err", err)
	}
}

// GET /api/crosswords: list all jobs.
func (s *Server) handleListCrosswords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListJobs())
}

// GET /api/crosswords/{id}: job status and, once ready, the crossword.
func (s *Server) handleGetCrossword(w http.ResponseWriter, r *http.Request) {
	job := s.store.GetJob(r.PathValue("id"))
	if job == nil {
		jsonError(w, "crossword not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GET /api/crosswords/{id}/text: plain-text rendering.
func (s *Server) handleRenderCrossword(w http.ResponseWriter, r *http.Request) {
	job := s.store.GetJob(r.PathValue("id"))
	if job == nil {
		jsonError(w, "crossword not found", http.StatusNotFound)
		return
	}
	text, err := job.Render()
	if err != nil {
		jsonError(w, "crossword not ready", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

// POST /api/crosswords/{id}/guess: check a single letter.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	if !s.guessRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	job := s.store.GetJob(r.PathValue("id"))
	if job == nil {
		jsonError(w, "crossword not found", http.StatusNotFound)
		return
	}

	var req struct {
		Row    int    `json:"row"`
		Col    int    `json:"col"`
		Letter string `json:"letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	letter, ok := parseLetter(req.Letter)
	if !ok {
		jsonError(w, "'letter' must be a single letter", http.StatusBadRequest)
		return
	}

	res, err := job.Guess(req.Row, req.Col, letter)
	if err != nil {
		jsonError(w, "crossword not ready", http.StatusConflict)
		return
	}

	s.publish(job.ID, EventGuess, struct {
		Type string `json:"type"`
		Row  int    `json:"row"`
		Col  int    `json:"col"`
		GuessResult
	}{EventGuess, req.Row, req.Col, res})

	writeJSON(w, http.StatusOK, res)
}

// GET /api/crosswords/{id}/events: SSE stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	job := s.store.GetJob(r.PathValue("id"))
	if job == nil {
		jsonError(w, "crossword not found", http.StatusNotFound)
		return
	}

	s.sse.ServeSSE(w, r, job.ID, func() (string, any) {
		return "status", job
	})
}

// --- Helpers ---

func parseLetter(s string) (rune, bool) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, unicode.IsLetter(r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
