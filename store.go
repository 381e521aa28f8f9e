package main

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds all generation jobs in memory.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*Job),
	}
}

// CreateJob registers a new job in the building state.
func (s *Store) CreateJob(opts GenerateOptions) *Job {
	j := &Job{
		ID:        uuid.NewString(),
		Options:   opts,
		CreatedAt: time.Now(),
		status:    StatusBuilding,
	}

	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()

	return j
}

// GetJob returns a job by ID, or nil if not found.
func (s *Store) GetJob(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// ListJobs returns all jobs, most recent first.
func (s *Store) ListJobs() []*Job {
	s.mu.RLock()
	list := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		list = append(list, j)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Job) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list
}
