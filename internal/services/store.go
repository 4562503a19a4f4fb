package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kayz/osprey/internal/classify"
)

// SearchState tracks the lifecycle of one stored search.
type SearchState string

const (
	StateRunning   SearchState = "running"
	StateCompleted SearchState = "completed"
	StateFailed    SearchState = "failed"
)

// Search is one tracked batch. Results grow while the search runs, so
// partial batches are visible (and valid) before completion.
type Search struct {
	ID         string         `json:"id"`
	Query      string         `json:"query"`
	Tags       []classify.Tag `json:"tags"`
	State      SearchState    `json:"state"`
	Results    []Result       `json:"results"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Done       int            `json:"done"`
	Total      int            `json:"total"`
}

// Store tracks running and finished searches by identifier. It replaces
// the process-global table a front end might otherwise keep: callers hold
// an explicit *Store and pass it to whichever component needs it.
type Store struct {
	mu       sync.RWMutex
	searches map[string]*Search
}

func NewStore() *Store {
	return &Store{searches: make(map[string]*Search)}
}

func (st *Store) Create(query string, tags []classify.Tag) *Search {
	s := &Search{
		ID:        uuid.NewString(),
		Query:     query,
		Tags:      tags,
		State:     StateRunning,
		StartedAt: time.Now(),
	}
	st.mu.Lock()
	st.searches[s.ID] = s
	st.mu.Unlock()
	return s
}

// Snapshot returns a copy of the search, safe to read while the batch is
// still being appended to.
func (st *Store) Snapshot(id string) (Search, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.searches[id]
	if !ok {
		return Search{}, fmt.Errorf("search not found: %s", id)
	}
	cp := *s
	cp.Results = make([]Result, len(s.Results))
	copy(cp.Results, s.Results)
	cp.Tags = append([]classify.Tag(nil), s.Tags...)
	return cp, nil
}

func (st *Store) Append(id string, done, total int, res Result) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.searches[id]; ok {
		s.Results = append(s.Results, res)
		s.Done = done
		s.Total = total
	}
}

func (st *Store) Complete(id string) {
	st.finish(id, StateCompleted, "")
}

func (st *Store) Fail(id string, errMsg string) {
	st.finish(id, StateFailed, errMsg)
}

func (st *Store) finish(id string, state SearchState, errMsg string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.searches[id]; ok {
		now := time.Now()
		s.State = state
		s.Error = errMsg
		s.FinishedAt = &now
	}
}

// IDs returns every stored search id, unordered.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.searches))
	for id := range st.searches {
		ids = append(ids, id)
	}
	return ids
}
