package timeentries

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry // ownerID -> entryID -> Entry
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		entries: make(map[string]map[string]Entry),
	}
}

// Create assigns an ID and timestamp to entry and stores it under ownerID
func (r *InMemoryRepo) Create(ownerID string, entry Entry) (Entry, error) {
	if ownerID == "" {
		return Entry{}, fmt.Errorf("ownerID is required")
	}

	entry.ID = uuid.NewString()
	entry.OwnerID = ownerID
	entry.CreatedAt = NowTimeFunc().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[ownerID]; !ok {
		r.entries[ownerID] = make(map[string]Entry)
	}
	r.entries[ownerID][entry.ID] = entry
	return entry, nil
}

// Get returns an entry owned by ownerID. Entries of other owners are reported as not found.
func (r *InMemoryRepo) Get(ownerID, id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[ownerID][id]
	if !ok {
		return Entry{}, autherrors.Wrapf(autherrors.ErrNotFound, "time entry %q", id)
	}
	return entry, nil
}

// List returns the owner's entries, oldest first
func (r *InMemoryRepo) List(ownerID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries[ownerID]))
	for _, e := range r.entries[ownerID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
