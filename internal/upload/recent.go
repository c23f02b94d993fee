package upload

import (
	"context"
	"sync"

	"github.com/terra-clan/backoffice/internal/models"
)

// RecentLimit caps the recent uploads list
const RecentLimit = 50

// RecentStore keeps the most recent uploads, newest first
type RecentStore interface {
	Add(ctx context.Context, asset models.UploadedAsset) error
	Remove(ctx context.Context, url string) error
	List(ctx context.Context) ([]models.UploadedAsset, error)
	ByContext(ctx context.Context, c models.AssetContext) ([]models.UploadedAsset, error)
	Clear(ctx context.Context) error
}

// MemoryRecentStore is a process local RecentStore
type MemoryRecentStore struct {
	mu     sync.RWMutex
	assets []models.UploadedAsset
}

// NewMemoryRecentStore creates an empty store
func NewMemoryRecentStore() *MemoryRecentStore {
	return &MemoryRecentStore{}
}

func (s *MemoryRecentStore) Add(ctx context.Context, asset models.UploadedAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := s.assets
	if len(keep) > RecentLimit-1 {
		keep = keep[:RecentLimit-1]
	}
	next := make([]models.UploadedAsset, 0, len(keep)+1)
	next = append(next, asset)
	s.assets = append(next, keep...)
	return nil
}

func (s *MemoryRecentStore) Remove(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.assets[:0:0]
	for _, a := range s.assets {
		if a.URL != url {
			kept = append(kept, a)
		}
	}
	s.assets = kept
	return nil
}

func (s *MemoryRecentStore) List(ctx context.Context) ([]models.UploadedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.UploadedAsset(nil), s.assets...), nil
}

func (s *MemoryRecentStore) ByContext(ctx context.Context, c models.AssetContext) ([]models.UploadedAsset, error) {
	all, _ := s.List(ctx)
	return FilterContext(all, c), nil
}

func (s *MemoryRecentStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = nil
	return nil
}

// FilterContext keeps the assets of one context, preserving order
func FilterContext(assets []models.UploadedAsset, c models.AssetContext) []models.UploadedAsset {
	out := make([]models.UploadedAsset, 0, len(assets))
	for _, a := range assets {
		if a.Context == c {
			out = append(out, a)
		}
	}
	return out
}
