package mock

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/google/uuid"
)

// --- Advertisements ---

// MemoryAdRepository is the default in-process domain.AdRepository.
type MemoryAdRepository struct {
	mu     sync.RWMutex
	ads    map[int64]domain.Advertisement
	nextID int64
	now    func() time.Time
}

func NewMemoryAdRepository() *MemoryAdRepository {
	return &MemoryAdRepository{ads: make(map[int64]domain.Advertisement), now: time.Now}
}

func cloneAd(ad domain.Advertisement) domain.Advertisement {
	ad.Images = append([]domain.Image{}, ad.Images...)
	return ad
}

func (r *MemoryAdRepository) Create(_ context.Context, ad *domain.Advertisement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ad.ID = r.nextID
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = r.now().UTC()
	}
	ad.UpdatedAt = ad.CreatedAt
	r.ads[ad.ID] = cloneAd(*ad)
	return nil
}

func (r *MemoryAdRepository) Update(_ context.Context, ad *domain.Advertisement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ads[ad.ID]; !ok {
		return domain.ErrNotFound
	}
	ad.UpdatedAt = r.now().UTC()
	r.ads[ad.ID] = cloneAd(*ad)
	return nil
}

func (r *MemoryAdRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ads[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.ads, id)
	return nil
}

func (r *MemoryAdRepository) FindByID(_ context.Context, id int64) (*domain.Advertisement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ad, ok := r.ads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	ad = cloneAd(ad)
	return &ad, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func matches(ad domain.Advertisement, f domain.AdFilter) bool {
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(ad.Title), kw) && !strings.Contains(strings.ToLower(ad.Description), kw) {
			return false
		}
	}
	if f.CategoryIDs != nil && !containsID(f.CategoryIDs, ad.CategoryID) {
		return false
	}
	if f.CityIDs != nil && !containsID(f.CityIDs, ad.CityID) {
		return false
	}
	if f.SellerID > 0 && ad.SellerID != f.SellerID {
		return false
	}
	if f.Status != "" && ad.Status != f.Status {
		return false
	}
	if f.MinPrice != nil && ad.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && ad.Price > *f.MaxPrice {
		return false
	}
	return true
}

func (r *MemoryAdRepository) Find(_ context.Context, f domain.AdFilter) ([]domain.Advertisement, int, error) {
	r.mu.RLock()
	matched := make([]domain.Advertisement, 0)
	for _, ad := range r.ads {
		if matches(ad, f) {
			matched = append(matched, cloneAd(ad))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *MemoryAdRepository) CountBySeller(_ context.Context, sellerID int64, status domain.AdStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, ad := range r.ads {
		if ad.SellerID == sellerID && (status == "" || ad.Status == status) {
			n++
		}
	}
	return n, nil
}

// --- Images ---

const memoryImagePrefix = "mem://images/"

// MemoryImageStore keeps uploads in process memory.
type MemoryImageStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{files: make(map[string][]byte)}
}

func (s *MemoryImageStore) Upload(_ context.Context, fileName string, data []byte) (string, error) {
	url := memoryImagePrefix + uuid.New().String() + strings.ToLower(filepath.Ext(fileName))
	s.mu.Lock()
	s.files[url] = append([]byte(nil), data...)
	s.mu.Unlock()
	return url, nil
}

func (s *MemoryImageStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[url]; !ok {
		return domain.ErrNotFound
	}
	delete(s.files, url)
	return nil
}

// Len returns the number of stored files.
func (s *MemoryImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// --- No-op collaborators ---

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

type noopMailer struct{}

func (noopMailer) SendAdCreatedEmail(string, string) error { return nil }
