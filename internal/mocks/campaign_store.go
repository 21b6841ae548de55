package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/store"
)

// CampaignStore is an in-memory implementation of store.CampaignStore for
// testing. Individual methods can be overridden through the function fields;
// by default they operate on the internal map.
type CampaignStore struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID]*domain.Campaign

	CreateFunc func(ctx context.Context, campaign *domain.Campaign) error
	UpdateFunc func(ctx context.Context, campaign *domain.Campaign) error
}

// NewCampaignStore creates an empty in-memory campaign store.
func NewCampaignStore() *CampaignStore {
	return &CampaignStore{
		campaigns: make(map[uuid.UUID]*domain.Campaign),
	}
}

// Ensure CampaignStore implements store.CampaignStore
var _ store.CampaignStore = (*CampaignStore)(nil)

// Create implements store.CampaignStore.Create
func (s *CampaignStore) Create(ctx context.Context, campaign *domain.Campaign) error {
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, campaign)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *campaign
	s.campaigns[campaign.ID] = &copied
	return nil
}

// GetByID implements store.CampaignStore.GetByID
func (s *CampaignStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, store.ErrCampaignNotFound
	}
	copied := *campaign
	return &copied, nil
}

// ListByUser implements store.CampaignStore.ListByUser
func (s *CampaignStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaigns := []*domain.Campaign{}
	for _, campaign := range s.campaigns {
		if campaign.UserID == userID {
			copied := *campaign
			campaigns = append(campaigns, &copied)
		}
	}
	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return campaigns, nil
}

// Update implements store.CampaignStore.Update
func (s *CampaignStore) Update(ctx context.Context, campaign *domain.Campaign) error {
	if s.UpdateFunc != nil {
		return s.UpdateFunc(ctx, campaign)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[campaign.ID]; !ok {
		return store.ErrCampaignNotFound
	}
	copied := *campaign
	s.campaigns[campaign.ID] = &copied
	return nil
}

// Delete implements store.CampaignStore.Delete
func (s *CampaignStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[id]; !ok {
		return store.ErrCampaignNotFound
	}
	delete(s.campaigns, id)
	return nil
}

// WithTx implements store.CampaignStore.WithTx. The mock has no transactions,
// so it returns itself.
func (s *CampaignStore) WithTx(tx *sql.Tx) store.CampaignStore {
	return s
}
