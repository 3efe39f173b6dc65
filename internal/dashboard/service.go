package dashboard

import (
	"context"
	"sync"

	"github.com/eyewantit/eyewantit-backend/internal/collections"
	"github.com/eyewantit/eyewantit-backend/internal/items"
	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/google/uuid"
)

// Data aggregates everything the dashboard view needs in one call.
type Data struct {
	Collections []collections.CollectionDTO `json:"collections"`
	Items       []items.ItemDTO             `json:"items"`
	Stats       Stats                       `json:"stats"`
}

// Stats summarizes the caller's wishlist activity.
type Stats struct {
	TotalItems       int `json:"total_items"`
	ClaimedItems     int `json:"claimed_items"`
	TotalCollections int `json:"total_collections"`
}

type collectionLister interface {
	ListForUser(ctx context.Context, callerID uuid.UUID, includeItemCounts bool) ([]collections.CollectionDTO, error)
}

type itemSource interface {
	List(ctx context.Context, filter items.ListFilter) ([]models.WishlistItem, error)
}

// Service assembles the dashboard payload.
type Service interface {
	GetDashboardData(ctx context.Context, callerID uuid.UUID) (*Data, error)
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	Collections collectionLister
	Items       itemSource
}

type service struct {
	collections collectionLister
	items       itemSource
}

// NewService builds a dashboard service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Collections == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection lister is required")
	}
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item source is required")
	}
	return &service{collections: params.Collections, items: params.Items}, nil
}

// GetDashboardData fetches the caller's collections and items in parallel.
// Either fetch failing fails the whole call.
func (s *service) GetDashboardData(ctx context.Context, callerID uuid.UUID) (*Data, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var (
		wg         sync.WaitGroup
		ownedCols  []collections.CollectionDTO
		ownedItems []models.WishlistItem
		colsErr    error
		itemsErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ownedCols, colsErr = s.collections.ListForUser(ctx, callerID, false)
	}()
	go func() {
		defer wg.Done()
		owner := callerID
		ownedItems, itemsErr = s.items.List(ctx, items.ListFilter{OwnerID: &owner})
	}()
	wg.Wait()

	if colsErr != nil {
		return nil, colsErr
	}
	if itemsErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, itemsErr, "list items")
	}

	claimed := 0
	for i := range ownedItems {
		if ownedItems[i].IsClaimed() {
			claimed++
		}
	}

	return &Data{
		Collections: ownedCols,
		Items:       items.FromModels(ownedItems),
		Stats: Stats{
			TotalItems:       len(ownedItems),
			ClaimedItems:     claimed,
			TotalCollections: len(ownedCols),
		},
	}, nil
}
