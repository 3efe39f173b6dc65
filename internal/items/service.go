package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	dbtypes "github.com/eyewantit/eyewantit-backend/pkg/db/types"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
	"github.com/eyewantit/eyewantit-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// itemStore is the persistence surface the service needs.
type itemStore interface {
	Create(ctx context.Context, item *models.WishlistItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Claim(ctx context.Context, id, claimant uuid.UUID, at time.Time) (int64, error)
	Unclaim(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.WishlistItem, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.WishlistItem, error)
}

// collectionDirectory resolves collections for membership validation.
type collectionDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
}

// countRecomputer is the reconciliation hook invoked after membership writes.
type countRecomputer interface {
	RecomputeItemCount(ctx context.Context, collectionID uuid.UUID) (int, error)
}

// Service exposes business rules for wishlist item management.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	Get(ctx context.Context, callerID, id uuid.UUID, requireOwnership bool) (*ItemDTO, error)
	Update(ctx context.Context, callerID, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	Claim(ctx context.Context, callerID, id uuid.UUID) (*ItemDTO, error)
	Unclaim(ctx context.Context, callerID, id uuid.UUID) (*ItemDTO, error)
	Search(ctx context.Context, callerID uuid.UUID, term string, opts QueryOptions) ([]ItemDTO, error)
	ListByScoreRange(ctx context.Context, callerID uuid.UUID, min, max int, opts QueryOptions) ([]ItemDTO, error)
	ListInCollection(ctx context.Context, callerID, collectionID uuid.UUID, requireOwnership bool) ([]ItemDTO, error)
	AddToCollections(ctx context.Context, callerID, id uuid.UUID, collectionIDs []uuid.UUID) (*ItemDTO, error)
	RemoveFromCollections(ctx context.Context, callerID, id uuid.UUID, collectionIDs []uuid.UUID) (*ItemDTO, error)
}

// ServiceParams groups dependencies for the item service.
type ServiceParams struct {
	Repo        itemStore
	Collections collectionDirectory
	Recomputer  countRecomputer
	Logger      *logger.Logger
}

type service struct {
	repo        itemStore
	collections collectionDirectory
	recomputer  countRecomputer
	logg        *logger.Logger
}

// NewService builds an item service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item repo is required")
	}
	if params.Collections == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection directory is required")
	}
	if params.Recomputer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count recomputer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:        params.Repo,
		collections: params.Collections,
		recomputer:  params.Recomputer,
		logg:        params.Logger,
	}, nil
}

// Create validates membership targets, persists the item, then recomputes
// each referenced collection's cached count.
func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	score := models.ScoreDefault
	if input.Score != nil {
		if err := validateScore(*input.Score); err != nil {
			return nil, err
		}
		score = *input.Score
	}

	memberships := dbtypes.UUIDArray(input.CollectionIDs).Dedupe()
	if err := s.validateMemberships(ctx, callerID, memberships); err != nil {
		return nil, err
	}

	item := &models.WishlistItem{
		OwnerID:       callerID,
		Name:          name,
		Description:   input.Description,
		Link:          input.Link,
		ImageURL:      input.ImageURL,
		Score:         score,
		IsPrivate:     input.IsPrivate,
		CollectionIDs: memberships,
	}
	if item.CollectionIDs == nil {
		item.CollectionIDs = dbtypes.UUIDArray{}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}

	s.recomputeCounts(ctx, memberships)
	return FromModel(item), nil
}

// Get fetches an item by id, returning nil (not an error) when absent.
func (s *service) Get(ctx context.Context, callerID, id uuid.UUID, requireOwnership bool) (*ItemDTO, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if requireOwnership {
		if callerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		if item.OwnerID != callerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item belongs to another user")
		}
	}
	return FromModel(item), nil
}

// Update applies a partial update. When the membership array changes, every
// collection in the symmetric difference between the old and new sets gets
// its cached count recomputed, not just the additions.
func (s *service) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	item, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		updates["name"] = name
		item.Name = name
	}
	if input.Description != nil {
		updates["description"] = input.Description
		item.Description = input.Description
	}
	if input.Link != nil {
		updates["link"] = input.Link
		item.Link = input.Link
	}
	if input.ImageURL != nil {
		updates["image_url"] = input.ImageURL
		item.ImageURL = input.ImageURL
	}
	if input.Score != nil {
		if err := validateScore(*input.Score); err != nil {
			return nil, err
		}
		updates["score"] = *input.Score
		item.Score = *input.Score
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
		item.IsPrivate = *input.IsPrivate
	}

	var affected dbtypes.UUIDArray
	if input.CollectionIDs != nil {
		next := dbtypes.UUIDArray(*input.CollectionIDs).Dedupe()
		if next == nil {
			next = dbtypes.UUIDArray{}
		}
		if err := s.validateMemberships(ctx, callerID, next); err != nil {
			return nil, err
		}
		affected = symmetricDifference(item.CollectionIDs, next)
		updates["collection_ids"] = next
		item.CollectionIDs = next
	}

	now := time.Now().UTC()
	updates["updated_at"] = now
	item.UpdatedAt = now

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}

	s.recomputeCounts(ctx, affected)
	return FromModel(item), nil
}

// Delete removes the item and recomputes every collection it belonged to.
func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	item, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return err
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	s.recomputeCounts(ctx, item.CollectionIDs)
	return nil
}

// Claim reserves the item for the caller. The claimant does not have to be
// the owner; that is how other users call dibs on a gift.
func (s *service) Claim(ctx context.Context, callerID, id uuid.UUID) (*ItemDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if item.ClaimedBy != nil {
		return nil, s.claimConflict(callerID, item)
	}

	now := time.Now().UTC()
	rows, err := s.repo.Claim(ctx, id, callerID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim item")
	}
	if rows == 0 {
		// lost the race; re-read to report who holds the claim
		current, loadErr := s.load(ctx, id)
		if loadErr != nil {
			return nil, loadErr
		}
		if current == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		if current.ClaimedBy == nil {
			// claim was taken and released between our write and re-read
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item claim changed concurrently, please retry")
		}
		return nil, s.claimConflict(callerID, current)
	}

	item.ClaimedBy = &callerID
	item.ClaimedAt = &now
	item.UpdatedAt = now
	return FromModel(item), nil
}

// Unclaim clears the claim pair. Any authenticated caller may do this, not
// just the claimant or the owner; see the product note in DESIGN.md.
func (s *service) Unclaim(ctx context.Context, callerID, id uuid.UUID) (*ItemDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	rows, err := s.repo.Unclaim(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unclaim item")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return FromModel(item), nil
}

// Search runs a case-insensitive substring match over name and description.
func (s *service) Search(ctx context.Context, callerID uuid.UUID, term string, opts QueryOptions) ([]ItemDTO, error) {
	if strings.TrimSpace(term) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}
	filter, err := s.scopedFilter(callerID, opts)
	if err != nil {
		return nil, err
	}
	filter.Term = term

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search items")
	}
	return FromModels(items), nil
}

// ListByScoreRange returns items whose score lies in [min, max].
func (s *service) ListByScoreRange(ctx context.Context, callerID uuid.UUID, min, max int, opts QueryOptions) ([]ItemDTO, error) {
	if err := validateScore(min); err != nil {
		return nil, err
	}
	if err := validateScore(max); err != nil {
		return nil, err
	}
	if min > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score range minimum exceeds maximum")
	}
	filter, err := s.scopedFilter(callerID, opts)
	if err != nil {
		return nil, err
	}
	filter.ScoreMin = &min
	filter.ScoreMax = &max

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items by score")
	}
	return FromModels(items), nil
}

// ListInCollection returns the items referencing a collection. The
// collection must exist and, by default, belong to the caller.
func (s *service) ListInCollection(ctx context.Context, callerID, collectionID uuid.UUID, requireOwnership bool) ([]ItemDTO, error) {
	if collectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection id is required")
	}
	collection, err := s.collections.FindByID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection")
	}
	if requireOwnership {
		if callerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		if collection.OwnerID != callerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "collection belongs to another user")
		}
	}

	items, err := s.repo.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items in collection")
	}
	return FromModels(items), nil
}

// AddToCollections merges the given ids into the item's membership set and
// delegates to Update.
func (s *service) AddToCollections(ctx context.Context, callerID, id uuid.UUID, collectionIDs []uuid.UUID) (*ItemDTO, error) {
	if len(collectionIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection ids are required")
	}
	item, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	merged := append(append(dbtypes.UUIDArray{}, item.CollectionIDs...), collectionIDs...).Dedupe()
	next := []uuid.UUID(merged)
	return s.Update(ctx, callerID, id, UpdateItemInput{CollectionIDs: &next})
}

// RemoveFromCollections filters the given ids out of the item's membership
// set and delegates to Update.
func (s *service) RemoveFromCollections(ctx context.Context, callerID, id uuid.UUID, collectionIDs []uuid.UUID) (*ItemDTO, error) {
	if len(collectionIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection ids are required")
	}
	item, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	filtered := append(dbtypes.UUIDArray{}, item.CollectionIDs...)
	for _, remove := range collectionIDs {
		filtered = filtered.Without(remove)
	}
	next := []uuid.UUID(filtered)
	return s.Update(ctx, callerID, id, UpdateItemInput{CollectionIDs: &next})
}

// validateMemberships checks that every target collection exists and belongs
// to the caller before any item write happens.
func (s *service) validateMemberships(ctx context.Context, callerID uuid.UUID, collectionIDs dbtypes.UUIDArray) error {
	for _, collectionID := range collectionIDs {
		if collectionID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "collection id is required")
		}
		collection, err := s.collections.FindByID(ctx, collectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("collection %s not found", collectionID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection")
		}
		if collection.OwnerID != callerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("collection %s belongs to another user", collectionID))
		}
	}
	return nil
}

// recomputeCounts fans out one recompute per affected collection. Failures
// are logged and swallowed so a stale cached count never fails the primary
// operation; the reconciler worker repairs any drift later.
func (s *service) recomputeCounts(ctx context.Context, collectionIDs dbtypes.UUIDArray) {
	if len(collectionIDs) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, collectionID := range collectionIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := s.recomputer.RecomputeItemCount(ctx, id); err != nil {
				s.logg.Error(s.logg.WithCollectionID(ctx, id.String()), "recompute collection count", err)
			}
		}(collectionID)
	}
	wg.Wait()
}

func (s *service) claimConflict(callerID uuid.UUID, item *models.WishlistItem) error {
	if item.ClaimedBy != nil && *item.ClaimedBy == callerID {
		return pkgerrors.New(pkgerrors.CodeConflict, "you have already claimed this item")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "item is already claimed by another user")
}

func (s *service) scopedFilter(callerID uuid.UUID, opts QueryOptions) (ListFilter, error) {
	var filter ListFilter

	scope := opts.Scope
	if scope == "" {
		scope = ScopeOwn
	}
	switch scope {
	case ScopeOwn:
		if callerID == uuid.Nil {
			return ListFilter{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		owner := callerID
		filter.OwnerID = &owner
	case ScopeAll:
		filter.PublicOnly = true
	case ScopeUser:
		if opts.UserID == nil || *opts.UserID == uuid.Nil {
			return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required for user scope")
		}
		owner := *opts.UserID
		filter.OwnerID = &owner
		if owner != callerID {
			filter.PublicOnly = true
		}
	default:
		return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown scope %q", scope))
	}

	if opts.Limit > 0 {
		filter.Limit = pagination.NormalizeLimit(opts.Limit)
	}
	cursor, err := pagination.ParseCursor(opts.Cursor)
	if err != nil {
		return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	filter.Cursor = cursor

	return filter, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
	}
	return item, nil
}

// loadOwned is the write-path fetch: absence is an error, not nil.
func (s *service) loadOwned(ctx context.Context, callerID, id uuid.UUID) (*models.WishlistItem, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if item.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item belongs to another user")
	}
	return item, nil
}

func validateScore(score int) error {
	if score < models.ScoreMin || score > models.ScoreMax {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("score must be between %d and %d", models.ScoreMin, models.ScoreMax))
	}
	return nil
}

// symmetricDifference returns the ids present in exactly one of the two sets.
func symmetricDifference(old, next dbtypes.UUIDArray) dbtypes.UUIDArray {
	var diff dbtypes.UUIDArray
	for _, id := range old {
		if !next.Contains(id) {
			diff = append(diff, id)
		}
	}
	for _, id := range next {
		if !old.Contains(id) {
			diff = append(diff, id)
		}
	}
	return diff.Dedupe()
}
