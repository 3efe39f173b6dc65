package collections

import (
	"context"
	"errors"
	"strings"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// collectionStore is the persistence surface the service needs.
type collectionStore interface {
	Create(ctx context.Context, collection *models.Collection) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Collection, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteCascade(ctx context.Context, collection *models.Collection, moveTo *uuid.UUID) (int64, error)
	CountItems(ctx context.Context, collectionID uuid.UUID) (int64, error)
	SetItemCount(ctx context.Context, collectionID uuid.UUID, count int64) error
}

// Service exposes business rules for collection management.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateCollectionInput) (*CollectionDTO, error)
	Get(ctx context.Context, callerID, id uuid.UUID, requireOwnership bool) (*CollectionDTO, error)
	Update(ctx context.Context, callerID, id uuid.UUID, input UpdateCollectionInput) (*CollectionDTO, error)
	Delete(ctx context.Context, callerID, id uuid.UUID, moveItemsTo *uuid.UUID) (*DeleteResult, error)
	ListForUser(ctx context.Context, callerID uuid.UUID, includeItemCounts bool) ([]CollectionDTO, error)
	RecomputeItemCount(ctx context.Context, collectionID uuid.UUID) (int, error)
}

// ServiceParams groups dependencies for the collection service.
type ServiceParams struct {
	Repo collectionStore
}

type service struct {
	repo collectionStore
}

// NewService builds a collection service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Create persists a new non-default collection owned by the caller.
func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateCollectionInput) (*CollectionDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection name is required")
	}

	collection := &models.Collection{
		OwnerID:     callerID,
		Name:        name,
		Description: input.Description,
		Emoji:       models.DefaultCollectionEmoji,
		Color:       models.DefaultCollectionColor,
		IsPrivate:   input.IsPrivate,
		ItemCount:   0,
		IsDefault:   false,
	}
	if input.Emoji != nil && strings.TrimSpace(*input.Emoji) != "" {
		collection.Emoji = strings.TrimSpace(*input.Emoji)
	}
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		collection.Color = strings.TrimSpace(*input.Color)
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create collection")
	}
	return FromModel(collection), nil
}

// Get fetches a collection by id, returning nil (not an error) when absent.
func (s *service) Get(ctx context.Context, callerID, id uuid.UUID, requireOwnership bool) (*CollectionDTO, error) {
	collection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, nil
	}
	if requireOwnership {
		if callerID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		if collection.OwnerID != callerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "collection belongs to another user")
		}
	}
	return FromModel(collection), nil
}

// Update applies a partial update. The default collection's name and emoji
// are immutable by policy.
func (s *service) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateCollectionInput) (*CollectionDTO, error) {
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	collection, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if collection.IsDefault && input.TouchesIdentity() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "default collection name and emoji cannot be changed")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection name cannot be empty")
		}
		updates["name"] = name
		collection.Name = name
	}
	if input.Description != nil {
		updates["description"] = input.Description
		collection.Description = input.Description
	}
	if input.Emoji != nil {
		emoji := strings.TrimSpace(*input.Emoji)
		if emoji == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "emoji cannot be empty")
		}
		updates["emoji"] = emoji
		collection.Emoji = emoji
	}
	if input.Color != nil {
		color := strings.TrimSpace(*input.Color)
		if color == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color cannot be empty")
		}
		updates["color"] = color
		collection.Color = color
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
		collection.IsPrivate = *input.IsPrivate
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update collection")
	}
	return FromModel(collection), nil
}

// Delete removes a collection after rewriting every referencing item's
// membership array, optionally redirecting memberships to moveItemsTo.
func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID, moveItemsTo *uuid.UUID) (*DeleteResult, error) {
	collection, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if collection.IsDefault {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "default collection cannot be deleted")
	}

	if moveItemsTo != nil {
		if *moveItemsTo == id {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot move items into the collection being deleted")
		}
		target, err := s.load(ctx, *moveItemsTo)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "move target collection not found")
		}
		if target.OwnerID != callerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "move target collection belongs to another user")
		}
	}

	itemsUpdated, err := s.repo.DeleteCascade(ctx, collection, moveItemsTo)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete collection")
	}

	return &DeleteResult{
		DeletedID:            id,
		ItemsUpdated:         itemsUpdated,
		MoveTargetCollection: moveItemsTo,
	}, nil
}

// ListForUser returns the caller's collections, default first. When
// includeItemCounts is set, each count is recomputed from a live scan and the
// cache is repaired along the way.
func (s *service) ListForUser(ctx context.Context, callerID uuid.UUID, includeItemCounts bool) ([]CollectionDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	collections, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collections")
	}

	dtos := make([]CollectionDTO, 0, len(collections))
	for i := range collections {
		collection := &collections[i]
		if includeItemCounts {
			live, err := s.RecomputeItemCount(ctx, collection.ID)
			if err != nil {
				return nil, err
			}
			collection.ItemCount = live
		}
		dtos = append(dtos, *FromModel(collection))
	}
	return dtos, nil
}

// RecomputeItemCount scans the items referencing the collection and writes
// the authoritative count back into the cache. This is the only
// reconciliation primitive; membership-changing item operations call it once
// per affected collection.
func (s *service) RecomputeItemCount(ctx context.Context, collectionID uuid.UUID) (int, error) {
	count, err := s.repo.CountItems(ctx, collectionID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count collection items")
	}
	if err := s.repo.SetItemCount(ctx, collectionID, count); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write collection item count")
	}
	return int(count), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection id is required")
	}
	collection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load collection")
	}
	return collection, nil
}

// loadOwned is the write-path fetch: absence is an error, not nil.
func (s *service) loadOwned(ctx context.Context, callerID, id uuid.UUID) (*models.Collection, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	collection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
	}
	if collection.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "collection belongs to another user")
	}
	return collection, nil
}
