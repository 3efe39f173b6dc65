package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
)

// ItemDTO is the transport shape for a wishlist item.
type ItemDTO struct {
	ID            uuid.UUID   `json:"id"`
	OwnerID       uuid.UUID   `json:"owner_id"`
	Name          string      `json:"name"`
	Description   *string     `json:"description,omitempty"`
	Link          *string     `json:"link,omitempty"`
	ImageURL      *string     `json:"image_url,omitempty"`
	Score         int         `json:"score"`
	IsPrivate     bool        `json:"is_private"`
	CollectionIDs []uuid.UUID `json:"collection_ids"`
	ClaimedBy     *uuid.UUID  `json:"claimed_by,omitempty"`
	ClaimedAt     *time.Time  `json:"claimed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// CreateItemInput holds the caller-supplied fields for a new item.
type CreateItemInput struct {
	Name          string      `json:"name" validate:"required"`
	Description   *string     `json:"description,omitempty"`
	Link          *string     `json:"link,omitempty"`
	ImageURL      *string     `json:"image_url,omitempty"`
	Score         *int        `json:"score,omitempty" validate:"omitempty,min=1,max=10"`
	IsPrivate     bool        `json:"is_private"`
	CollectionIDs []uuid.UUID `json:"collection_ids,omitempty"`
}

// UpdateItemInput uses pointer fields so a nil field means "leave unchanged".
// CollectionIDs is a pointer to a slice so "clear all memberships" (empty
// slice) stays distinguishable from "no change" (nil).
type UpdateItemInput struct {
	Name          *string      `json:"name,omitempty"`
	Description   *string      `json:"description,omitempty"`
	Link          *string      `json:"link,omitempty"`
	ImageURL      *string      `json:"image_url,omitempty"`
	Score         *int         `json:"score,omitempty"`
	IsPrivate     *bool        `json:"is_private,omitempty"`
	CollectionIDs *[]uuid.UUID `json:"collection_ids,omitempty"`
}

// IsEmpty reports whether the update carries no field changes.
func (u UpdateItemInput) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Link == nil && u.ImageURL == nil &&
		u.Score == nil && u.IsPrivate == nil && u.CollectionIDs == nil
}

// SearchScope selects whose items a read query covers.
type SearchScope string

const (
	// ScopeOwn restricts results to the caller's own items.
	ScopeOwn SearchScope = "own"
	// ScopeAll covers every non-private item.
	ScopeAll SearchScope = "all"
	// ScopeUser covers one user's items; private rows stay hidden unless the
	// caller is that user.
	ScopeUser SearchScope = "user"
)

// QueryOptions scope the search and score-range reads. Limit and Cursor are
// optional; a zero Limit returns every match.
type QueryOptions struct {
	Scope  SearchScope
	UserID *uuid.UUID
	Limit  int
	Cursor string
}

// FromModel converts a persisted item into its DTO.
func FromModel(item *models.WishlistItem) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:            item.ID,
		OwnerID:       item.OwnerID,
		Name:          item.Name,
		Description:   item.Description,
		Link:          item.Link,
		ImageURL:      item.ImageURL,
		Score:         item.Score,
		IsPrivate:     item.IsPrivate,
		CollectionIDs: append([]uuid.UUID(nil), item.CollectionIDs...),
		ClaimedBy:     item.ClaimedBy,
		ClaimedAt:     item.ClaimedAt,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// FromModels converts a slice of persisted items.
func FromModels(items []models.WishlistItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *FromModel(&items[i]))
	}
	return dtos
}
