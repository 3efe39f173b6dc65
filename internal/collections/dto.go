package collections

import (
	"time"

	"github.com/google/uuid"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
)

// CollectionDTO is the transport shape for a collection.
type CollectionDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Emoji       string    `json:"emoji"`
	Color       string    `json:"color"`
	IsPrivate   bool      `json:"is_private"`
	ItemCount   int       `json:"item_count"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCollectionInput holds the caller-supplied fields for a new collection.
// The default flag is never settable here; only account provisioning marks a
// collection as default.
type CreateCollectionInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsPrivate   bool    `json:"is_private"`
}

// UpdateCollectionInput uses pointer fields so a nil field means "leave unchanged".
type UpdateCollectionInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

// IsEmpty reports whether the update carries no field changes.
func (u UpdateCollectionInput) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Emoji == nil && u.Color == nil && u.IsPrivate == nil
}

// TouchesIdentity reports whether the update changes name or emoji, which are
// frozen on the default collection.
func (u UpdateCollectionInput) TouchesIdentity() bool {
	return u.Name != nil || u.Emoji != nil
}

// DeleteResult describes the outcome of a collection deletion.
type DeleteResult struct {
	DeletedID            uuid.UUID  `json:"deleted_id"`
	ItemsUpdated         int64      `json:"items_updated"`
	MoveTargetCollection *uuid.UUID `json:"move_target_collection,omitempty"`
}

// FromModel converts a persisted collection into its DTO.
func FromModel(c *models.Collection) *CollectionDTO {
	if c == nil {
		return nil
	}
	return &CollectionDTO{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		Emoji:       c.Emoji,
		Color:       c.Color,
		IsPrivate:   c.IsPrivate,
		ItemCount:   c.ItemCount,
		IsDefault:   c.IsDefault,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
