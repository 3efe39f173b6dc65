package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCollectionEmoji decorates collections that never chose a glyph.
	DefaultCollectionEmoji = "🎁"
	// DefaultCollectionColor is the accent applied when none is picked.
	DefaultCollectionColor = "blue"
)

// Collection groups wishlist items for one owner. ItemCount is a denormalized
// cache of how many items reference the collection; the authoritative value is
// always the count of wishlist_items whose collection_ids contains this row's
// id.
type Collection struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index:collections_owner_id_idx"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	Emoji       string    `gorm:"column:emoji;not null;default:'🎁'"`
	Color       string    `gorm:"column:color;not null;default:'blue'"`
	IsPrivate   bool      `gorm:"column:is_private;not null;default:false"`
	ItemCount   int       `gorm:"column:item_count;not null;default:0"`
	IsDefault   bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
