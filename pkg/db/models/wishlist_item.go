package models

import (
	"time"

	dbtypes "github.com/eyewantit/eyewantit-backend/pkg/db/types"
	"github.com/google/uuid"
)

const (
	// ScoreMin and ScoreMax bound the desirability score.
	ScoreMin = 1
	ScoreMax = 10
	// ScoreDefault applies when an item is created without a score.
	ScoreDefault = 5
)

// WishlistItem is a single wanted thing. CollectionIDs holds the membership
// array; ClaimedBy/ClaimedAt together form the "dibs" claim and are either
// both set or both null.
type WishlistItem struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID       uuid.UUID         `gorm:"column:owner_id;type:uuid;not null;index:wishlist_items_owner_id_idx"`
	Name          string            `gorm:"column:name;not null"`
	Description   *string           `gorm:"column:description"`
	Link          *string           `gorm:"column:link"`
	ImageURL      *string           `gorm:"column:image_url"`
	Score         int               `gorm:"column:score;not null;default:5"`
	IsPrivate     bool              `gorm:"column:is_private;not null;default:false"`
	CollectionIDs dbtypes.UUIDArray `gorm:"type:uuid[];column:collection_ids;not null;default:ARRAY[]::uuid[]"`
	ClaimedBy     *uuid.UUID        `gorm:"column:claimed_by;type:uuid"`
	ClaimedAt     *time.Time        `gorm:"column:claimed_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsClaimed reports whether the dibs pair is set.
func (w *WishlistItem) IsClaimed() bool {
	return w.ClaimedBy != nil && w.ClaimedAt != nil
}
