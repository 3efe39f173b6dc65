package collections

import (
	"context"
	"time"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	dbtypes "github.com/eyewantit/eyewantit-backend/pkg/db/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// containsClause matches rows whose uuid[] membership column includes the
// bound collection id.
const containsClause = "collection_ids @> ?::uuid[]"

// Repository encapsulates collection persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a collections repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the collection row.
func (r *Repository) Create(ctx context.Context, collection *models.Collection) error {
	return r.db.WithContext(ctx).Create(collection).Error
}

// FindByID loads a collection by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListByOwner returns the owner's collections with the default one first,
// then oldest to newest.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Collection, error) {
	var collections []models.Collection
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

// Update applies the provided column updates to the collection row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountItems returns the live number of items referencing the collection.
// This is the authoritative count; item_count is only a cache of it.
func (r *Repository) CountItems(ctx context.Context, collectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where(containsClause, dbtypes.UUIDArray{collectionID}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetItemCount overwrites the cached item count.
func (r *Repository) SetItemCount(ctx context.Context, collectionID uuid.UUID, count int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("id = ?", collectionID).
		UpdateColumn("item_count", count).Error
}

// IncrementItemCount adjusts the cached count by delta, clamping at zero.
func (r *Repository) IncrementItemCount(ctx context.Context, collectionID uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("id = ?", collectionID).
		UpdateColumn("item_count", gorm.Expr("GREATEST(item_count + ?, 0)", delta)).Error
}

// DeleteCascade removes the collection and strips its id from every item that
// references it, optionally redirecting those memberships to moveTo. The
// membership rewrite, the fast-path count increment on the target, and the
// row deletion all commit in one transaction. Returns the number of items
// whose membership array was rewritten.
func (r *Repository) DeleteCascade(ctx context.Context, collection *models.Collection, moveTo *uuid.UUID) (int64, error) {
	var itemsUpdated int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.WishlistItem
		if err := tx.
			Where(containsClause, dbtypes.UUIDArray{collection.ID}).
			Find(&items).Error; err != nil {
			return err
		}

		var gainedTarget int64
		for _, item := range items {
			next := item.CollectionIDs.Without(collection.ID)
			if moveTo != nil {
				if !item.CollectionIDs.Contains(*moveTo) {
					gainedTarget++
				}
				next = append(next, *moveTo).Dedupe()
			}
			if err := tx.
				Model(&models.WishlistItem{}).
				Where("id = ?", item.ID).
				Updates(map[string]any{
					"collection_ids": next,
					"updated_at":     time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}
		itemsUpdated = int64(len(items))

		if moveTo != nil && gainedTarget > 0 {
			if err := tx.
				Model(&models.Collection{}).
				Where("id = ?", *moveTo).
				UpdateColumn("item_count", gorm.Expr("item_count + ?", gainedTarget)).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Collection{}, "id = ?", collection.ID).Error
	})
	if err != nil {
		return 0, err
	}
	return itemsUpdated, nil
}

// CountDrift pairs a collection with its cached and live counts when they
// disagree.
type CountDrift struct {
	CollectionID uuid.UUID `gorm:"column:collection_id"`
	Cached       int64     `gorm:"column:cached"`
	Actual       int64     `gorm:"column:actual"`
}

// ListCountDrift returns up to limit collections whose cached item_count no
// longer matches the live membership count.
func (r *Repository) ListCountDrift(ctx context.Context, limit int) ([]CountDrift, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []CountDrift
	err := r.db.WithContext(ctx).Raw(`
SELECT c.id AS collection_id, c.item_count AS cached, COALESCE(a.actual, 0) AS actual
FROM collections c
LEFT JOIN LATERAL (
  SELECT count(*) AS actual
  FROM wishlist_items wi
  WHERE wi.collection_ids @> ARRAY[c.id]
) a ON true
WHERE c.item_count <> COALESCE(a.actual, 0)
ORDER BY c.updated_at ASC
LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
