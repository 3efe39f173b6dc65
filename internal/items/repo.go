package items

import (
	"context"
	"strings"
	"time"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	dbtypes "github.com/eyewantit/eyewantit-backend/pkg/db/types"
	"github.com/eyewantit/eyewantit-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const containsClause = "collection_ids @> ?::uuid[]"

// Repository encapsulates wishlist item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an items repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the item row.
func (r *Repository) Create(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads an item by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies the provided column updates and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.WishlistItem{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// Claim sets the claim pair only when the item is still unclaimed. A zero
// rows-affected result means the item is gone or someone holds the claim.
func (r *Repository) Claim(ctx context.Context, id, claimant uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ? AND claimed_by IS NULL", id).
		Updates(map[string]any{
			"claimed_by": claimant,
			"claimed_at": at,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

// Unclaim clears the claim pair regardless of who holds it. Zero rows
// affected means the item does not exist.
func (r *Repository) Unclaim(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"claimed_by": nil,
			"claimed_at": nil,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// ListFilter narrows item list reads.
type ListFilter struct {
	// OwnerID restricts rows to one owner when set.
	OwnerID *uuid.UUID
	// PublicOnly hides private rows.
	PublicOnly bool
	// Term applies a case-insensitive substring match over name/description.
	Term string
	// ScoreMin/ScoreMax bound the score when both are set.
	ScoreMin *int
	ScoreMax *int
	// Limit caps the page size when positive; Cursor resumes after the
	// (created_at, id) pair of the previous page's last row.
	Limit  int
	Cursor *pagination.Cursor
}

// List returns items matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.WishlistItem, error) {
	query := r.db.WithContext(ctx).Model(&models.WishlistItem{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.PublicOnly {
		query = query.Where("is_private = FALSE")
	}
	if term := strings.TrimSpace(filter.Term); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		query = query.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if filter.ScoreMin != nil {
		query = query.Where("score >= ?", *filter.ScoreMin)
	}
	if filter.ScoreMax != nil {
		query = query.Where("score <= ?", *filter.ScoreMax)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var items []models.WishlistItem
	if err := query.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByCollection returns every item whose membership array references the
// collection, newest first.
func (r *Repository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where(containsClause, dbtypes.UUIDArray{collectionID}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
