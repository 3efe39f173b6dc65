package items

import (
	"context"
	"testing"
	"time"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	dbtypes "github.com/eyewantit/eyewantit-backend/pkg/db/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupItemsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  link TEXT,
  image_url TEXT,
  score INTEGER NOT NULL DEFAULT 5,
  is_private INTEGER NOT NULL DEFAULT 0,
  collection_ids TEXT NOT NULL DEFAULT '{}',
  claimed_by TEXT,
  claimed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	return db
}

func newTestItem(owner uuid.UUID, name string) *models.WishlistItem {
	return &models.WishlistItem{
		ID:            uuid.New(),
		OwnerID:       owner,
		Name:          name,
		Score:         5,
		CollectionIDs: dbtypes.UUIDArray{},
	}
}

func TestRepositoryClaimOnlyWhenUnclaimed(t *testing.T) {
	repo := NewRepository(setupItemsTestDB(t))
	ctx := context.Background()

	item := newTestItem(uuid.New(), "Espresso Machine")
	require.NoError(t, repo.Create(ctx, item))

	first := uuid.New()
	rows, err := repo.Claim(ctx, item.ID, first, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ClaimedBy)
	assert.Equal(t, first, *found.ClaimedBy)
	assert.NotNil(t, found.ClaimedAt)

	// A second claimant loses: the conditional write touches zero rows.
	rows, err = repo.Claim(ctx, item.ID, uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	found, err = repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ClaimedBy)
	assert.Equal(t, first, *found.ClaimedBy)
}

func TestRepositoryClaimMissingItem(t *testing.T) {
	repo := NewRepository(setupItemsTestDB(t))

	rows, err := repo.Claim(context.Background(), uuid.New(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
}

func TestRepositoryUnclaimClearsPair(t *testing.T) {
	repo := NewRepository(setupItemsTestDB(t))
	ctx := context.Background()

	item := newTestItem(uuid.New(), "Board Game")
	require.NoError(t, repo.Create(ctx, item))
	_, err := repo.Claim(ctx, item.ID, uuid.New(), time.Now().UTC())
	require.NoError(t, err)

	rows, err := repo.Unclaim(ctx, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ClaimedBy)
	assert.Nil(t, found.ClaimedAt)
}

func TestRepositoryUnclaimMissingItem(t *testing.T) {
	repo := NewRepository(setupItemsTestDB(t))

	rows, err := repo.Unclaim(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
}

func TestRepositoryDeleteReportsRowsAffected(t *testing.T) {
	repo := NewRepository(setupItemsTestDB(t))
	ctx := context.Background()

	item := newTestItem(uuid.New(), "Headphones")
	require.NoError(t, repo.Create(ctx, item))

	rows, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)
}

func TestRepositoryUpdateBumpsUpdatedAt(t *testing.T) {
	repo := NewRepository(setupItemsTestDB(t))
	ctx := context.Background()

	item := newTestItem(uuid.New(), "Old Name")
	item.UpdatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, item))

	require.NoError(t, repo.Update(ctx, item.ID, map[string]any{"name": "New Name"}))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.Name)
	assert.True(t, found.UpdatedAt.After(item.UpdatedAt))
}
