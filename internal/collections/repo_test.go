package collections

import (
	"context"
	"testing"
	"time"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCollectionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS collections (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  emoji TEXT NOT NULL DEFAULT '🎁',
  color TEXT NOT NULL DEFAULT 'blue',
  is_private INTEGER NOT NULL DEFAULT 0,
  item_count INTEGER NOT NULL DEFAULT 0,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	return db
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	repo := NewRepository(setupCollectionsTestDB(t))
	ctx := context.Background()

	collection := &models.Collection{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "Birthday Ideas",
		Emoji:   "🎂",
		Color:   "pink",
	}
	require.NoError(t, repo.Create(ctx, collection))

	found, err := repo.FindByID(ctx, collection.ID)
	require.NoError(t, err)
	assert.Equal(t, collection.ID, found.ID)
	assert.Equal(t, "Birthday Ideas", found.Name)
	assert.Equal(t, "🎂", found.Emoji)
	assert.False(t, found.IsDefault)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	repo := NewRepository(setupCollectionsTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByOwnerOrdersDefaultFirst(t *testing.T) {
	repo := NewRepository(setupCollectionsTestDB(t))
	ctx := context.Background()
	owner := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest := &models.Collection{ID: uuid.New(), OwnerID: owner, Name: "Books", Emoji: "📚", Color: "blue", CreatedAt: base}
	newer := &models.Collection{ID: uuid.New(), OwnerID: owner, Name: "Gadgets", Emoji: "🔌", Color: "green", CreatedAt: base.Add(time.Hour)}
	deflt := &models.Collection{ID: uuid.New(), OwnerID: owner, Name: "My Wishlist", Emoji: "🎁", Color: "blue", IsDefault: true, CreatedAt: base.Add(2 * time.Hour)}
	for _, c := range []*models.Collection{oldest, newer, deflt} {
		require.NoError(t, repo.Create(ctx, c))
	}

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, deflt.ID, list[0].ID)
	assert.Equal(t, oldest.ID, list[1].ID)
	assert.Equal(t, newer.ID, list[2].ID)
}

func TestRepositorySetItemCount(t *testing.T) {
	repo := NewRepository(setupCollectionsTestDB(t))
	ctx := context.Background()

	collection := &models.Collection{ID: uuid.New(), OwnerID: uuid.New(), Name: "Travel", Emoji: "✈️", Color: "teal", ItemCount: 99}
	require.NoError(t, repo.Create(ctx, collection))

	require.NoError(t, repo.SetItemCount(ctx, collection.ID, 4))

	found, err := repo.FindByID(ctx, collection.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.ItemCount)
}

func TestRepositoryUpdateAppliesColumns(t *testing.T) {
	repo := NewRepository(setupCollectionsTestDB(t))
	ctx := context.Background()

	collection := &models.Collection{ID: uuid.New(), OwnerID: uuid.New(), Name: "Old Name", Emoji: "🎁", Color: "blue"}
	require.NoError(t, repo.Create(ctx, collection))

	require.NoError(t, repo.Update(ctx, collection.ID, map[string]any{
		"name":       "New Name",
		"is_private": true,
	}))

	found, err := repo.FindByID(ctx, collection.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.Name)
	assert.True(t, found.IsPrivate)
}
