package items

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eyewantit/eyewantit-backend/pkg/db/models"
	dbtypes "github.com/eyewantit/eyewantit-backend/pkg/db/types"
	pkgerrors "github.com/eyewantit/eyewantit-backend/pkg/errors"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeItemStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.WishlistItem
	// rejectClaims makes the next N Claim calls report zero rows affected,
	// simulating a lost conditional-update race.
	rejectClaims int
	// lastUpdates records the column map passed to the most recent Update.
	lastUpdates map[string]any
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[uuid.UUID]*models.WishlistItem{}}
}

func (f *fakeItemStore) Create(ctx context.Context, item *models.WishlistItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeItemStore) FindByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdates = updates
	item, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		item.Name = name
	}
	if score, ok := updates["score"].(int); ok {
		item.Score = score
	}
	if private, ok := updates["is_private"].(bool); ok {
		item.IsPrivate = private
	}
	if memberships, ok := updates["collection_ids"].(dbtypes.UUIDArray); ok {
		item.CollectionIDs = memberships
	}
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeItemStore) Claim(ctx context.Context, id, claimant uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectClaims > 0 {
		f.rejectClaims--
		return 0, nil
	}
	item, ok := f.items[id]
	if !ok || item.ClaimedBy != nil {
		return 0, nil
	}
	item.ClaimedBy = &claimant
	item.ClaimedAt = &at
	item.UpdatedAt = at
	return 1, nil
}

func (f *fakeItemStore) Unclaim(ctx context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	item.ClaimedBy = nil
	item.ClaimedAt = nil
	item.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (f *fakeItemStore) List(ctx context.Context, filter ListFilter) ([]models.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WishlistItem
	for _, item := range f.items {
		if filter.OwnerID != nil && item.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.PublicOnly && item.IsPrivate {
			continue
		}
		if filter.Term != "" && !containsFold(item, filter.Term) {
			continue
		}
		if filter.ScoreMin != nil && item.Score < *filter.ScoreMin {
			continue
		}
		if filter.ScoreMax != nil && item.Score > *filter.ScoreMax {
			continue
		}
		out = append(out, *item)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeItemStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WishlistItem
	for _, item := range f.items {
		if item.CollectionIDs.Contains(collectionID) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func containsFold(item *models.WishlistItem, term string) bool {
	haystack := item.Name
	if item.Description != nil {
		haystack += " " + *item.Description
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(term))
}

type fakeDirectory struct {
	collections map[uuid.UUID]*models.Collection
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{collections: map[uuid.UUID]*models.Collection{}}
}

func (f *fakeDirectory) FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	collection, ok := f.collections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *collection
	return &copied, nil
}

func (f *fakeDirectory) add(ownerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.collections[id] = &models.Collection{ID: id, OwnerID: ownerID, Name: "c"}
	return id
}

type fakeRecomputer struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (f *fakeRecomputer) RecomputeItemCount(ctx context.Context, collectionID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, collectionID)
	if f.err != nil {
		return 0, f.err
	}
	return len(f.calls), nil
}

func (f *fakeRecomputer) recomputed() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]uuid.UUID(nil), f.calls...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

type itemTestSetup struct {
	service    Service
	store      *fakeItemStore
	directory  *fakeDirectory
	recomputer *fakeRecomputer
}

func newItemTestSetup(t *testing.T) *itemTestSetup {
	t.Helper()
	store := newFakeItemStore()
	directory := newFakeDirectory()
	recomputer := &fakeRecomputer{}
	logg := logger.New(logger.Options{ServiceName: "items-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Repo:        store,
		Collections: directory,
		Recomputer:  recomputer,
		Logger:      logg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &itemTestSetup{service: svc, store: store, directory: directory, recomputer: recomputer}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := append([]uuid.UUID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func TestCreateValidatesMemberships(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()

	missing := uuid.New()
	_, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{missing},
	})
	assertCode(t, err, pkgerrors.CodeNotFound)

	foreign := setup.directory.add(uuid.New())
	_, err = setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{foreign},
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	if len(setup.store.items) != 0 {
		t.Fatal("no item should persist after failed validation")
	}
}

func TestCreateRecomputesEachCollection(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	a := setup.directory.add(owner)
	b := setup.directory.add(owner)

	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{a, b, a},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Score != models.ScoreDefault {
		t.Fatalf("expected default score, got %d", dto.Score)
	}
	if len(dto.CollectionIDs) != 2 {
		t.Fatalf("expected deduped memberships, got %v", dto.CollectionIDs)
	}

	recomputed := setup.recomputer.recomputed()
	want := sortedIDs([]uuid.UUID{a, b})
	if len(recomputed) != 2 || recomputed[0] != want[0] || recomputed[1] != want[1] {
		t.Fatalf("expected recompute of %v, got %v", want, recomputed)
	}
}

func TestCreateValidation(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()

	_, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)

	score := 11
	_, err = setup.service.Create(context.Background(), owner, CreateItemInput{Name: "x", Score: &score})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = setup.service.Create(context.Background(), uuid.Nil, CreateItemInput{Name: "x"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestGetReturnsNilWhenAbsent(t *testing.T) {
	setup := newItemTestSetup(t)

	dto, err := setup.service.Get(context.Background(), uuid.New(), uuid.New(), true)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto != nil {
		t.Fatalf("expected nil for absent item, got %+v", dto)
	}
}

func TestUpdateSymmetricDifferenceRecompute(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	a := setup.directory.add(owner)
	b := setup.directory.add(owner)
	c := setup.directory.add(owner)

	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{a, b},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	setup.recomputer.calls = nil

	next := []uuid.UUID{b, c}
	updated, err := setup.service.Update(context.Background(), owner, dto.ID, UpdateItemInput{CollectionIDs: &next})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.CollectionIDs) != 2 {
		t.Fatalf("expected 2 memberships, got %v", updated.CollectionIDs)
	}

	recomputed := setup.recomputer.recomputed()
	want := sortedIDs([]uuid.UUID{a, c})
	if len(recomputed) != 2 || recomputed[0] != want[0] || recomputed[1] != want[1] {
		t.Fatalf("expected recompute of exactly {A,C}, got %v", recomputed)
	}
}

func TestUpdateRequiresFieldsAndOwnership(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = setup.service.Update(context.Background(), owner, dto.ID, UpdateItemInput{})
	assertCode(t, err, pkgerrors.CodeValidation)

	name := "Desktop"
	_, err = setup.service.Update(context.Background(), uuid.New(), dto.ID, UpdateItemInput{Name: &name})
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = setup.service.Update(context.Background(), owner, uuid.New(), UpdateItemInput{Name: &name})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateReturnsWrittenTimestamp(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Gaming Laptop"
	updated, err := setup.service.Update(context.Background(), owner, dto.ID, UpdateItemInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	written, ok := setup.store.lastUpdates["updated_at"].(time.Time)
	if !ok {
		t.Fatal("expected updated_at in the column updates")
	}
	if !updated.UpdatedAt.Equal(written) {
		t.Fatalf("returned updated_at %v differs from written %v", updated.UpdatedAt, written)
	}
	if updated.UpdatedAt.Before(dto.UpdatedAt) {
		t.Fatalf("updated_at went backwards: %v < %v", updated.UpdatedAt, dto.UpdatedAt)
	}
}

func TestDeleteRecomputesFormerCollections(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	a := setup.directory.add(owner)
	b := setup.directory.add(owner)

	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{a, b},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	setup.recomputer.calls = nil

	if err := setup.service.Delete(context.Background(), owner, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(setup.store.items) != 0 {
		t.Fatal("item row should be gone")
	}

	recomputed := setup.recomputer.recomputed()
	want := sortedIDs([]uuid.UUID{a, b})
	if len(recomputed) != 2 || recomputed[0] != want[0] || recomputed[1] != want[1] {
		t.Fatalf("expected recompute of %v, got %v", want, recomputed)
	}
}

func TestClaimSetsBothFields(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	claimant := uuid.New()
	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := setup.service.Claim(context.Background(), claimant, dto.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.ClaimedBy == nil || *claimed.ClaimedBy != claimant {
		t.Fatalf("expected claimant recorded, got %v", claimed.ClaimedBy)
	}
	if claimed.ClaimedAt == nil {
		t.Fatal("expected claimed_at set alongside claimed_by")
	}
}

func TestClaimConflictMessages(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	first := uuid.New()
	second := uuid.New()
	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := setup.service.Claim(context.Background(), first, dto.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	_, err = setup.service.Claim(context.Background(), first, dto.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
	if typed := pkgerrors.As(err); typed.Message() != "you have already claimed this item" {
		t.Fatalf("unexpected self-claim message %q", typed.Message())
	}

	_, err = setup.service.Claim(context.Background(), second, dto.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
	if typed := pkgerrors.As(err); typed.Message() != "item is already claimed by another user" {
		t.Fatalf("unexpected other-claim message %q", typed.Message())
	}
}

func TestClaimLostRaceAgainstReleasedClaim(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The conditional write loses, yet by the re-read the claim is free
	// again. The error must not name a claim holder that no longer exists.
	setup.store.rejectClaims = 1
	_, err = setup.service.Claim(context.Background(), uuid.New(), dto.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
	if typed := pkgerrors.As(err); typed.Message() == "item is already claimed by another user" {
		t.Fatalf("conflict message asserts a holder on an unclaimed item: %q", typed.Message())
	}
}

func TestClaimMissingItem(t *testing.T) {
	setup := newItemTestSetup(t)

	_, err := setup.service.Claim(context.Background(), uuid.New(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUnclaimOpenToAnyCaller(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	claimant := uuid.New()
	bystander := uuid.New()
	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := setup.service.Claim(context.Background(), claimant, dto.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	released, err := setup.service.Unclaim(context.Background(), bystander, dto.ID)
	if err != nil {
		t.Fatalf("unclaim by non-claimant: %v", err)
	}
	if released.ClaimedBy != nil || released.ClaimedAt != nil {
		t.Fatalf("expected cleared claim pair, got %v/%v", released.ClaimedBy, released.ClaimedAt)
	}

	_, err = setup.service.Unclaim(context.Background(), bystander, uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSearchScopesAndValidation(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	other := uuid.New()

	if _, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Gaming Laptop"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := setup.service.Create(context.Background(), other, CreateItemInput{Name: "laptop sleeve"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := setup.service.Create(context.Background(), other, CreateItemInput{Name: "secret laptop", IsPrivate: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := setup.service.Search(context.Background(), owner, "  ", QueryOptions{})
	assertCode(t, err, pkgerrors.CodeValidation)

	own, err := setup.service.Search(context.Background(), owner, "laptop", QueryOptions{})
	if err != nil {
		t.Fatalf("search own: %v", err)
	}
	if len(own) != 1 || own[0].OwnerID != owner {
		t.Fatalf("expected only caller's items, got %d", len(own))
	}

	all, err := setup.service.Search(context.Background(), owner, "laptop", QueryOptions{Scope: ScopeAll})
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 public matches, got %d", len(all))
	}

	theirs, err := setup.service.Search(context.Background(), owner, "laptop", QueryOptions{Scope: ScopeUser, UserID: &other})
	if err != nil {
		t.Fatalf("search user: %v", err)
	}
	if len(theirs) != 1 {
		t.Fatalf("expected private rows hidden from other callers, got %d", len(theirs))
	}
}

func TestSearchPagination(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()

	for _, name := range []string{"laptop one", "laptop two", "laptop three"} {
		if _, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := setup.service.Search(context.Background(), owner, "laptop", QueryOptions{Limit: 2})
	if err != nil {
		t.Fatalf("search paged: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected a 2-item page, got %d", len(page))
	}

	_, err = setup.service.Search(context.Background(), owner, "laptop", QueryOptions{Cursor: "not a cursor"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestScoreRangeValidation(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()

	_, err := setup.service.ListByScoreRange(context.Background(), owner, 5, 3, QueryOptions{})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = setup.service.ListByScoreRange(context.Background(), owner, 0, 5, QueryOptions{})
	assertCode(t, err, pkgerrors.CodeValidation)

	score := 8
	if _, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "High", Score: &score}); err != nil {
		t.Fatalf("create: %v", err)
	}
	low := 3
	if _, err := setup.service.Create(context.Background(), owner, CreateItemInput{Name: "Low", Score: &low}); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := setup.service.ListByScoreRange(context.Background(), owner, 5, 10, QueryOptions{})
	if err != nil {
		t.Fatalf("list by score: %v", err)
	}
	if len(items) != 1 || items[0].Name != "High" {
		t.Fatalf("expected only the high-score item, got %d", len(items))
	}
}

func TestListInCollection(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	collection := setup.directory.add(owner)

	if _, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{collection},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := setup.service.ListInCollection(context.Background(), owner, uuid.New(), true)
	assertCode(t, err, pkgerrors.CodeNotFound)

	_, err = setup.service.ListInCollection(context.Background(), uuid.New(), collection, true)
	assertCode(t, err, pkgerrors.CodeForbidden)

	items, err := setup.service.ListInCollection(context.Background(), owner, collection, true)
	if err != nil {
		t.Fatalf("list in collection: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestAddAndRemoveCollectionWrappers(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	a := setup.directory.add(owner)
	b := setup.directory.add(owner)

	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{a},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	setup.recomputer.calls = nil

	added, err := setup.service.AddToCollections(context.Background(), owner, dto.ID, []uuid.UUID{b, a})
	if err != nil {
		t.Fatalf("add to collections: %v", err)
	}
	if len(added.CollectionIDs) != 2 {
		t.Fatalf("expected merged set of 2, got %v", added.CollectionIDs)
	}
	recomputed := setup.recomputer.recomputed()
	if len(recomputed) != 1 || recomputed[0] != b {
		t.Fatalf("expected recompute of only the added collection, got %v", recomputed)
	}

	setup.recomputer.calls = nil
	removed, err := setup.service.RemoveFromCollections(context.Background(), owner, dto.ID, []uuid.UUID{a})
	if err != nil {
		t.Fatalf("remove from collections: %v", err)
	}
	if len(removed.CollectionIDs) != 1 || removed.CollectionIDs[0] != b {
		t.Fatalf("expected only B left, got %v", removed.CollectionIDs)
	}
	recomputed = setup.recomputer.recomputed()
	if len(recomputed) != 1 || recomputed[0] != a {
		t.Fatalf("expected recompute of only the removed collection, got %v", recomputed)
	}
}

func TestRecomputeFailureDoesNotFailPrimary(t *testing.T) {
	setup := newItemTestSetup(t)
	owner := uuid.New()
	a := setup.directory.add(owner)
	setup.recomputer.err = gorm.ErrInvalidDB

	dto, err := setup.service.Create(context.Background(), owner, CreateItemInput{
		Name:          "Laptop",
		CollectionIDs: []uuid.UUID{a},
	})
	if err != nil {
		t.Fatalf("create should survive recompute failure, got %v", err)
	}
	if dto == nil {
		t.Fatal("expected created item despite recompute failure")
	}
}
