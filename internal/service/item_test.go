package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/internal/events"
	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/search"
	"github.com/Skotchmaster/catalog/internal/testutil"
)

type fakeIndex struct {
	indexed map[uint]models.Item
	deleted []uint
	err     error
}

func (f *fakeIndex) IndexItem(_ context.Context, item *models.Item) error {
	if f.indexed == nil {
		f.indexed = map[uint]models.Item{}
	}
	f.indexed[item.ID] = *item
	return nil
}

func (f *fakeIndex) DeleteItem(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Item, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	items := make([]models.Item, 0, len(f.indexed))
	for _, it := range f.indexed {
		items = append(items, it)
	}
	return int64(len(items)), items, nil
}

func newTestItemService(t *testing.T, idx search.Indexer) (*ItemService, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return &ItemService{Repo: testutil.NewRepo(t), Index: idx, Events: rec}, rec
}

func TestItemService_Lifecycle(t *testing.T) {
	idx := &fakeIndex{}
	svc, rec := newTestItemService(t, idx)
	ctx := context.Background()

	owner := &models.User{Email: "owner@example.com", Username: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, svc.Repo.CreateUser(ctx, owner))

	item, err := svc.Create(ctx, "owner@example.com", ItemInput{
		Itemname:    "  ball ",
		Category:    "soccer",
		Description: "a round thing",
	})
	require.NoError(t, err)
	assert.Equal(t, "ball", item.Itemname)
	assert.Equal(t, owner.ID, item.UserID)
	assert.Contains(t, idx.indexed, item.ID)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "soccer", got.Category)

	patched, err := svc.PatchField(ctx, "owner@example.com", item.ID, "category", "football")
	require.NoError(t, err)
	assert.Equal(t, "football", patched.Category)
	assert.Equal(t, "football", idx.indexed[item.ID].Category)

	total, items, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, "owner@example.com", item.ID))
	assert.Equal(t, []uint{item.ID}, idx.deleted)

	_, err = svc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "owner@example.com", item.ID), ErrNotFound)

	assert.Equal(t, []string{"item_created", "item_updated", "item_deleted"}, rec.Types(events.TopicItem))
}

func TestItemService_Validation(t *testing.T) {
	svc, _ := newTestItemService(t, search.Nop{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "x@example.com", ItemInput{Itemname: "ball", Category: "  ", Description: "d"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = svc.Create(ctx, "x@example.com", ItemInput{Category: "c", Description: "d"})
	assert.ErrorIs(t, err, ErrInvalidItemname)

	item, err := svc.Create(ctx, "x@example.com", ItemInput{Itemname: "ball", Category: "c", Description: "d"})
	require.NoError(t, err)
	assert.Zero(t, item.UserID)

	_, err = svc.PatchField(ctx, "x@example.com", item.ID, "price", "10")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = svc.PatchField(ctx, "x@example.com", item.ID, "itemname", "   ")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = svc.PatchField(ctx, "x@example.com", item.ID+100, "itemname", "bat")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemService_SearchFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()

	for name, idx := range map[string]search.Indexer{
		"disabled": search.Nop{},
		"failing":  &fakeIndex{err: errors.New("cluster down")},
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestItemService(t, idx)
			_, err := svc.Create(ctx, "x@example.com", ItemInput{Itemname: "Red Ball", Category: "toys", Description: "bouncy"})
			require.NoError(t, err)
			_, err = svc.Create(ctx, "x@example.com", ItemInput{Itemname: "Bat", Category: "sport", Description: "wooden"})
			require.NoError(t, err)

			total, items, err := svc.Search(ctx, "ball", 0, 10)
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
			require.Len(t, items, 1)
			assert.Equal(t, "Red Ball", items[0].Itemname)
		})
	}
}

func TestItemService_SearchUsesIndex(t *testing.T) {
	idx := &fakeIndex{}
	svc, _ := newTestItemService(t, idx)
	ctx := context.Background()

	_, err := svc.Create(ctx, "x@example.com", ItemInput{Itemname: "Bat", Category: "sport", Description: "wooden"})
	require.NoError(t, err)

	total, items, err := svc.Search(ctx, "anything", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)
}
