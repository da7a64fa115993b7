package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/catalog/internal/domain"
	"github.com/Skotchmaster/catalog/internal/events"
	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/repo"
	"github.com/Skotchmaster/catalog/internal/search"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

type ItemService struct {
	Repo   *repo.GormRepo
	Index  search.Indexer
	Events events.Publisher
}

type ItemInput struct {
	Itemname    string
	Category    string
	Description string
}

func (s *ItemService) Create(ctx context.Context, identity string, in ItemInput) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "item.create")

	name, ok := domain.NormalizeField(in.Itemname)
	if !ok {
		return nil, ErrInvalidItemname
	}
	category, ok := domain.NormalizeField(in.Category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	description, ok := domain.NormalizeField(in.Description)
	if !ok {
		return nil, ErrInvalidDescription
	}

	item := &models.Item{
		Itemname:    name,
		Category:    category,
		Description: description,
	}
	// Items outlive their creator; a token whose user row is gone still
	// creates an unowned item.
	if owner, err := s.Repo.FindUserByEmail(ctx, identity); err == nil {
		item.UserID = owner.ID
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	if err := s.Repo.CreateItem(ctx, item); err != nil {
		l.Error("create_item_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.index(ctx, item)
	events.Emit(ctx, s.Events, events.TopicItem, itemKey(item.ID), events.Event{
		Type:     "item_created",
		Identity: identity,
		Attrs:    map[string]any{"item_id": item.ID},
	})
	return item, nil
}

func (s *ItemService) Get(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.Repo.GetItem(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return item, err
}

func (s *ItemService) List(ctx context.Context, offset, limit int) (int64, []models.Item, error) {
	return s.Repo.ListItems(ctx, offset, limit)
}

func (s *ItemService) PatchField(ctx context.Context, identity string, id uint, field, value string) (*models.Item, error) {
	if !domain.IsItemField(field) {
		return nil, ErrInvalidField
	}
	value, ok := domain.NormalizeField(value)
	if !ok {
		return nil, ErrInvalidField
	}

	item, err := s.Repo.UpdateItemField(ctx, id, field, value)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.index(ctx, item)
	events.Emit(ctx, s.Events, events.TopicItem, itemKey(id), events.Event{
		Type:     "item_updated",
		Identity: identity,
		Attrs:    map[string]any{"item_id": id, "field": field},
	})
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, identity string, id uint) error {
	if err := s.Repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteItem(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_failed", "item_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicItem, itemKey(id), events.Event{
		Type:     "item_deleted",
		Identity: identity,
		Attrs:    map[string]any{"item_id": id},
	})
	return nil
}

// Search queries the search cluster and falls back to the database when the
// cluster is not configured or the query fails.
func (s *ItemService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Item, error) {
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		if !errors.Is(err, search.ErrDisabled) {
			logging.FromContext(ctx).Warn("search_fallback", "reason", "cluster query failed", "error", err)
		}
	}
	return s.Repo.SearchItems(ctx, q, offset, limit)
}

func (s *ItemService) index(ctx context.Context, item *models.Item) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexItem(ctx, item); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "item_id", item.ID, "error", err)
	}
}

func itemKey(id uint) string {
	return fmt.Sprintf("item-%d", id)
}
