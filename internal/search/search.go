package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/catalog/internal/models"
)

var ErrDisabled = errors.New("search: no cluster configured")

type Indexer interface {
	IndexItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, from, size int) (int64, []models.Item, error)
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	return client, nil
}

type ESIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewESIndexer(es *elasticsearch.Client, index string) *ESIndexer {
	return &ESIndexer{es: es, index: index}
}

func (s *ESIndexer) IndexItem(ctx context.Context, item *models.Item) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(item); err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	res, err := s.es.Index(
		s.index,
		&buf,
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(strconv.FormatUint(uint64(item.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index item %d: %w", item.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index item %d: %s", item.ID, res.Status())
	}
	return nil
}

func (s *ESIndexer) DeleteItem(ctx context.Context, id uint) error {
	res, err := s.es.Delete(
		s.index,
		strconv.FormatUint(uint64(id), 10),
		s.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete item %d: %s", id, res.Status())
	}
	return nil
}

func (s *ESIndexer) Search(ctx context.Context, q string, from, size int) (int64, []models.Item, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"itemname^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Item `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.Item, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}

// Nop is used when ES_URL is empty; searches report ErrDisabled so callers
// can fall back to the database.
type Nop struct{}

func (Nop) IndexItem(context.Context, *models.Item) error { return nil }
func (Nop) DeleteItem(context.Context, uint) error        { return nil }
func (Nop) Search(context.Context, string, int, int) (int64, []models.Item, error) {
	return 0, nil, ErrDisabled
}
