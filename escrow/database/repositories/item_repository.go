package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/payflow/escrow/escrow/database/models"
	"github.com/payflow/escrow/escrow/trading"
	"github.com/sahilm/fuzzy"
	"github.com/uptrace/bun"
	"golang.org/x/sync/singleflight"
)

const itemCacheSize = 1024

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id string) (*models.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Item, error)
	GetAll(ctx context.Context) ([]*models.Item, error)
	SearchByName(ctx context.Context, query string, limit int) ([]*models.Item, error)
}

// itemRepository caches aggressively: items are immutable once referenced by
// a trade, so a cached entry can never go stale. The cache and the
// singleflight group are shared across transaction-bound instances.
type itemRepository struct {
	db    bun.IDB
	cache *lru.Cache
	sf    *singleflight.Group
}

func NewItemRepository(db bun.IDB) ItemRepository {
	cache, err := lru.New(itemCacheSize)
	if err != nil {
		panic(err)
	}
	return &itemRepository{
		db:    db,
		cache: cache,
		sf:    &singleflight.Group{},
	}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	r.cache.Add(item.ID, item)
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached.(*models.Item), nil
	}

	v, err, _ := r.sf.Do(id, func() (interface{}, error) {
		item := new(models.Item)
		err := r.db.NewSelect().
			Model(item).
			Where("id = ?", id).
			Scan(ctx)

		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, trading.ErrItemNotFound
			}
			return nil, fmt.Errorf("failed to get item: %w", err)
		}
		r.cache.Add(item.ID, item)
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Item), nil
}

// GetByIDs resolves the requested IDs, serving from the cache where possible.
// Unknown IDs are simply absent from the result; callers compare lengths.
func (r *itemRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Item, error) {
	items := make([]*models.Item, 0, len(ids))
	var misses []string
	for _, id := range ids {
		if cached, ok := r.cache.Get(id); ok {
			items = append(items, cached.(*models.Item))
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return items, nil
	}

	var fetched []*models.Item
	err := r.db.NewSelect().
		Model(&fetched).
		Where("id IN (?)", bun.In(misses)).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	for _, item := range fetched {
		r.cache.Add(item.ID, item)
	}
	return append(items, fetched...), nil
}

func (r *itemRepository) GetAll(ctx context.Context) ([]*models.Item, error) {
	v, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		var items []*models.Item
		err := r.db.NewSelect().
			Model(&items).
			Order("id ASC").
			Scan(ctx)

		if err != nil {
			return nil, fmt.Errorf("failed to get items: %w", err)
		}
		for _, item := range items {
			r.cache.Add(item.ID, item)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*models.Item), nil
}

// itemSource implements fuzzy.Source over the item catalog.
type itemSource []*models.Item

func (s itemSource) String(i int) string { return s[i].Name }
func (s itemSource) Len() int            { return len(s) }

func (r *itemRepository) SearchByName(ctx context.Context, query string, limit int) ([]*models.Item, error) {
	catalog, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, itemSource(catalog))
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}

	results := make([]*models.Item, 0, limit)
	for _, match := range matches[:limit] {
		results = append(results, catalog[match.Index])
	}
	return results, nil
}
