package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/payflow/escrow/escrow/database/models"
	"github.com/payflow/escrow/escrow/trading"
	"github.com/uptrace/bun"
)

type TraderRepository interface {
	Create(ctx context.Context, trader *models.Trader) error
	GetByID(ctx context.Context, id string) (*models.Trader, error)
	GetBalance(ctx context.Context, id string) (int64, error)
	Update(ctx context.Context, trader *models.Trader) error
	UpdateAll(ctx context.Context, traders []*models.Trader) error
}

type traderRepository struct {
	db bun.IDB
}

func NewTraderRepository(db bun.IDB) TraderRepository {
	return &traderRepository{db: db}
}

func (r *traderRepository) Create(ctx context.Context, trader *models.Trader) error {
	trader.CreatedAt = time.Now()
	trader.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(trader).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create trader: %w", err)
	}
	return nil
}

func (r *traderRepository) GetByID(ctx context.Context, id string) (*models.Trader, error) {
	trader := new(models.Trader)
	err := r.db.NewSelect().
		Model(trader).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trading.ErrTraderNotFound
		}
		return nil, fmt.Errorf("failed to get trader: %w", err)
	}
	return trader, nil
}

func (r *traderRepository) GetBalance(ctx context.Context, id string) (int64, error) {
	trader, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return trader.Balance, nil
}

func (r *traderRepository) Update(ctx context.Context, trader *models.Trader) error {
	trader.UpdatedAt = time.Now()

	_, err := r.db.NewUpdate().
		Model(trader).
		Where("id = ?", trader.ID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update trader: %w", err)
	}
	return nil
}

func (r *traderRepository) UpdateAll(ctx context.Context, traders []*models.Trader) error {
	for _, trader := range traders {
		if err := r.Update(ctx, trader); err != nil {
			return err
		}
	}
	return nil
}
