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

type TradeRepository interface {
	Add(ctx context.Context, trade *models.Trade) error
	GetByTradeID(ctx context.Context, tradeID string) (*models.Trade, error)
	GetTradesForTrader(ctx context.Context, traderID string) ([]*models.Trade, error)
	Update(ctx context.Context, trade *models.Trade) error
}

type tradeRepository struct {
	db bun.IDB
}

func NewTradeRepository(db bun.IDB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Add(ctx context.Context, trade *models.Trade) error {
	trade.CreatedAt = time.Now()
	trade.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(trade).
		Returning("id").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (r *tradeRepository) GetByTradeID(ctx context.Context, tradeID string) (*models.Trade, error) {
	trade := new(models.Trade)
	err := r.db.NewSelect().
		Model(trade).
		Where("trade_id = ?", tradeID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trading.ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

func (r *tradeRepository) GetTradesForTrader(ctx context.Context, traderID string) ([]*models.Trade, error) {
	var trades []*models.Trade
	err := r.db.NewSelect().
		Model(&trades).
		Where("buyer_id = ? OR seller_id = ?", traderID, traderID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get trades for trader: %w", err)
	}
	return trades, nil
}

func (r *tradeRepository) Update(ctx context.Context, trade *models.Trade) error {
	trade.UpdatedAt = time.Now()

	_, err := r.db.NewUpdate().
		Model(trade).
		Where("trade_id = ?", trade.TradeID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	return nil
}
