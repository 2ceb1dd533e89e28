package trading

import (
	"context"

	"github.com/payflow/escrow/escrow/database/models"
)

// TraderRepository is the trader surface the domain needs.
type TraderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Trader, error)
	Create(ctx context.Context, trader *models.Trader) error
	Update(ctx context.Context, trader *models.Trader) error
	UpdateAll(ctx context.Context, traders []*models.Trader) error
}

// TradeRepository stores trades keyed by their business ID.
type TradeRepository interface {
	GetByTradeID(ctx context.Context, tradeID string) (*models.Trade, error)
	Add(ctx context.Context, trade *models.Trade) error
	Update(ctx context.Context, trade *models.Trade) error
}

// EscrowAccountRepository stores escrow accounts and supports the
// query-by-owner lookup the lifecycle operations rely on.
type EscrowAccountRepository interface {
	GetByTrader(ctx context.Context, traderID string) ([]*models.EscrowAccount, error)
	Add(ctx context.Context, account *models.EscrowAccount) error
	Update(ctx context.Context, account *models.EscrowAccount) error
}

// ItemRepository resolves item references to priced catalog entries.
type ItemRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.Item, error)
}

// Ledger is the keyed record store every operation runs against. Atomically
// executes fn as one all-or-nothing unit of work: either every mutation made
// through the ledger it passes to fn commits, or none does. The store is
// responsible for serializing conflicting units of work on the same records.
type Ledger interface {
	Traders() TraderRepository
	Trades() TradeRepository
	EscrowAccounts() EscrowAccountRepository
	Items() ItemRepository

	Atomically(ctx context.Context, fn func(ctx context.Context, l Ledger) error) error
}
