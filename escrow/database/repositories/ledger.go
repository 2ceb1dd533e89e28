package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/payflow/escrow/escrow/trading"
	"github.com/uptrace/bun"
)

// Ledger is the bun-backed record store behind the trading domain. A unit of
// work maps to a serializable transaction: conflicting concurrent operations
// on the same trade, trader or escrow account cannot both commit.
type Ledger struct {
	db    bun.IDB
	items *itemRepository
}

func NewLedger(db *bun.DB) *Ledger {
	return &Ledger{
		db:    db,
		items: NewItemRepository(db).(*itemRepository),
	}
}

func (l *Ledger) Traders() trading.TraderRepository { return NewTraderRepository(l.db) }

func (l *Ledger) Trades() trading.TradeRepository { return NewTradeRepository(l.db) }

func (l *Ledger) EscrowAccounts() trading.EscrowAccountRepository {
	return NewEscrowAccountRepository(l.db)
}

func (l *Ledger) Items() trading.ItemRepository { return l.items }

// Atomically runs fn inside a serializable transaction. Every repository
// handed to fn is bound to that transaction; any error rolls the whole unit
// of work back. Nested calls join the enclosing transaction.
func (l *Ledger) Atomically(ctx context.Context, fn func(ctx context.Context, tx trading.Ledger) error) error {
	db, ok := l.db.(*bun.DB)
	if !ok {
		return fn(ctx, l)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	bound := &Ledger{
		db: tx,
		items: &itemRepository{
			db:    tx,
			cache: l.items.cache,
			sf:    l.items.sf,
		},
	}
	if err := fn(ctx, bound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
