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

type EscrowAccountRepository interface {
	Add(ctx context.Context, account *models.EscrowAccount) error
	GetByAccountID(ctx context.Context, accountID string) (*models.EscrowAccount, error)
	GetByTrader(ctx context.Context, traderID string) ([]*models.EscrowAccount, error)
	Update(ctx context.Context, account *models.EscrowAccount) error
}

type escrowAccountRepository struct {
	db bun.IDB
}

func NewEscrowAccountRepository(db bun.IDB) EscrowAccountRepository {
	return &escrowAccountRepository{db: db}
}

func (r *escrowAccountRepository) Add(ctx context.Context, account *models.EscrowAccount) error {
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(account).
		Returning("id").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create escrow account: %w", err)
	}
	return nil
}

func (r *escrowAccountRepository) GetByAccountID(ctx context.Context, accountID string) (*models.EscrowAccount, error) {
	account := new(models.EscrowAccount)
	err := r.db.NewSelect().
		Model(account).
		Where("account_id = ?", accountID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trading.ErrEscrowAccountNotFound
		}
		return nil, fmt.Errorf("failed to get escrow account: %w", err)
	}
	return account, nil
}

// GetByTrader returns the escrow accounts owned by a trader, oldest first.
// The find-or-create discipline keeps this at one account per trader.
func (r *escrowAccountRepository) GetByTrader(ctx context.Context, traderID string) ([]*models.EscrowAccount, error) {
	var accounts []*models.EscrowAccount
	err := r.db.NewSelect().
		Model(&accounts).
		Where("trader_id = ?", traderID).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get escrow accounts for trader: %w", err)
	}
	return accounts, nil
}

func (r *escrowAccountRepository) Update(ctx context.Context, account *models.EscrowAccount) error {
	account.UpdatedAt = time.Now()

	_, err := r.db.NewUpdate().
		Model(account).
		Where("account_id = ?", account.AccountID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update escrow account: %w", err)
	}
	return nil
}
