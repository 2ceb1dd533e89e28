package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/payflow/escrow/escrow/database/models"
)

// AccountManager finds or creates the escrow account for a trader and moves
// funds in and out of it. At most one account is materialized per trader:
// Ensure always queries by owner before creating.
type AccountManager struct{}

func NewAccountManager() *AccountManager {
	return &AccountManager{}
}

// Ensure credits the trader's escrow account by credit, creating the account
// first if the trader has none. idHint names the new account when non-empty;
// otherwise a snowflake ID is generated.
func (m *AccountManager) Ensure(ctx context.Context, l Ledger, trader *models.Trader, credit int64, idHint string) (*models.EscrowAccount, error) {
	accounts, err := l.EscrowAccounts().GetByTrader(ctx, trader.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query escrow accounts for trader %s: %w", trader.ID, err)
	}

	if len(accounts) == 0 {
		if idHint == "" {
			idHint = snowflake.New(time.Now()).String()
		}
		account := &models.EscrowAccount{
			AccountID: idHint,
			TraderID:  trader.ID,
			Balance:   credit,
		}
		if err := l.EscrowAccounts().Add(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create escrow account: %w", err)
		}
		return account, nil
	}

	account := accounts[0]
	account.Balance += credit
	if err := l.EscrowAccounts().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to credit escrow account: %w", err)
	}
	return account, nil
}

// Debit withdraws amount from the account. The account balance never goes
// negative; a short balance fails the whole operation.
func (m *AccountManager) Debit(ctx context.Context, l Ledger, account *models.EscrowAccount, amount int64) error {
	if account.Balance < amount {
		return fmt.Errorf("the escrow account holds %d of %d required: %w", account.Balance, amount, ErrInsufficientFunds)
	}
	account.Balance -= amount
	if err := l.EscrowAccounts().Update(ctx, account); err != nil {
		return fmt.Errorf("failed to debit escrow account: %w", err)
	}
	return nil
}
