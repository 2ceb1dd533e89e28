package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EscrowAccount custodies buyer funds between payment and delivery
// acceptance. One account is materialized per trader; callers always query
// by owner before creating a new one. The balance never goes negative and
// always equals the funds held for that trader's open trades.
type EscrowAccount struct {
	bun.BaseModel `bun:"table:escrow_accounts,alias:ea"`

	ID        int64  `bun:"id,pk,autoincrement"`
	AccountID string `bun:"account_id,notnull,unique"`
	TraderID  string `bun:"trader_id,notnull"`
	Balance   int64  `bun:"balance,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
