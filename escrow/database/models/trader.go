package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Trader is a participant in the marketplace. Balance is held in the
// smallest currency unit and is only ever mutated by the lifecycle
// controller inside a transaction.
type Trader struct {
	bun.BaseModel `bun:"table:traders,alias:tr"`

	ID        string `bun:"id,pk"`
	FirstName string `bun:"first_name,notnull"`
	LastName  string `bun:"last_name,notnull"`
	Email     string `bun:"email,notnull"`
	Balance   int64  `bun:"balance,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
