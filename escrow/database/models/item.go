package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Item is a priced catalog entry. Items are immutable once referenced by a
// trade, which is what makes the repository-level cache safe.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID         string `bun:"id,pk"`
	Name       string `bun:"name,notnull"`
	SalesPrice int64  `bun:"sales_price,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
