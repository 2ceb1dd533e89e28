package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TradeStatus string

const (
	TradeCancelledByBuyer         TradeStatus = "STEP_0_CANCELLED_BY_BUYER"
	TradeCancelledBySeller        TradeStatus = "STEP_0_CANCELLED_BY_SELLER"
	TradeDirectPaymentCompleted   TradeStatus = "STEP_1_DIRECT_PAYMENT_COMPLETED"
	TradeWaitingForTermsAgreement TradeStatus = "STEP_1_WAITING_FOR_TERMS_AGREEMENT"
	TradeTermsAccepted            TradeStatus = "STEP_2_TERMS_ACCEPTED"
	TradeTermsNotAccepted         TradeStatus = "STEP_2_TERMS_NOT_ACCEPTED"
	TradeFundsInEscrow            TradeStatus = "STEP_3_BUYER_MOVED_FUNDS_TO_ESCROW"
	TradeMerchandiseShipped       TradeStatus = "STEP_4_MERCHANDISE_IS_SHIPPED"
	TradeMerchandiseAccepted      TradeStatus = "STEP_5_MERCHANDISE_IS_ACCEPTED_AND_SELLER_IS_PAID"
)

// Terminal reports whether no further transition may leave the status.
func (s TradeStatus) Terminal() bool {
	switch s {
	case TradeCancelledByBuyer,
		TradeCancelledBySeller,
		TradeDirectPaymentCompleted,
		TradeTermsNotAccepted,
		TradeMerchandiseAccepted:
		return true
	}
	return false
}

// Cancellable reports whether CancelTrade may run against the status.
func (s TradeStatus) Cancellable() bool {
	switch s {
	case TradeWaitingForTermsAgreement,
		TradeTermsAccepted,
		TradeFundsInEscrow:
		return true
	}
	return false
}

// Trade is a single buy/sell agreement between two traders for a fixed set
// of items at a fixed total price. Created by the initiation service,
// mutated only by the lifecycle controller, never deleted: terminal trades
// are kept as historical record.
type Trade struct {
	bun.BaseModel `bun:"table:trades,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	TradeID   string    `bun:"trade_id,notnull,unique"`
	Timestamp time.Time `bun:"timestamp,notnull"`
	BuyerID   string    `bun:"buyer_id,notnull"`
	SellerID  string    `bun:"seller_id,notnull"`

	ItemIDs []string `bun:"item_ids,type:jsonb"`
	// Total is the sum of the item prices at creation time and never
	// changes afterwards.
	Total int64 `bun:"total,notnull"`

	IsEscrowPayment bool        `bun:"is_escrow_payment,notnull,default:false"`
	IsAutoPay       bool        `bun:"is_auto_pay,notnull,default:false"`
	Status          TradeStatus `bun:"status,notnull"`

	HasBuyerAcceptedTerms  bool `bun:"has_buyer_accepted_terms,notnull,default:false"`
	HasSellerAcceptedTerms bool `bun:"has_seller_accepted_terms,notnull,default:false"`

	// EscrowAccountID is set once funds move to escrow.
	EscrowAccountID string `bun:"escrow_account_id"`
	CancelledByID   string `bun:"cancelled_by_id"`
	ReceiptURL      string `bun:"receipt_url"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Buyer  *Trader `bun:"rel:belongs-to,join:buyer_id=id"`
	Seller *Trader `bun:"rel:belongs-to,join:seller_id=id"`
}
