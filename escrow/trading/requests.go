package trading

import "time"

// StartTradeRequest initiates a trade between the caller and TraderID.
// IsStartedBySeller marks the caller as the selling side; the counterparty
// then becomes the buyer.
type StartTradeRequest struct {
	TraderID          string
	ItemIDs           []string
	IsEscrowPayment   bool
	IsStartedBySeller bool
	IsAutoPay         bool
	// Timestamp of the request; the zero value means now.
	Timestamp time.Time
}

type AgreeTermsRequest struct {
	TradeID    string
	IsAccepted bool
}

type PayEscrowRequest struct {
	TradeID string
}

type ShipMerchandiseRequest struct {
	TradeID string
	// ReceiptURL optionally points at a shipping document already uploaded
	// to object storage.
	ReceiptURL string
}

type AcceptMerchandiseRequest struct {
	TradeID string
}

type CancelTradeRequest struct {
	TradeID string
}
