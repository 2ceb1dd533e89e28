package trading

import (
	"time"

	"github.com/payflow/escrow/escrow/database/models"
)

type EventType string

const (
	EventTraderStartsTrade        EventType = "TraderStartsTrade"
	EventBuyerAgreedToTerms       EventType = "BuyerAgreedToTerms"
	EventSellerAgreedToTerms      EventType = "SellerAgreedToTerms"
	EventBothPartiesAgreedToTerms EventType = "BothPartiesAgreedToTerms"
	EventTraderDidNotAgreeTerms   EventType = "TraderDidNotAgreeTerms"
	EventBuyerPaidEscrow          EventType = "BuyerPaidEscrow"
	EventMerchandiseIsShipped     EventType = "MerchandiseIsShipped"
	EventBuyerAcceptedMerchandise EventType = "BuyerAcceptedMerchandise"
	EventTraderCancelledTrade     EventType = "TraderCancelledTrade"
)

// Event is a domain event produced by a completed operation. Operations
// return the events they produced instead of emitting as a side effect; the
// caller forwards them to an outbound sink. TraderID is the acting trader
// and is empty where the event has no single actor.
type Event struct {
	Type     EventType `json:"type" bson:"type"`
	TradeID  string    `json:"trade_id" bson:"trade_id"`
	TraderID string    `json:"trader_id,omitempty" bson:"trader_id,omitempty"`
	// IsEscrowPayment carries the flag as requested at initiation. Only set
	// on TraderStartsTrade.
	IsEscrowPayment bool               `json:"is_escrow_payment,omitempty" bson:"is_escrow_payment,omitempty"`
	Status          models.TradeStatus `json:"status" bson:"status"`
	At              time.Time          `json:"at" bson:"at"`
}

func newEvent(t EventType, trade *models.Trade, traderID string) Event {
	return Event{
		Type:     t,
		TradeID:  trade.TradeID,
		TraderID: traderID,
		Status:   trade.Status,
		At:       time.Now(),
	}
}
