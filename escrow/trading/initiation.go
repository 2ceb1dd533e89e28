package trading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/payflow/escrow/escrow/database/models"
)

// InitiationService computes the total price of the requested items, picks
// the direct-payment or escrow-payment path and creates the trade record.
type InitiationService struct {
	ledger Ledger
}

func NewInitiationService(ledger Ledger) *InitiationService {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	return &InitiationService{ledger: ledger}
}

// StartTrade creates a trade on behalf of caller. Direct payments move the
// full amount from buyer to seller immediately and the trade is born
// terminal; escrow payments only verify the buyer could pay and leave the
// trade waiting for terms agreement. Funds are not reserved for escrow
// trades: the balance is checked here but deducted only at PayEscrow or
// auto-pay time.
func (s *InitiationService) StartTrade(ctx context.Context, callerID string, req StartTradeRequest) (*models.Trade, []Event, error) {
	if len(req.ItemIDs) == 0 {
		return nil, nil, ErrEmptyItemSet
	}

	var trade *models.Trade
	err := s.ledger.Atomically(ctx, func(ctx context.Context, l Ledger) error {
		caller, err := l.Traders().GetByID(ctx, callerID)
		if err != nil {
			return fmt.Errorf("failed to resolve caller %s: %w", callerID, err)
		}
		counterparty, err := l.Traders().GetByID(ctx, req.TraderID)
		if err != nil {
			return fmt.Errorf("failed to resolve counterparty %s: %w", req.TraderID, err)
		}

		items, err := l.Items().GetByIDs(ctx, req.ItemIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve items: %w", err)
		}
		if len(items) != len(req.ItemIDs) {
			return fmt.Errorf("%d of %d items unknown: %w", len(req.ItemIDs)-len(items), len(req.ItemIDs), ErrItemNotFound)
		}

		var total int64
		for _, item := range items {
			total += item.SalesPrice
		}

		if req.IsEscrowPayment {
			trade, err = s.escrowPayment(ctx, l, caller, counterparty, req, total)
		} else {
			trade, err = s.directPayment(ctx, l, caller, counterparty, req, total)
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Trade started",
		slog.String("trade_id", trade.TradeID),
		slog.String("buyer_id", trade.BuyerID),
		slog.String("seller_id", trade.SellerID),
		slog.Int64("total", trade.Total),
		slog.String("status", string(trade.Status)))

	evt := newEvent(EventTraderStartsTrade, trade, callerID)
	evt.IsEscrowPayment = req.IsEscrowPayment
	return trade, []Event{evt}, nil
}

// directPayment settles the trade at creation: the full amount moves from
// the caller (always the buyer on this path) to the counterparty.
func (s *InitiationService) directPayment(ctx context.Context, l Ledger, caller, counterparty *models.Trader, req StartTradeRequest, total int64) (*models.Trade, error) {
	if req.IsStartedBySeller {
		return nil, ErrSellerCannotInitiateDirectPayment
	}
	if caller.Balance < total {
		return nil, fmt.Errorf("the buyer has insufficient funds to make this transaction: %w", ErrInsufficientFunds)
	}

	counterparty.Balance += total
	caller.Balance -= total
	if err := l.Traders().UpdateAll(ctx, []*models.Trader{counterparty, caller}); err != nil {
		return nil, fmt.Errorf("failed to settle direct payment: %w", err)
	}

	trade := newTrade(caller, counterparty, req, total, models.TradeDirectPaymentCompleted)
	if err := l.Trades().Add(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	return trade, nil
}

// escrowPayment verifies the buyer could cover the total and creates the
// trade waiting for terms agreement. Nothing is deducted yet.
func (s *InitiationService) escrowPayment(ctx context.Context, l Ledger, caller, counterparty *models.Trader, req StartTradeRequest, total int64) (*models.Trade, error) {
	buyer, seller := caller, counterparty
	if req.IsStartedBySeller {
		buyer, seller = counterparty, caller
	}
	if buyer.Balance < total {
		return nil, fmt.Errorf("the buyer has insufficient funds to make this transaction: %w", ErrInsufficientFunds)
	}

	trade := newTrade(buyer, seller, req, total, models.TradeWaitingForTermsAgreement)
	if err := l.Trades().Add(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	return trade, nil
}

func newTrade(buyer, seller *models.Trader, req StartTradeRequest, total int64, status models.TradeStatus) *models.Trade {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &models.Trade{
		TradeID:   snowflake.New(ts).String(),
		Timestamp: ts,
		BuyerID:   buyer.ID,
		SellerID:  seller.ID,
		ItemIDs:   req.ItemIDs,
		Total:     total,
		// The stored flag is always cleared; the requested value travels
		// only on the TraderStartsTrade event.
		IsEscrowPayment: false,
		IsAutoPay:       req.IsAutoPay,
		Status:          status,
	}
}
