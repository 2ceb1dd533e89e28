package trading

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payflow/escrow/escrow/database/models"
)

// Controller owns the trade state machine. Every operation takes the acting
// trader as an explicit principal, checks authorization before state, runs
// as one atomic unit of work against the ledger and returns the domain
// events it produced. Nothing is emitted from here; the caller forwards the
// events to the outbound sink.
type Controller struct {
	ledger   Ledger
	accounts *AccountManager
}

func NewController(ledger Ledger) *Controller {
	if ledger == nil {
		panic("ledger cannot be nil")
	}
	return &Controller{
		ledger:   ledger,
		accounts: NewAccountManager(),
	}
}

// AgreeTerms records one party's acceptance or rejection of the trade terms.
// When both parties have accepted the trade advances to STEP_2; if it is an
// auto-pay trade the buyer's funds move to escrow in the same unit of work.
// A rejection by either party terminates the trade.
func (c *Controller) AgreeTerms(ctx context.Context, callerID string, req AgreeTermsRequest) (*models.Trade, []Event, error) {
	var (
		trade *models.Trade
		evts  []Event
	)
	err := c.ledger.Atomically(ctx, func(ctx context.Context, l Ledger) error {
		evts = evts[:0]

		t, err := l.Trades().GetByTradeID(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if callerID != t.BuyerID && callerID != t.SellerID {
			return fmt.Errorf("the trader is not part of this trade: %w", ErrUnauthorized)
		}
		if t.Status != models.TradeWaitingForTermsAgreement {
			return invalidState("AgreeTerms", t.Status)
		}

		if !req.IsAccepted {
			t.Status = models.TradeTermsNotAccepted
			t.CancelledByID = callerID
			if err := l.Trades().Update(ctx, t); err != nil {
				return err
			}
			evts = append(evts, newEvent(EventTraderDidNotAgreeTerms, t, callerID))
			trade = t
			return nil
		}

		if callerID == t.BuyerID {
			t.HasBuyerAcceptedTerms = true
			evts = append(evts, newEvent(EventBuyerAgreedToTerms, t, t.BuyerID))
		}
		if callerID == t.SellerID {
			t.HasSellerAcceptedTerms = true
			evts = append(evts, newEvent(EventSellerAgreedToTerms, t, t.SellerID))
		}

		both := t.HasBuyerAcceptedTerms && t.HasSellerAcceptedTerms
		if both {
			t.Status = models.TradeTermsAccepted
			evts = append(evts, newEvent(EventBothPartiesAgreedToTerms, t, ""))
		}
		if err := l.Trades().Update(ctx, t); err != nil {
			return err
		}

		if both && t.IsAutoPay {
			if err := c.moveFundsToEscrow(ctx, l, t); err != nil {
				return err
			}
			evts = append(evts, newEvent(EventBuyerPaidEscrow, t, ""))
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Terms agreement recorded",
		slog.String("trade_id", trade.TradeID),
		slog.String("trader_id", callerID),
		slog.Bool("accepted", req.IsAccepted),
		slog.String("status", string(trade.Status)))
	return trade, evts, nil
}

// PayEscrow moves the trade total from the buyer's balance into the buyer's
// escrow account. Only the buyer may pay and only once both parties agreed
// to terms.
func (c *Controller) PayEscrow(ctx context.Context, callerID string, req PayEscrowRequest) (*models.Trade, []Event, error) {
	var trade *models.Trade
	err := c.ledger.Atomically(ctx, func(ctx context.Context, l Ledger) error {
		t, err := l.Trades().GetByTradeID(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if callerID != t.BuyerID {
			return fmt.Errorf("the trader is not the buyer of the trade: %w", ErrUnauthorized)
		}
		if t.Status != models.TradeTermsAccepted {
			return invalidState("PayEscrow", t.Status)
		}
		if err := c.moveFundsToEscrow(ctx, l, t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Buyer paid escrow",
		slog.String("trade_id", trade.TradeID),
		slog.String("buyer_id", trade.BuyerID),
		slog.Int64("total", trade.Total))
	return trade, []Event{newEvent(EventBuyerPaidEscrow, trade, "")}, nil
}

// ShipMerchandise marks the merchandise as shipped. Only the seller may ship
// and only after the buyer's funds reached escrow. A shipping receipt
// already uploaded to object storage may be attached.
func (c *Controller) ShipMerchandise(ctx context.Context, callerID string, req ShipMerchandiseRequest) (*models.Trade, []Event, error) {
	var trade *models.Trade
	err := c.ledger.Atomically(ctx, func(ctx context.Context, l Ledger) error {
		t, err := l.Trades().GetByTradeID(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if callerID != t.SellerID {
			return fmt.Errorf("the trader is not the seller of this trade: %w", ErrUnauthorized)
		}
		if t.Status != models.TradeFundsInEscrow {
			return invalidState("ShipMerchandise", t.Status)
		}

		t.Status = models.TradeMerchandiseShipped
		if req.ReceiptURL != "" {
			t.ReceiptURL = req.ReceiptURL
		}
		if err := l.Trades().Update(ctx, t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Merchandise shipped",
		slog.String("trade_id", trade.TradeID),
		slog.String("seller_id", trade.SellerID))
	return trade, []Event{newEvent(EventMerchandiseIsShipped, trade, "")}, nil
}

// AcceptMerchandise confirms delivery: the trade total leaves the buyer's
// escrow account and lands on the seller's balance, completing the trade.
func (c *Controller) AcceptMerchandise(ctx context.Context, callerID string, req AcceptMerchandiseRequest) (*models.Trade, []Event, error) {
	var trade *models.Trade
	err := c.ledger.Atomically(ctx, func(ctx context.Context, l Ledger) error {
		t, err := l.Trades().GetByTradeID(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if callerID != t.BuyerID {
			return fmt.Errorf("the trader is not the buyer of this trade: %w", ErrUnauthorized)
		}
		if t.Status != models.TradeMerchandiseShipped {
			return invalidState("AcceptMerchandise", t.Status)
		}

		accounts, err := l.EscrowAccounts().GetByTrader(ctx, t.BuyerID)
		if err != nil {
			return fmt.Errorf("failed to query escrow accounts: %w", err)
		}
		if len(accounts) == 0 {
			return ErrEscrowAccountNotFound
		}
		if err := c.accounts.Debit(ctx, l, accounts[0], t.Total); err != nil {
			return err
		}

		seller, err := l.Traders().GetByID(ctx, t.SellerID)
		if err != nil {
			return fmt.Errorf("failed to resolve seller %s: %w", t.SellerID, err)
		}
		seller.Balance += t.Total
		if err := l.Traders().Update(ctx, seller); err != nil {
			return err
		}

		t.Status = models.TradeMerchandiseAccepted
		if err := l.Trades().Update(ctx, t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Merchandise accepted, seller paid",
		slog.String("trade_id", trade.TradeID),
		slog.String("seller_id", trade.SellerID),
		slog.Int64("total", trade.Total))
	return trade, []Event{newEvent(EventBuyerAcceptedMerchandise, trade, "")}, nil
}

// CancelTrade terminates a trade that has not shipped yet. Either party may
// cancel; when funds already sit in escrow they flow back to the buyer in
// the same unit of work.
func (c *Controller) CancelTrade(ctx context.Context, callerID string, req CancelTradeRequest) (*models.Trade, []Event, error) {
	var trade *models.Trade
	err := c.ledger.Atomically(ctx, func(ctx context.Context, l Ledger) error {
		t, err := l.Trades().GetByTradeID(ctx, req.TradeID)
		if err != nil {
			return err
		}
		if callerID != t.BuyerID && callerID != t.SellerID {
			return fmt.Errorf("the trader is not part of the trade: %w", ErrUnauthorized)
		}
		if !t.Status.Cancellable() {
			return invalidState("CancelTrade", t.Status)
		}

		if t.Status == models.TradeFundsInEscrow {
			accounts, err := l.EscrowAccounts().GetByTrader(ctx, t.BuyerID)
			if err != nil {
				return fmt.Errorf("failed to query escrow accounts: %w", err)
			}
			if len(accounts) == 0 {
				return ErrEscrowAccountNotFound
			}
			if err := c.accounts.Debit(ctx, l, accounts[0], t.Total); err != nil {
				return err
			}
			buyer, err := l.Traders().GetByID(ctx, t.BuyerID)
			if err != nil {
				return fmt.Errorf("failed to resolve buyer %s: %w", t.BuyerID, err)
			}
			buyer.Balance += t.Total
			if err := l.Traders().Update(ctx, buyer); err != nil {
				return err
			}
		}

		if callerID == t.BuyerID {
			t.Status = models.TradeCancelledByBuyer
		} else {
			t.Status = models.TradeCancelledBySeller
		}
		t.CancelledByID = callerID
		if err := l.Trades().Update(ctx, t); err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Trade cancelled",
		slog.String("trade_id", trade.TradeID),
		slog.String("trader_id", callerID),
		slog.String("status", string(trade.Status)))
	return trade, []Event{newEvent(EventTraderCancelledTrade, trade, callerID)}, nil
}

// moveFundsToEscrow is the shared fund movement behind PayEscrow and the
// auto-pay path of AgreeTerms: debit the buyer, credit the buyer's escrow
// account (created on first use) and advance the trade to STEP_3.
func (c *Controller) moveFundsToEscrow(ctx context.Context, l Ledger, t *models.Trade) error {
	buyer, err := l.Traders().GetByID(ctx, t.BuyerID)
	if err != nil {
		return fmt.Errorf("failed to resolve buyer %s: %w", t.BuyerID, err)
	}
	if buyer.Balance < t.Total {
		return fmt.Errorf("the buyer has insufficient funds: %w", ErrInsufficientFunds)
	}

	account, err := c.accounts.Ensure(ctx, l, buyer, t.Total, "")
	if err != nil {
		return err
	}

	buyer.Balance -= t.Total
	t.EscrowAccountID = account.AccountID
	t.Status = models.TradeFundsInEscrow

	if err := l.Traders().Update(ctx, buyer); err != nil {
		return err
	}
	return l.Trades().Update(ctx, t)
}
