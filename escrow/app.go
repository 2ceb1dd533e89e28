package escrow

import (
	"context"
	"time"

	"github.com/payflow/escrow/escrow/database"
	"github.com/payflow/escrow/escrow/database/models"
	"github.com/payflow/escrow/escrow/database/repositories"
	"github.com/payflow/escrow/escrow/events"
	"github.com/payflow/escrow/escrow/logger"
	"github.com/payflow/escrow/escrow/services"
	"github.com/payflow/escrow/escrow/trading"
)

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App wires the ledger, the domain services and the outbound sink together
// and exposes the six transaction intents. Every intent runs the operation,
// forwards the produced events to the sink and logs the outcome.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB         *database.DB
	Ledger     *repositories.Ledger
	Initiation *trading.InitiationService
	Controller *trading.Controller
	Receipts   *services.ReceiptService
	Sink       events.Sink
}

// Setup builds the ledger and domain services on top of an opened database.
func (a *App) Setup(db *database.DB, sink events.Sink) {
	a.DB = db
	a.Ledger = repositories.NewLedger(db.BunDB())
	a.Initiation = trading.NewInitiationService(a.Ledger)
	a.Controller = trading.NewController(a.Ledger)
	if sink == nil {
		sink = events.LogSink{}
	}
	a.Sink = sink
}

func (a *App) StartTrade(ctx context.Context, callerID string, req trading.StartTradeRequest) (*models.Trade, error) {
	start := time.Now()
	trade, evts, err := a.Initiation.StartTrade(ctx, callerID, req)
	logger.LogTransition("StartTrade", tradeID(trade), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.Sink.Emit(ctx, evts...)
	return trade, nil
}

func (a *App) AgreeTerms(ctx context.Context, callerID string, req trading.AgreeTermsRequest) (*models.Trade, error) {
	start := time.Now()
	trade, evts, err := a.Controller.AgreeTerms(ctx, callerID, req)
	logger.LogTransition("AgreeTerms", req.TradeID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.Sink.Emit(ctx, evts...)
	return trade, nil
}

func (a *App) PayEscrow(ctx context.Context, callerID string, req trading.PayEscrowRequest) (*models.Trade, error) {
	start := time.Now()
	trade, evts, err := a.Controller.PayEscrow(ctx, callerID, req)
	logger.LogTransition("PayEscrow", req.TradeID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.Sink.Emit(ctx, evts...)
	return trade, nil
}

// ShipMerchandise uploads the optional receipt document before running the
// transition, so the stored URL is already valid when the trade advances.
func (a *App) ShipMerchandise(ctx context.Context, callerID string, req trading.ShipMerchandiseRequest, receipt []byte, contentType string) (*models.Trade, error) {
	if len(receipt) > 0 && a.Receipts != nil {
		url, err := a.Receipts.Upload(ctx, req.TradeID, receipt, contentType)
		if err != nil {
			return nil, err
		}
		req.ReceiptURL = url
	}

	start := time.Now()
	trade, evts, err := a.Controller.ShipMerchandise(ctx, callerID, req)
	logger.LogTransition("ShipMerchandise", req.TradeID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.Sink.Emit(ctx, evts...)
	return trade, nil
}

func (a *App) AcceptMerchandise(ctx context.Context, callerID string, req trading.AcceptMerchandiseRequest) (*models.Trade, error) {
	start := time.Now()
	trade, evts, err := a.Controller.AcceptMerchandise(ctx, callerID, req)
	logger.LogTransition("AcceptMerchandise", req.TradeID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.Sink.Emit(ctx, evts...)
	return trade, nil
}

func (a *App) CancelTrade(ctx context.Context, callerID string, req trading.CancelTradeRequest) (*models.Trade, error) {
	start := time.Now()
	trade, evts, err := a.Controller.CancelTrade(ctx, callerID, req)
	logger.LogTransition("CancelTrade", req.TradeID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	a.Sink.Emit(ctx, evts...)
	return trade, nil
}

func tradeID(trade *models.Trade) string {
	if trade == nil {
		return ""
	}
	return trade.TradeID
}
