package events

import (
	"context"
	"log/slog"

	"github.com/payflow/escrow/escrow/trading"
)

// Sink receives domain events produced by completed operations. Emission is
// one-way: implementations never report delivery back to the caller and must
// not fail the operation that produced the events.
type Sink interface {
	Emit(ctx context.Context, evts ...trading.Event)
}

// LogSink writes events to the structured log. It is the fallback sink when
// no event store is configured.
type LogSink struct{}

func (LogSink) Emit(_ context.Context, evts ...trading.Event) {
	for _, evt := range evts {
		slog.Info("Domain event",
			slog.String("type", "sys"),
			slog.String("event", string(evt.Type)),
			slog.String("trade_id", evt.TradeID),
			slog.String("trader_id", evt.TraderID))
	}
}
