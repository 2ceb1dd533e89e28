package trading

import (
	"context"
	"fmt"

	"github.com/payflow/escrow/escrow/database/models"
)

// memLedger is an in-memory record store with the same all-or-nothing
// semantics as the bun-backed ledger: Atomically snapshots the state and
// restores it when the unit of work fails, so a rejected operation leaves
// every record untouched.
type memLedger struct {
	traders  map[string]*models.Trader
	trades   map[string]*models.Trade
	accounts []*models.EscrowAccount
	items    map[string]*models.Item
}

func newMemLedger() *memLedger {
	return &memLedger{
		traders: make(map[string]*models.Trader),
		trades:  make(map[string]*models.Trade),
		items:   make(map[string]*models.Item),
	}
}

func (m *memLedger) Traders() TraderRepository               { return memTraders{m} }
func (m *memLedger) Trades() TradeRepository                 { return memTrades{m} }
func (m *memLedger) EscrowAccounts() EscrowAccountRepository { return memAccounts{m} }
func (m *memLedger) Items() ItemRepository                   { return memItems{m} }

func (m *memLedger) Atomically(ctx context.Context, fn func(ctx context.Context, l Ledger) error) error {
	snap := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memLedger) snapshot() *memLedger {
	snap := newMemLedger()
	for id, tr := range m.traders {
		c := *tr
		snap.traders[id] = &c
	}
	for id, t := range m.trades {
		c := *t
		c.ItemIDs = append([]string(nil), t.ItemIDs...)
		snap.trades[id] = &c
	}
	for _, a := range m.accounts {
		c := *a
		snap.accounts = append(snap.accounts, &c)
	}
	for id, i := range m.items {
		c := *i
		snap.items[id] = &c
	}
	return snap
}

func (m *memLedger) restore(snap *memLedger) {
	m.traders = snap.traders
	m.trades = snap.trades
	m.accounts = snap.accounts
	m.items = snap.items
}

// totalMoney sums every trader and escrow balance; the conservation
// invariant says no operation may change it.
func (m *memLedger) totalMoney() int64 {
	var total int64
	for _, tr := range m.traders {
		total += tr.Balance
	}
	for _, a := range m.accounts {
		total += a.Balance
	}
	return total
}

type memTraders struct{ m *memLedger }

func (r memTraders) GetByID(_ context.Context, id string) (*models.Trader, error) {
	trader, ok := r.m.traders[id]
	if !ok {
		return nil, ErrTraderNotFound
	}
	return trader, nil
}

func (r memTraders) Create(_ context.Context, trader *models.Trader) error {
	if _, ok := r.m.traders[trader.ID]; ok {
		return fmt.Errorf("trader %s already exists", trader.ID)
	}
	r.m.traders[trader.ID] = trader
	return nil
}

func (r memTraders) Update(_ context.Context, trader *models.Trader) error {
	if _, ok := r.m.traders[trader.ID]; !ok {
		return ErrTraderNotFound
	}
	r.m.traders[trader.ID] = trader
	return nil
}

func (r memTraders) UpdateAll(ctx context.Context, traders []*models.Trader) error {
	for _, trader := range traders {
		if err := r.Update(ctx, trader); err != nil {
			return err
		}
	}
	return nil
}

type memTrades struct{ m *memLedger }

func (r memTrades) GetByTradeID(_ context.Context, tradeID string) (*models.Trade, error) {
	trade, ok := r.m.trades[tradeID]
	if !ok {
		return nil, ErrTradeNotFound
	}
	return trade, nil
}

func (r memTrades) Add(_ context.Context, trade *models.Trade) error {
	if _, ok := r.m.trades[trade.TradeID]; ok {
		return fmt.Errorf("trade %s already exists", trade.TradeID)
	}
	r.m.trades[trade.TradeID] = trade
	return nil
}

func (r memTrades) Update(_ context.Context, trade *models.Trade) error {
	if _, ok := r.m.trades[trade.TradeID]; !ok {
		return ErrTradeNotFound
	}
	r.m.trades[trade.TradeID] = trade
	return nil
}

type memAccounts struct{ m *memLedger }

func (r memAccounts) GetByTrader(_ context.Context, traderID string) ([]*models.EscrowAccount, error) {
	var accounts []*models.EscrowAccount
	for _, a := range r.m.accounts {
		if a.TraderID == traderID {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (r memAccounts) Add(_ context.Context, account *models.EscrowAccount) error {
	account.ID = int64(len(r.m.accounts) + 1)
	r.m.accounts = append(r.m.accounts, account)
	return nil
}

func (r memAccounts) Update(_ context.Context, account *models.EscrowAccount) error {
	for i, a := range r.m.accounts {
		if a.AccountID == account.AccountID {
			r.m.accounts[i] = account
			return nil
		}
	}
	return ErrEscrowAccountNotFound
}

type memItems struct{ m *memLedger }

func (r memItems) GetByIDs(_ context.Context, ids []string) ([]*models.Item, error) {
	items := make([]*models.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.m.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Test fixtures in the shape of the onboarding records.

func seedTrader(m *memLedger, id string, balance int64) *models.Trader {
	trader := &models.Trader{
		ID:        id,
		FirstName: "Test",
		LastName:  id,
		Email:     id + "@example.com",
		Balance:   balance,
	}
	m.traders[id] = trader
	return trader
}

func seedItem(m *memLedger, id string, price int64) *models.Item {
	item := &models.Item{
		ID:         id,
		Name:       "item " + id,
		SalesPrice: price,
	}
	m.items[id] = item
	return item
}

func seedAccount(m *memLedger, accountID, traderID string, balance int64) *models.EscrowAccount {
	account := &models.EscrowAccount{
		ID:        int64(len(m.accounts) + 1),
		AccountID: accountID,
		TraderID:  traderID,
		Balance:   balance,
	}
	m.accounts = append(m.accounts, account)
	return account
}
