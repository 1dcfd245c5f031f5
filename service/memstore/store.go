// Package memstore keeps every marketplace table in process memory. It backs local runs
// without mongo and the usecase tests.
package memstore

import (
	"context"
	"sync"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/ptr"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/domain/payment"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/domain/treasury"
)

type tables struct {
	bids           map[domain.AssetKey]bid.Bid
	escrows        map[domain.AssetKey]escrow.Entry
	accounts       map[domain.Address]payment.Account
	treasury       *treasury.Config
	rewardTokens   map[string]reward.TokenState
	rewardBalances map[string]reward.Balance
	contracts      map[domain.Address]asset.ContractInfo
	holdings       map[asset.HoldingId]asset.Holding
	approvals      map[asset.ApprovalId]asset.Approval
	events         []event.Event
	trackerStates  map[domain.TrackerStateId]domain.TrackerState
}

func newTables() tables {
	return tables{
		bids:           map[domain.AssetKey]bid.Bid{},
		escrows:        map[domain.AssetKey]escrow.Entry{},
		accounts:       map[domain.Address]payment.Account{},
		rewardTokens:   map[string]reward.TokenState{},
		rewardBalances: map[string]reward.Balance{},
		contracts:      map[domain.Address]asset.ContractInfo{},
		holdings:       map[asset.HoldingId]asset.Holding{},
		approvals:      map[asset.ApprovalId]asset.Approval{},
		trackerStates:  map[domain.TrackerStateId]domain.TrackerState{},
	}
}

func (t tables) clone() tables {
	res := newTables()
	for k, v := range t.bids {
		res.bids[k] = v
	}
	for k, v := range t.escrows {
		res.escrows[k] = v
	}
	for k, v := range t.accounts {
		res.accounts[k] = v
	}
	if t.treasury != nil {
		cfg := *t.treasury
		res.treasury = &cfg
	}
	for k, v := range t.rewardTokens {
		res.rewardTokens[k] = v
	}
	for k, v := range t.rewardBalances {
		res.rewardBalances[k] = v
	}
	for k, v := range t.contracts {
		res.contracts[k] = v
	}
	for k, v := range t.holdings {
		res.holdings[k] = v
	}
	for k, v := range t.approvals {
		res.approvals[k] = v
	}
	res.events = append([]event.Event{}, t.events...)
	for k, v := range t.trackerStates {
		res.trackerStates[k] = v
	}
	return res
}

type txKey struct{}

// Store serializes transactions and restores the tables when one fails.
// Writes outside a transaction wait for the running one, so a rollback only undoes its own writes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    tables
}

func New() *Store {
	return &Store{t: newTables()}
}

func (s *Store) inTx(c ctx.Ctx) bool {
	owner, _ := c.Value(txKey{}).(*Store)
	return owner == s
}

// RunWithTransaction joins the running transaction when c already belongs to one
func (s *Store) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	if s.inTx(c) {
		return fn(c)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.t.clone()
	s.mu.RUnlock()

	if err := fn(ctx.Wrap(c, context.WithValue(c.Context, txKey{}, s))); err != nil {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.t)
}

func (s *Store) write(c ctx.Ctx, fn func(t *tables)) {
	if !s.inTx(c) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.t)
}

// paginate applies offset and limit on an already sorted length n; limit 0 means no limit
func paginate(n int, offset, limit *int32) (int, int) {
	start := int(ptr.Int32Value(offset, 0))
	if start > n {
		start = n
	}
	end := n
	if l := int(ptr.Int32Value(limit, 0)); l > 0 && start+l < n {
		end = start + l
	}
	return start, end
}
