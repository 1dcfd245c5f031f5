package memstore

import (
	"sort"

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

const defaultEventLimit = 100

type bidRepo struct{ s *Store }

func (s *Store) Bids() bid.Repo { return &bidRepo{s} }

func (r *bidRepo) FindOne(c ctx.Ctx, key domain.AssetKey) (*bid.Bid, error) {
	var (
		b  bid.Bid
		ok bool
	)
	r.s.read(func(t *tables) { b, ok = t.bids[domain.NewAssetKey(key.Contract, key.TokenId)] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *bidRepo) FindAll(c ctx.Ctx, opts ...bid.FindAllOptionsFunc) ([]*bid.Bid, error) {
	options, err := bid.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	res := []*bid.Bid{}
	r.s.read(func(t *tables) {
		for _, b := range t.bids {
			if options.Contract != nil && !b.Contract.Equals(*options.Contract) {
				continue
			}
			if options.Bidder != nil && !b.Bidder.Equals(*options.Bidder) {
				continue
			}
			b := b
			res = append(res, &b)
		}
	})
	sort.Slice(res, func(i, j int) bool { return res[i].UpdatedAt.After(res[j].UpdatedAt) })
	start, end := paginate(len(res), options.Offset, options.Limit)
	return res[start:end], nil
}

func (r *bidRepo) Upsert(c ctx.Ctx, b *bid.Bid) error {
	b.Contract = b.Contract.ToLower()
	b.Bidder = b.Bidder.ToLower()
	r.s.write(c, func(t *tables) { t.bids[b.Key()] = *b })
	return nil
}

func (r *bidRepo) Remove(c ctx.Ctx, key domain.AssetKey) error {
	r.s.write(c, func(t *tables) { delete(t.bids, domain.NewAssetKey(key.Contract, key.TokenId)) })
	return nil
}

type escrowRepo struct{ s *Store }

func (s *Store) Escrows() escrow.Repo { return &escrowRepo{s} }

func (r *escrowRepo) FindOne(c ctx.Ctx, key domain.AssetKey) (*escrow.Entry, error) {
	var (
		e  escrow.Entry
		ok bool
	)
	r.s.read(func(t *tables) { e, ok = t.escrows[domain.NewAssetKey(key.Contract, key.TokenId)] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (r *escrowRepo) FindAll(c ctx.Ctx) ([]*escrow.Entry, error) {
	res := []*escrow.Entry{}
	r.s.read(func(t *tables) {
		for _, e := range t.escrows {
			e := e
			res = append(res, &e)
		}
	})
	return res, nil
}

func (r *escrowRepo) Insert(c ctx.Ctx, e *escrow.Entry) error {
	e.Contract = e.Contract.ToLower()
	e.Depositor = e.Depositor.ToLower()
	var err error
	r.s.write(c, func(t *tables) {
		if _, ok := t.escrows[e.Key()]; ok {
			err = domain.ErrConflict
			return
		}
		t.escrows[e.Key()] = *e
	})
	return err
}

func (r *escrowRepo) Remove(c ctx.Ctx, key domain.AssetKey) error {
	r.s.write(c, func(t *tables) { delete(t.escrows, domain.NewAssetKey(key.Contract, key.TokenId)) })
	return nil
}

type accountRepo struct{ s *Store }

func (s *Store) Accounts() payment.Repo { return &accountRepo{s} }

func (r *accountRepo) FindOne(c ctx.Ctx, address domain.Address) (*payment.Account, error) {
	var (
		a  payment.Account
		ok bool
	)
	r.s.read(func(t *tables) { a, ok = t.accounts[address.ToLower()] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) Upsert(c ctx.Ctx, a *payment.Account) error {
	a.Address = a.Address.ToLower()
	r.s.write(c, func(t *tables) { t.accounts[a.Address] = *a })
	return nil
}

type treasuryRepo struct{ s *Store }

func (s *Store) Treasury() treasury.Repo { return &treasuryRepo{s} }

func (r *treasuryRepo) Get(c ctx.Ctx) (*treasury.Config, error) {
	var cfg *treasury.Config
	r.s.read(func(t *tables) {
		if t.treasury != nil {
			v := *t.treasury
			cfg = &v
		}
	})
	if cfg == nil {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

func (r *treasuryRepo) Upsert(c ctx.Ctx, cfg *treasury.Config) error {
	cfg.Owner = cfg.Owner.ToLower()
	cfg.Treasury = cfg.Treasury.ToLower()
	v := *cfg
	r.s.write(c, func(t *tables) { t.treasury = &v })
	return nil
}

type rewardRepo struct{ s *Store }

func (s *Store) Rewards() reward.Repo { return &rewardRepo{s} }

func balanceKey(symbol string, holder domain.Address) string {
	return symbol + ":" + holder.ToLowerStr()
}

func (r *rewardRepo) FindToken(c ctx.Ctx, symbol string) (*reward.TokenState, error) {
	var (
		st reward.TokenState
		ok bool
	)
	r.s.read(func(t *tables) { st, ok = t.rewardTokens[symbol] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (r *rewardRepo) UpsertToken(c ctx.Ctx, st *reward.TokenState) error {
	st.Owner = st.Owner.ToLower()
	r.s.write(c, func(t *tables) { t.rewardTokens[st.Symbol] = *st })
	return nil
}

func (r *rewardRepo) FindBalance(c ctx.Ctx, symbol string, holder domain.Address) (*reward.Balance, error) {
	var (
		b  reward.Balance
		ok bool
	)
	r.s.read(func(t *tables) { b, ok = t.rewardBalances[balanceKey(symbol, holder)] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *rewardRepo) UpsertBalance(c ctx.Ctx, b *reward.Balance) error {
	b.Holder = b.Holder.ToLower()
	r.s.write(c, func(t *tables) { t.rewardBalances[balanceKey(b.Symbol, b.Holder)] = *b })
	return nil
}

type contractRepo struct{ s *Store }

func (s *Store) Contracts() asset.ContractRepo { return &contractRepo{s} }

func (r *contractRepo) FindOne(c ctx.Ctx, address domain.Address) (*asset.ContractInfo, error) {
	var (
		info asset.ContractInfo
		ok   bool
	)
	r.s.read(func(t *tables) { info, ok = t.contracts[address.ToLower()] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &info, nil
}

func (r *contractRepo) Upsert(c ctx.Ctx, info *asset.ContractInfo) error {
	info.Address = info.Address.ToLower()
	r.s.write(c, func(t *tables) { t.contracts[info.Address] = *info })
	return nil
}

type holdingRepo struct{ s *Store }

func (s *Store) Holdings() asset.HoldingRepo { return &holdingRepo{s} }

func normalizeHoldingId(id asset.HoldingId) asset.HoldingId {
	return asset.HoldingId{Contract: id.Contract.ToLower(), TokenId: id.TokenId, Owner: id.Owner.ToLower()}
}

func (r *holdingRepo) FindOne(c ctx.Ctx, id asset.HoldingId) (*asset.Holding, error) {
	var (
		h  asset.Holding
		ok bool
	)
	r.s.read(func(t *tables) { h, ok = t.holdings[normalizeHoldingId(id)] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &h, nil
}

func (r *holdingRepo) FindByToken(c ctx.Ctx, key domain.AssetKey) ([]*asset.Holding, error) {
	res := []*asset.Holding{}
	r.s.read(func(t *tables) {
		for _, h := range t.holdings {
			if h.Contract.Equals(key.Contract) && h.TokenId == key.TokenId {
				h := h
				res = append(res, &h)
			}
		}
	})
	sort.Slice(res, func(i, j int) bool { return res[i].Owner < res[j].Owner })
	return res, nil
}

func (r *holdingRepo) Upsert(c ctx.Ctx, h *asset.Holding) error {
	h.Contract = h.Contract.ToLower()
	h.Owner = h.Owner.ToLower()
	r.s.write(c, func(t *tables) { t.holdings[h.ToId()] = *h })
	return nil
}

func (r *holdingRepo) Remove(c ctx.Ctx, id asset.HoldingId) error {
	r.s.write(c, func(t *tables) { delete(t.holdings, normalizeHoldingId(id)) })
	return nil
}

type approvalRepo struct{ s *Store }

func (s *Store) Approvals() asset.ApprovalRepo { return &approvalRepo{s} }

func normalizeApprovalId(id asset.ApprovalId) asset.ApprovalId {
	return asset.ApprovalId{Contract: id.Contract.ToLower(), Owner: id.Owner.ToLower(), Operator: id.Operator.ToLower()}
}

func (r *approvalRepo) FindOne(c ctx.Ctx, id asset.ApprovalId) (*asset.Approval, error) {
	var (
		a  asset.Approval
		ok bool
	)
	r.s.read(func(t *tables) { a, ok = t.approvals[normalizeApprovalId(id)] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *approvalRepo) Upsert(c ctx.Ctx, a *asset.Approval) error {
	a.Contract = a.Contract.ToLower()
	a.Owner = a.Owner.ToLower()
	a.Operator = a.Operator.ToLower()
	r.s.write(c, func(t *tables) { t.approvals[a.ToId()] = *a })
	return nil
}

type eventRepo struct{ s *Store }

func (s *Store) Events() event.Repo { return &eventRepo{s} }

func (r *eventRepo) Insert(c ctx.Ctx, e *event.Event) error {
	e.Contract = e.Contract.ToLower()
	e.Actor = e.Actor.ToLower()
	e.Counterparty = e.Counterparty.ToLower()
	r.s.write(c, func(t *tables) { t.events = append(t.events, *e) })
	return nil
}

// FindAll returns the newest events first
func (r *eventRepo) FindAll(c ctx.Ctx, opts ...event.FindAllOptionsFunc) ([]*event.Event, error) {
	options, err := event.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	res := []*event.Event{}
	r.s.read(func(t *tables) {
		for i := len(t.events) - 1; i >= 0; i-- {
			e := t.events[i]
			if options.Contract != nil && !e.Contract.Equals(*options.Contract) {
				continue
			}
			if options.TokenId != nil && e.TokenId != *options.TokenId {
				continue
			}
			if options.Type != nil && e.Type != *options.Type {
				continue
			}
			res = append(res, &e)
		}
	})
	options.Limit = ptr.Int32(ptr.Int32Value(options.Limit, defaultEventLimit))
	start, end := paginate(len(res), options.Offset, options.Limit)
	return res[start:end], nil
}

type trackerStateRepo struct{ s *Store }

func (s *Store) TrackerStates() domain.TrackerStateRepo { return &trackerStateRepo{s} }

func (r *trackerStateRepo) Get(c ctx.Ctx, id *domain.TrackerStateId) (*domain.TrackerState, error) {
	var (
		st domain.TrackerState
		ok bool
	)
	key := domain.TrackerStateId{ChainId: id.ChainId, Custody: id.Custody.ToLower(), Tag: id.Tag}
	r.s.read(func(t *tables) { st, ok = t.trackerStates[key] })
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (r *trackerStateRepo) Upsert(c ctx.Ctx, st *domain.TrackerState) error {
	st.Custody = st.Custody.ToLower()
	r.s.write(c, func(t *tables) { t.trackerStates[*st.ToId()] = *st })
	return nil
}
