package usecase

import (
	"errors"
	"math/big"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/metrics"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/domain/treasury"
)

var timeNow = time.Now

type BidUseCaseCfg struct {
	Repo       bid.Repo
	Ledger     escrow.Ledger
	Assets     asset.Resolver
	Treasury   treasury.UseCase
	Emitter    reward.Emitter
	Events     event.UseCase
	Locker     domain.Locker
	Transactor domain.Transactor
	// Operator is the account sellers approve before accepting
	Operator domain.Address
}

type impl struct {
	repo     bid.Repo
	ledger   escrow.Ledger
	assets   asset.Resolver
	treasury treasury.UseCase
	emitter  reward.Emitter
	events   event.UseCase
	locker   domain.Locker
	tx       domain.Transactor
	operator domain.Address
	met      metrics.Service
}

func New(cfg *BidUseCaseCfg) bid.UseCase {
	return &impl{
		repo:     cfg.Repo,
		ledger:   cfg.Ledger,
		assets:   cfg.Assets,
		treasury: cfg.Treasury,
		emitter:  cfg.Emitter,
		events:   cfg.Events,
		locker:   cfg.Locker,
		tx:       cfg.Transactor,
		operator: cfg.Operator,
		met:      metrics.New("bid"),
	}
}

type recordFunc func(c ctx.Ctx, e *event.Event) error

// serialized runs fn under lockKey inside one transaction. Events recorded through fn are
// dispatched only after the commit.
func (im *impl) serialized(c ctx.Ctx, op, lockKey string, fn func(c ctx.Ctx, record recordFunc) error) error {
	defer im.met.BumpTime("time", "op", op).End()

	unlock, err := im.locker.Lock(c, lockKey)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": lockKey}).Error("failed to locker.Lock")
		return err
	}
	defer unlock()

	var pending []*event.Event
	err = im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		// the driver may retry the whole function
		pending = pending[:0]
		return fn(c, func(c ctx.Ctx, e *event.Event) error {
			if err := im.events.Record(c, e); err != nil {
				return err
			}
			pending = append(pending, e)
			return nil
		})
	})
	if err != nil {
		im.met.BumpSum("err", 1, "op", op)
		return err
	}

	im.met.BumpSum("ok", 1, "op", op)
	im.events.Dispatch(c, pending)
	return nil
}

func lockKey(key domain.AssetKey) string {
	return keys.BidLockKey(string(key.Contract), key.TokenId.String())
}

func (im *impl) active(c ctx.Ctx, key domain.AssetKey) (*bid.Bid, error) {
	cur, err := im.repo.FindOne(c, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, xerrors.Errorf("%w: %s", domain.ErrNoActiveBid, key)
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.FindOne")
		return nil, err
	}
	if !cur.IsActive() {
		return nil, xerrors.Errorf("%w: %s", domain.ErrNoActiveBid, key)
	}
	return cur, nil
}

func (im *impl) PlaceBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey, price, attached *big.Int) (*bid.Bid, error) {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if !caller.IsValid() {
		return nil, domain.ErrInvalidAddress
	}
	if price == nil || price.Sign() <= 0 {
		return nil, xerrors.Errorf("%w: price must be positive", domain.ErrInvalidAmount)
	}
	if attached == nil || attached.Cmp(price) != 0 {
		return nil, xerrors.Errorf("%w: attached %s, price %s", domain.ErrInvalidAmount, domain.AmountString(attached), price)
	}

	var placed *bid.Bid
	err := im.serialized(c, "placeBid", lockKey(key), func(c ctx.Ctx, record recordFunc) error {
		if _, err := im.assets.Resolve(c, key.Contract); err != nil {
			return err
		}

		now := timeNow()
		cur, err := im.repo.FindOne(c, key)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.FindOne")
			return err
		}

		if cur != nil && cur.IsActive() {
			if price.Cmp(cur.PriceInt()) <= 0 {
				return xerrors.Errorf("%w: active bid is %s", domain.ErrBidTooLow, cur.Price)
			}
			refunded, err := im.ledger.Refund(c, key)
			if err != nil {
				c.WithFields(log.Fields{"err": err, "key": key, "previous": cur.Bidder}).Error("failed to ledger.Refund")
				return err
			}
			if _, err := im.emitter.Emit(c, reward.Transition{
				Kind:     reward.TransitionReplaced,
				Key:      key,
				Bidder:   caller,
				Previous: cur.Bidder,
				Price:    price,
			}); err != nil {
				return err
			}
			if err := record(c, &event.Event{
				Type:         event.TypeBidRefunded,
				Contract:     key.Contract,
				TokenId:      key.TokenId,
				Actor:        caller,
				Counterparty: refunded.Depositor,
				Price:        refunded.Amount,
			}); err != nil {
				return err
			}
		}

		if err := im.ledger.Hold(c, key, caller, price); err != nil {
			c.WithFields(log.Fields{"err": err, "key": key, "bidder": caller}).Warn("failed to ledger.Hold")
			return err
		}

		b := &bid.Bid{
			Contract:  key.Contract,
			TokenId:   key.TokenId,
			Bidder:    caller.ToLower(),
			Price:     price.String(),
			Escrowed:  price.String(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := im.repo.Upsert(c, b); err != nil {
			c.WithFields(log.Fields{"err": err, "bid": b}).Error("failed to repo.Upsert")
			return err
		}

		if _, err := im.emitter.Emit(c, reward.Transition{
			Kind:   reward.TransitionPlaced,
			Key:    key,
			Bidder: caller,
			Price:  price,
		}); err != nil {
			return err
		}
		if err := record(c, &event.Event{
			Type:     event.TypeBidPlaced,
			Contract: key.Contract,
			TokenId:  key.TokenId,
			Actor:    caller,
			Price:    b.Price,
		}); err != nil {
			return err
		}

		placed = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (im *impl) GetBid(c ctx.Ctx, key domain.AssetKey) (*bid.Bid, error) {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	b, err := im.repo.FindOne(c, key)
	if errors.Is(err, domain.ErrNotFound) {
		return bid.None(key), nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.FindOne")
		return nil, err
	}
	return b, nil
}

// release refunds the active bid and clears it
func (im *impl) release(c ctx.Ctx, cur *bid.Bid) error {
	key := cur.Key()
	if _, err := im.ledger.Refund(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to ledger.Refund")
		return err
	}
	if err := im.repo.Remove(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.Remove")
		return err
	}
	return nil
}

func (im *impl) CancelBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey) error {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return err
	}

	return im.serialized(c, "cancelBid", lockKey(key), func(c ctx.Ctx, record recordFunc) error {
		cur, err := im.active(c, key)
		if err != nil {
			return err
		}
		if !cur.Bidder.Equals(caller) {
			return xerrors.Errorf("%w: only the bidder may cancel", domain.ErrUnauthorized)
		}
		if err := im.release(c, cur); err != nil {
			return err
		}
		if _, err := im.emitter.Emit(c, reward.Transition{
			Kind:   reward.TransitionCancelled,
			Key:    key,
			Bidder: cur.Bidder,
			Price:  cur.PriceInt(),
		}); err != nil {
			return err
		}
		return record(c, &event.Event{
			Type:     event.TypeBidCancelled,
			Contract: key.Contract,
			TokenId:  key.TokenId,
			Actor:    caller,
			Price:    cur.Price,
		})
	})
}

// owned resolves the asset and checks caller may sell it
func (im *impl) owned(c ctx.Ctx, caller domain.Address, key domain.AssetKey) (asset.Contract, error) {
	token, err := im.assets.Resolve(c, key.Contract)
	if err != nil {
		return nil, err
	}
	ok, err := token.IsOwner(c, caller, key.TokenId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, xerrors.Errorf("%w: %s does not own %s", domain.ErrUnauthorized, caller, key)
	}
	return token, nil
}

func (im *impl) AcceptBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey, expectedPrice *big.Int) (*bid.Settlement, error) {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var settlement *bid.Settlement
	err := im.serialized(c, "acceptBid", lockKey(key), func(c ctx.Ctx, record recordFunc) error {
		cur, err := im.active(c, key)
		if err != nil {
			return err
		}
		price := cur.PriceInt()
		if expectedPrice == nil || expectedPrice.Cmp(price) != 0 {
			return xerrors.Errorf("%w: active bid is %s", domain.ErrPriceMismatch, cur.Price)
		}

		token, err := im.owned(c, caller, key)
		if err != nil {
			return err
		}
		approved, err := token.IsApprovedForAll(c, caller, im.operator)
		if err != nil {
			return err
		}
		if !approved {
			return domain.ErrNotApproved
		}

		if err := token.Transfer(c, caller, cur.Bidder, key.TokenId, big.NewInt(1)); err != nil {
			c.WithFields(log.Fields{"err": err, "key": key, "from": caller, "to": cur.Bidder}).Warn("failed to token.Transfer")
			if errors.Is(err, domain.ErrTransferFailed) {
				return err
			}
			return xerrors.Errorf("%w: %v", domain.ErrTransferFailed, err)
		}

		cfg, err := im.treasury.Get(c)
		if err != nil {
			c.WithField("err", err).Error("failed to treasury.Get")
			return err
		}
		fee := domain.Bps(price, cfg.FeeBps)
		proceeds := new(big.Int).Sub(price, fee)
		if _, err := im.ledger.Disburse(c, key, []escrow.Payout{
			{To: cfg.Treasury, Amount: fee},
			{To: caller, Amount: proceeds},
		}); err != nil {
			c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to ledger.Disburse")
			return err
		}

		if err := im.repo.Remove(c, key); err != nil {
			c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.Remove")
			return err
		}

		if _, err := im.emitter.Emit(c, reward.Transition{
			Kind:   reward.TransitionAccepted,
			Key:    key,
			Bidder: cur.Bidder,
			Seller: caller,
			Price:  price,
		}); err != nil {
			return err
		}
		if err := record(c, &event.Event{
			Type:         event.TypeBidAccepted,
			Contract:     key.Contract,
			TokenId:      key.TokenId,
			Actor:        caller,
			Counterparty: cur.Bidder,
			Price:        cur.Price,
		}); err != nil {
			return err
		}

		settlement = &bid.Settlement{
			Bid:      *cur,
			Seller:   caller.ToLower(),
			Treasury: cfg.Treasury,
			Fee:      fee.String(),
			Proceeds: proceeds.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

func (im *impl) RejectBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey) error {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return err
	}

	return im.serialized(c, "rejectBid", lockKey(key), func(c ctx.Ctx, record recordFunc) error {
		cur, err := im.active(c, key)
		if err != nil {
			return err
		}
		if _, err := im.owned(c, caller, key); err != nil {
			return err
		}
		if err := im.release(c, cur); err != nil {
			return err
		}
		if _, err := im.emitter.Emit(c, reward.Transition{
			Kind:   reward.TransitionRejected,
			Key:    key,
			Bidder: cur.Bidder,
			Seller: caller,
			Price:  cur.PriceInt(),
		}); err != nil {
			return err
		}
		return record(c, &event.Event{
			Type:         event.TypeBidRejected,
			Contract:     key.Contract,
			TokenId:      key.TokenId,
			Actor:        caller,
			Counterparty: cur.Bidder,
			Price:        cur.Price,
		})
	})
}

func (im *impl) List(c ctx.Ctx, opts ...bid.FindAllOptionsFunc) ([]*bid.Bid, error) {
	return im.repo.FindAll(c, opts...)
}

func (im *impl) UpdateTreasuryAddress(c ctx.Ctx, caller domain.Address, newAddress domain.Address) error {
	return im.serialized(c, "updateTreasury", keys.RedisKey(keys.PfxTreasury), func(c ctx.Ctx, record recordFunc) error {
		cfg, err := im.treasury.UpdateTreasury(c, caller, newAddress)
		if err != nil {
			return err
		}
		return record(c, &event.Event{
			Type:         event.TypeTreasuryUpdated,
			Actor:        caller,
			Counterparty: cfg.Treasury,
		})
	})
}

func (im *impl) Treasury(c ctx.Ctx) (domain.Address, error) {
	cfg, err := im.treasury.Get(c)
	if err != nil {
		return "", err
	}
	return cfg.Treasury, nil
}
