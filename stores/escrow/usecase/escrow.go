package usecase

import (
	"errors"
	"math/big"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/payment"
)

var timeNow = time.Now

type EscrowUseCaseCfg struct {
	Repo escrow.Repo
	Rail payment.Rail
}

type impl struct {
	repo escrow.Repo
	rail payment.Rail
}

// New returns a ledger that must be called inside the registry's transaction; it does not
// serialize by itself.
func New(cfg *EscrowUseCaseCfg) escrow.Ledger {
	return &impl{
		repo: cfg.Repo,
		rail: cfg.Rail,
	}
}

func (im *impl) Hold(c ctx.Ctx, key domain.AssetKey, depositor domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}

	if _, err := im.repo.FindOne(c, key); err == nil {
		return xerrors.Errorf("%w: escrow already held for %s", domain.ErrConflict, key)
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.FindOne")
		return err
	}

	if err := im.rail.Collect(c, depositor, amount); err != nil {
		c.WithFields(log.Fields{"err": err, "depositor": depositor, "amount": amount}).Warn("failed to rail.Collect")
		return err
	}

	entry := &escrow.Entry{
		Contract:  key.Contract,
		TokenId:   key.TokenId,
		Depositor: depositor,
		Amount:    amount.String(),
		CreatedAt: timeNow(),
	}
	if err := im.repo.Insert(c, entry); err != nil {
		c.WithFields(log.Fields{"err": err, "entry": entry}).Error("failed to repo.Insert")
		return err
	}
	return nil
}

func (im *impl) Refund(c ctx.Ctx, key domain.AssetKey) (*escrow.Entry, error) {
	entry, err := im.repo.FindOne(c, key)
	if err != nil {
		return nil, err
	}

	if amount := entry.AmountInt(); amount.Sign() > 0 {
		if err := im.rail.Pay(c, entry.Depositor, amount); err != nil {
			c.WithFields(log.Fields{"err": err, "entry": entry}).Error("failed to refund depositor")
			return nil, err
		}
	}

	if err := im.repo.Remove(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.Remove")
		return nil, err
	}
	return entry, nil
}

func (im *impl) Disburse(c ctx.Ctx, key domain.AssetKey, payouts []escrow.Payout) (*escrow.Entry, error) {
	entry, err := im.repo.FindOne(c, key)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	for _, p := range payouts {
		if p.Amount == nil || p.Amount.Sign() < 0 {
			return nil, domain.ErrInvalidAmount
		}
		total.Add(total, p.Amount)
	}
	if total.Cmp(entry.AmountInt()) != 0 {
		return nil, xerrors.Errorf("%w: held %s, paying %s", domain.ErrConservation, entry.Amount, total)
	}

	for _, p := range payouts {
		if p.Amount.Sign() == 0 {
			continue
		}
		if err := im.rail.Pay(c, p.To, p.Amount); err != nil {
			c.WithFields(log.Fields{"err": err, "to": p.To, "amount": p.Amount}).Error("failed to rail.Pay")
			return nil, err
		}
	}

	if err := im.repo.Remove(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to repo.Remove")
		return nil, err
	}
	return entry, nil
}

func (im *impl) Held(c ctx.Ctx, key domain.AssetKey) (*big.Int, error) {
	entry, err := im.repo.FindOne(c, key)
	if errors.Is(err, domain.ErrNotFound) {
		return new(big.Int), nil
	} else if err != nil {
		return nil, err
	}
	return entry.AmountInt(), nil
}

func (im *impl) TotalHeld(c ctx.Ctx) (*big.Int, error) {
	entries, err := im.repo.FindAll(c)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, e := range entries {
		total.Add(total, e.AmountInt())
	}
	return total, nil
}
