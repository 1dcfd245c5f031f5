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
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/domain/payment"
)

var timeNow = time.Now

type PaymentUseCaseCfg struct {
	Repo       payment.Repo
	Transactor domain.Transactor
	Locker     domain.Locker
}

type impl struct {
	repo   payment.Repo
	tx     domain.Transactor
	locker domain.Locker
	met    metrics.Service
}

func New(cfg *PaymentUseCaseCfg) payment.UseCase {
	return &impl{
		repo:   cfg.Repo,
		tx:     cfg.Transactor,
		locker: cfg.Locker,
		met:    metrics.New("payment"),
	}
}

func (im *impl) load(c ctx.Ctx, address domain.Address) (*payment.Account, error) {
	acc, err := im.repo.FindOne(c, address)
	if errors.Is(err, domain.ErrNotFound) {
		return &payment.Account{Address: address.ToLower(), Balance: "0"}, nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "address": address}).Error("failed to repo.FindOne")
		return nil, err
	}
	return acc, nil
}

func (im *impl) adjust(c ctx.Ctx, address domain.Address, delta *big.Int) (*payment.Account, error) {
	acc, err := im.load(c, address)
	if err != nil {
		return nil, err
	}

	bal := new(big.Int).Add(acc.BalanceInt(), delta)
	if bal.Sign() < 0 {
		return nil, xerrors.Errorf("%w: %s has %s, needs %s", domain.ErrInsufficientFunds, address, acc.Balance, new(big.Int).Neg(delta))
	}

	acc.Balance = bal.String()
	acc.UpdatedAt = timeNow()
	if err := im.repo.Upsert(c, acc); err != nil {
		c.WithFields(log.Fields{"err": err, "address": address}).Error("failed to repo.Upsert")
		return nil, xerrors.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}
	return acc, nil
}

func validAmount(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}

// Collect debits from inside the caller's transaction
func (im *impl) Collect(c ctx.Ctx, from domain.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return domain.ErrInvalidAmount
	}
	if _, err := im.adjust(c, from, new(big.Int).Neg(amount)); err != nil {
		im.met.BumpSum("collect.err", 1)
		return err
	}
	im.met.BumpSum("collect", 1)
	return nil
}

// Pay credits from inside the caller's transaction
func (im *impl) Pay(c ctx.Ctx, to domain.Address, amount *big.Int) error {
	if !validAmount(amount) {
		return domain.ErrInvalidAmount
	}
	if !to.IsValid() {
		return xerrors.Errorf("%w: invalid payee %q", domain.ErrTransferFailed, to)
	}
	if _, err := im.adjust(c, to, amount); err != nil {
		im.met.BumpSum("pay.err", 1)
		return err
	}
	im.met.BumpSum("pay", 1)
	return nil
}

func (im *impl) serialized(c ctx.Ctx, address domain.Address, fn func(ctx.Ctx) error) error {
	unlock, err := im.locker.Lock(c, keys.AccountLockKey(string(address)))
	if err != nil {
		return err
	}
	defer unlock()
	return im.tx.RunWithTransaction(c, fn)
}

func (im *impl) Deposit(c ctx.Ctx, to domain.Address, amount *big.Int) (*payment.Account, error) {
	if !validAmount(amount) {
		return nil, domain.ErrInvalidAmount
	}
	if !to.IsValid() {
		return nil, domain.ErrInvalidAddress
	}

	var res *payment.Account
	err := im.serialized(c, to, func(c ctx.Ctx) error {
		acc, err := im.adjust(c, to, amount)
		res = acc
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "to": to, "amount": amount}).Error("failed to deposit")
		return nil, err
	}
	return res, nil
}

func (im *impl) Withdraw(c ctx.Ctx, from domain.Address, amount *big.Int) (*payment.Account, error) {
	if !validAmount(amount) {
		return nil, domain.ErrInvalidAmount
	}

	var res *payment.Account
	err := im.serialized(c, from, func(c ctx.Ctx) error {
		acc, err := im.adjust(c, from, new(big.Int).Neg(amount))
		res = acc
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "from": from, "amount": amount}).Error("failed to withdraw")
		return nil, err
	}
	return res, nil
}

func (im *impl) Balance(c ctx.Ctx, address domain.Address) (*big.Int, error) {
	acc, err := im.load(c, address)
	if err != nil {
		return nil, err
	}
	return acc.BalanceInt(), nil
}
