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
	"github.com/x-xyz/treemarket/domain/reward"
)

var timeNow = time.Now

type TokenUseCaseCfg struct {
	Repo   reward.Repo
	Symbol string
}

type tokenImpl struct {
	repo   reward.Repo
	symbol string
	met    metrics.Service
}

func NewToken(cfg *TokenUseCaseCfg) reward.Token {
	return &tokenImpl{
		repo:   cfg.Repo,
		symbol: cfg.Symbol,
		met:    metrics.New("reward"),
	}
}

func (im *tokenImpl) state(c ctx.Ctx) (*reward.TokenState, error) {
	st, err := im.repo.FindToken(c, im.symbol)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.WithFields(log.Fields{"err": err, "symbol": im.symbol}).Error("failed to repo.FindToken")
		}
		return nil, err
	}
	return st, nil
}

// Create is idempotent: an existing token keeps its owner
func (im *tokenImpl) Create(c ctx.Ctx, owner domain.Address) (*reward.TokenState, error) {
	if st, err := im.state(c); err == nil {
		return st, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if !owner.IsValid() {
		return nil, domain.ErrInvalidAddress
	}

	st := &reward.TokenState{
		Symbol:      im.symbol,
		Owner:       owner.ToLower(),
		TotalSupply: "0",
		UpdatedAt:   timeNow(),
	}
	if err := im.repo.UpsertToken(c, st); err != nil {
		c.WithFields(log.Fields{"err": err, "token": st}).Error("failed to repo.UpsertToken")
		return nil, err
	}
	return st, nil
}

func (im *tokenImpl) Mint(c ctx.Ctx, caller, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if !to.IsValid() {
		return domain.ErrInvalidAddress
	}

	st, err := im.state(c)
	if err != nil {
		return err
	}
	if !st.Owner.Equals(caller) {
		return xerrors.Errorf("%w: %s is not the %s owner", domain.ErrUnauthorized, caller, im.symbol)
	}

	bal, err := im.balance(c, to)
	if err != nil {
		return err
	}
	now := timeNow()
	bal.Amount = new(big.Int).Add(bal.AmountInt(), amount).String()
	bal.UpdatedAt = now
	if err := im.repo.UpsertBalance(c, bal); err != nil {
		c.WithFields(log.Fields{"err": err, "balance": bal}).Error("failed to repo.UpsertBalance")
		return err
	}

	supply, _ := new(big.Int).SetString(st.TotalSupply, 10)
	if supply == nil {
		supply = new(big.Int)
	}
	st.TotalSupply = supply.Add(supply, amount).String()
	st.UpdatedAt = now
	if err := im.repo.UpsertToken(c, st); err != nil {
		c.WithFields(log.Fields{"err": err, "token": st}).Error("failed to repo.UpsertToken")
		return err
	}

	im.met.BumpSum("mint", 1)
	return nil
}

func (im *tokenImpl) balance(c ctx.Ctx, holder domain.Address) (*reward.Balance, error) {
	bal, err := im.repo.FindBalance(c, im.symbol, holder)
	if errors.Is(err, domain.ErrNotFound) {
		return &reward.Balance{Symbol: im.symbol, Holder: holder.ToLower(), Amount: "0"}, nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "holder": holder}).Error("failed to repo.FindBalance")
		return nil, err
	}
	return bal, nil
}

func (im *tokenImpl) BalanceOf(c ctx.Ctx, holder domain.Address) (*big.Int, error) {
	bal, err := im.balance(c, holder)
	if err != nil {
		return nil, err
	}
	return bal.AmountInt(), nil
}

func (im *tokenImpl) Owner(c ctx.Ctx) (domain.Address, error) {
	st, err := im.state(c)
	if err != nil {
		return "", err
	}
	return st.Owner, nil
}

func (im *tokenImpl) TransferOwnership(c ctx.Ctx, caller, newOwner domain.Address) error {
	st, err := im.state(c)
	if err != nil {
		return err
	}
	if !st.Owner.Equals(caller) {
		return domain.ErrUnauthorized
	}
	if !newOwner.IsValid() {
		return domain.ErrInvalidAddress
	}
	st.Owner = newOwner.ToLower()
	st.UpdatedAt = timeNow()
	if err := im.repo.UpsertToken(c, st); err != nil {
		c.WithFields(log.Fields{"err": err, "token": st}).Error("failed to repo.UpsertToken")
		return err
	}
	return nil
}
