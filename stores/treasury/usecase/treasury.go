package usecase

import (
	"errors"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/treasury"
)

var timeNow = time.Now

type impl struct {
	repo treasury.Repo
}

func New(repo treasury.Repo) treasury.UseCase {
	return &impl{repo: repo}
}

func (im *impl) Bootstrap(c ctx.Ctx, owner, treasuryAddr domain.Address, feeBps uint32) (*treasury.Config, error) {
	if cfg, err := im.repo.Get(c); err == nil {
		c.WithField("config", cfg).Info("treasury already bootstrapped")
		return cfg, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.WithField("err", err).Error("failed to repo.Get")
		return nil, err
	}

	if !owner.IsValid() || !treasuryAddr.IsValid() {
		return nil, domain.ErrInvalidAddress
	}
	if feeBps > treasury.MaxFeeBps {
		return nil, xerrors.Errorf("%w: fee %d bps", domain.ErrBadParamInput, feeBps)
	}

	cfg := &treasury.Config{
		Owner:     owner.ToLower(),
		Treasury:  treasuryAddr.ToLower(),
		FeeBps:    feeBps,
		UpdatedAt: timeNow(),
	}
	if err := im.repo.Upsert(c, cfg); err != nil {
		c.WithFields(log.Fields{"err": err, "config": cfg}).Error("failed to repo.Upsert")
		return nil, err
	}
	return cfg, nil
}

func (im *impl) Get(c ctx.Ctx) (*treasury.Config, error) {
	return im.repo.Get(c)
}

// UpdateTreasury must run inside the caller's transaction
func (im *impl) UpdateTreasury(c ctx.Ctx, caller, newTreasury domain.Address) (*treasury.Config, error) {
	cfg, err := im.repo.Get(c)
	if err != nil {
		c.WithField("err", err).Error("failed to repo.Get")
		return nil, err
	}
	if !cfg.CanUpdate(caller) {
		return nil, xerrors.Errorf("%w: %s may not update treasury", domain.ErrUnauthorized, caller)
	}
	if !newTreasury.IsValid() {
		return nil, xerrors.Errorf("%w: %q", domain.ErrInvalidAddress, newTreasury)
	}

	cfg.Treasury = newTreasury.ToLower()
	cfg.UpdatedAt = timeNow()
	if err := im.repo.Upsert(c, cfg); err != nil {
		c.WithFields(log.Fields{"err": err, "config": cfg}).Error("failed to repo.Upsert")
		return nil, err
	}
	return cfg, nil
}
