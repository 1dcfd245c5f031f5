package bootstrap

import (
	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
)

type DeployContract struct {
	Address string `mapstructure:"address"`
	Kind    int    `mapstructure:"kind"`
}

type DeployCfg struct {
	Owner     domain.Address
	Treasury  domain.Address
	FeeBps    uint32
	Contracts []DeployContract
}

// LoadDeployCfg reads marketplace.owner, marketplace.treasury, marketplace.feeBps and deploy.contracts
func LoadDeployCfg() (*DeployCfg, error) {
	cfg := &DeployCfg{
		Owner:    domain.Address(viper.GetString("marketplace.owner")).ToLower(),
		Treasury: domain.Address(viper.GetString("marketplace.treasury")).ToLower(),
		FeeBps:   viper.GetUint32("marketplace.feeBps"),
	}
	if !cfg.Owner.IsValid() || !cfg.Treasury.IsValid() {
		return nil, xerrors.Errorf("%w: marketplace.owner and marketplace.treasury must be addresses", domain.ErrInvalidAddress)
	}
	if err := viper.UnmarshalKey("deploy.contracts", &cfg.Contracts); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Deploy brings an empty store to the state the marketplace expects: the reward token
// owned by the operator, the treasury config, and the tradable contracts. Every step is
// idempotent so it can be rerun after a partial failure.
func Deploy(c ctx.Ctx, s *Services, cfg *DeployCfg) error {
	c.WithField("deployer", cfg.Owner).Info("deploying contracts with the account")

	token, err := s.Token.Create(c, cfg.Owner)
	if err != nil {
		c.WithField("err", err).Error("Token.Create failed")
		return err
	}
	c.WithFields(log.Fields{"symbol": token.Symbol, "owner": token.Owner}).Info("reward token deployed")

	tc, err := s.Treasury.Bootstrap(c, cfg.Owner, cfg.Treasury, cfg.FeeBps)
	if err != nil {
		c.WithField("err", err).Error("Treasury.Bootstrap failed")
		return err
	}
	c.WithFields(log.Fields{"owner": tc.Owner, "treasury": tc.Treasury, "feeBps": tc.FeeBps}).Info("marketplace config deployed")

	current, err := s.Token.Owner(c)
	if err != nil {
		c.WithField("err", err).Error("Token.Owner failed")
		return err
	}
	if !current.Equals(s.Operator) {
		if err := s.Token.TransferOwnership(c, cfg.Owner, s.Operator); err != nil {
			c.WithField("err", err).Error("Token.TransferOwnership failed")
			return err
		}
	}
	c.WithField("operator", s.Operator).Info("reward token ownership transferred to marketplace")

	for _, cc := range cfg.Contracts {
		addr := domain.Address(cc.Address).ToLower()
		kind := asset.Kind(cc.Kind)
		if err := s.Assets.Register(c, addr, kind); err != nil {
			c.WithFields(log.Fields{"err": err, "contract": addr, "kind": kind}).Error("Assets.Register failed")
			return err
		}
		c.WithFields(log.Fields{"contract": addr, "kind": kind}).Info("asset contract registered")
	}
	return nil
}
