package usecase

import (
	"errors"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/service/cache"
)

var timeNow = time.Now

type ResolverCfg struct {
	Contracts asset.ContractRepo
	Holdings  asset.HoldingRepo
	Approvals asset.ApprovalRepo
	// Detector is consulted for unregistered contracts. Nil disables auto registration.
	Detector asset.KindDetector
	Cache    cache.Service
}

type resolverImpl struct {
	contracts asset.ContractRepo
	holdings  asset.HoldingRepo
	approvals asset.ApprovalRepo
	detector  asset.KindDetector
	cache     cache.Service
}

func NewResolver(cfg *ResolverCfg) asset.Resolver {
	return &resolverImpl{
		contracts: cfg.Contracts,
		holdings:  cfg.Holdings,
		approvals: cfg.Approvals,
		detector:  cfg.Detector,
		cache:     cfg.Cache,
	}
}

func (im *resolverImpl) Resolve(c ctx.Ctx, contract domain.Address) (asset.Contract, error) {
	if !contract.IsValid() {
		return nil, domain.ErrInvalidAddress
	}
	contract = contract.ToLower()

	var kind asset.Kind
	if err := im.cache.Load(c, string(contract), &kind, func() (interface{}, error) {
		k, err := im.lookup(c, contract)
		return &k, err
	}); err != nil {
		return nil, err
	}

	b := book{address: contract, holdings: im.holdings, approvals: im.approvals}
	switch kind {
	case asset.Kind721:
		return &erc721Contract{b}, nil
	case asset.Kind1155:
		return &erc1155Contract{b}, nil
	}
	return nil, xerrors.Errorf("%w: %s", domain.ErrUnsupportedAsset, contract)
}

func (im *resolverImpl) lookup(c ctx.Ctx, contract domain.Address) (asset.Kind, error) {
	info, err := im.contracts.FindOne(c, contract)
	if err == nil {
		return info.Kind, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.WithFields(log.Fields{"err": err, "contract": contract}).Error("failed to contracts.FindOne")
		return asset.KindUnknown, err
	}

	if im.detector == nil {
		return asset.KindUnknown, xerrors.Errorf("%w: %s is not registered", domain.ErrUnsupportedAsset, contract)
	}
	kind, err := im.detector.DetectKind(c, contract)
	if err != nil {
		return asset.KindUnknown, xerrors.Errorf("%w: %v", domain.ErrUnsupportedAsset, err)
	}
	if !kind.IsValid() {
		return asset.KindUnknown, xerrors.Errorf("%w: %s implements no known token standard", domain.ErrUnsupportedAsset, contract)
	}
	if err := im.upsert(c, contract, kind); err != nil {
		return asset.KindUnknown, err
	}
	return kind, nil
}

func (im *resolverImpl) upsert(c ctx.Ctx, contract domain.Address, kind asset.Kind) error {
	info := &asset.ContractInfo{Address: contract, Kind: kind, CreatedAt: timeNow()}
	if err := im.contracts.Upsert(c, info); err != nil {
		c.WithFields(log.Fields{"err": err, "info": info}).Error("failed to contracts.Upsert")
		return err
	}
	return nil
}

func (im *resolverImpl) Register(c ctx.Ctx, contract domain.Address, kind asset.Kind) error {
	if !contract.IsValid() {
		return domain.ErrInvalidAddress
	}
	if !kind.IsValid() {
		return xerrors.Errorf("%w: kind %d", domain.ErrUnsupportedAsset, kind)
	}
	contract = contract.ToLower()
	if err := im.upsert(c, contract, kind); err != nil {
		return err
	}
	if err := im.cache.Set(c, string(contract), kind); err != nil {
		c.WithFields(log.Fields{"err": err, "contract": contract}).Warn("failed to cache.Set")
	}
	return nil
}
