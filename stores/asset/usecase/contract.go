package usecase

import (
	"errors"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
)

// book keeps the custody balances and operator approvals of one contract
type book struct {
	address   domain.Address
	holdings  asset.HoldingRepo
	approvals asset.ApprovalRepo
}

func (b *book) Address() domain.Address {
	return b.address
}

func (b *book) holdingId(holder domain.Address, tokenId domain.TokenId) asset.HoldingId {
	return asset.HoldingId{Contract: b.address, TokenId: tokenId, Owner: holder.ToLower()}
}

func (b *book) BalanceOf(c ctx.Ctx, holder domain.Address, tokenId domain.TokenId) (*big.Int, error) {
	h, err := b.holdings.FindOne(c, b.holdingId(holder, tokenId))
	if errors.Is(err, domain.ErrNotFound) {
		return new(big.Int), nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "contract": b.address, "holder": holder}).Error("failed to holdings.FindOne")
		return nil, err
	}
	return h.BalanceInt(), nil
}

// adjust keeps only positive balances in the repo
func (b *book) adjust(c ctx.Ctx, holder domain.Address, tokenId domain.TokenId, delta *big.Int) error {
	bal, err := b.BalanceOf(c, holder, tokenId)
	if err != nil {
		return err
	}
	bal.Add(bal, delta)
	switch bal.Sign() {
	case -1:
		return xerrors.Errorf("%w: %s holds too little of %s:%s", domain.ErrTransferFailed, holder, b.address, tokenId)
	case 0:
		if err := b.holdings.Remove(c, b.holdingId(holder, tokenId)); err != nil && !errors.Is(err, domain.ErrNotFound) {
			c.WithFields(log.Fields{"err": err, "holder": holder}).Error("failed to holdings.Remove")
			return err
		}
		return nil
	}

	h := &asset.Holding{
		Contract:  b.address,
		TokenId:   tokenId,
		Owner:     holder.ToLower(),
		Balance:   bal.String(),
		UpdatedAt: timeNow(),
	}
	if err := b.holdings.Upsert(c, h); err != nil {
		c.WithFields(log.Fields{"err": err, "holding": h}).Error("failed to holdings.Upsert")
		return err
	}
	return nil
}

func (b *book) move(c ctx.Ctx, from, to domain.Address, tokenId domain.TokenId, amount *big.Int) error {
	if !to.IsValid() {
		return xerrors.Errorf("%w: invalid recipient %q", domain.ErrTransferFailed, to)
	}
	if err := b.adjust(c, from, tokenId, new(big.Int).Neg(amount)); err != nil {
		return err
	}
	return b.adjust(c, to, tokenId, amount)
}

func (b *book) IsApprovedForAll(c ctx.Ctx, owner, operator domain.Address) (bool, error) {
	id := asset.ApprovalId{Contract: b.address, Owner: owner.ToLower(), Operator: operator.ToLower()}
	a, err := b.approvals.FindOne(c, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "approval": id}).Error("failed to approvals.FindOne")
		return false, err
	}
	return a.Approved, nil
}

func (b *book) SetApprovalForAll(c ctx.Ctx, owner, operator domain.Address, approved bool) error {
	if !owner.IsValid() || !operator.IsValid() {
		return domain.ErrInvalidAddress
	}
	a := &asset.Approval{
		Contract:  b.address,
		Owner:     owner.ToLower(),
		Operator:  operator.ToLower(),
		Approved:  approved,
		UpdatedAt: timeNow(),
	}
	if err := b.approvals.Upsert(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "approval": a}).Error("failed to approvals.Upsert")
		return err
	}
	return nil
}

func one(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(1), nil
	}
	if amount.Cmp(big.NewInt(1)) != 0 {
		return nil, xerrors.Errorf("%w: single-owner tokens move one at a time", domain.ErrInvalidAmount)
	}
	return amount, nil
}

type erc721Contract struct {
	book
}

func (im *erc721Contract) Kind() asset.Kind {
	return asset.Kind721
}

func (im *erc721Contract) OwnerOf(c ctx.Ctx, tokenId domain.TokenId) (domain.Address, error) {
	hs, err := im.holdings.FindByToken(c, domain.NewAssetKey(im.address, tokenId))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "contract": im.address, "tokenId": tokenId}).Error("failed to holdings.FindByToken")
		return "", err
	}
	if len(hs) == 0 {
		return "", domain.ErrNotFound
	}
	return hs[0].Owner, nil
}

func (im *erc721Contract) IsOwner(c ctx.Ctx, holder domain.Address, tokenId domain.TokenId) (bool, error) {
	owner, err := im.OwnerOf(c, tokenId)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return owner.Equals(holder), nil
}

func (im *erc721Contract) Transfer(c ctx.Ctx, from, to domain.Address, tokenId domain.TokenId, amount *big.Int) error {
	amount, err := one(amount)
	if err != nil {
		return err
	}
	return im.move(c, from, to, tokenId, amount)
}

// Credit reassigns the token: whatever the book held before is superseded by the chain
func (im *erc721Contract) Credit(c ctx.Ctx, to domain.Address, tokenId domain.TokenId, amount *big.Int) error {
	amount, err := one(amount)
	if err != nil {
		return err
	}
	if !to.IsValid() {
		return domain.ErrInvalidAddress
	}
	hs, err := im.holdings.FindByToken(c, domain.NewAssetKey(im.address, tokenId))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "contract": im.address, "tokenId": tokenId}).Error("failed to holdings.FindByToken")
		return err
	}
	for _, h := range hs {
		if h.Owner.Equals(to) {
			return nil
		}
		if err := im.holdings.Remove(c, h.ToId()); err != nil {
			c.WithFields(log.Fields{"err": err, "holding": h}).Error("failed to holdings.Remove")
			return err
		}
	}
	return im.adjust(c, to, tokenId, amount)
}

type erc1155Contract struct {
	book
}

func (im *erc1155Contract) Kind() asset.Kind {
	return asset.Kind1155
}

// OwnerOf has no single answer for multi-balance tokens
func (im *erc1155Contract) OwnerOf(c ctx.Ctx, tokenId domain.TokenId) (domain.Address, error) {
	return "", xerrors.Errorf("%w: ownerOf on a multi-balance contract", domain.ErrUnsupportedAsset)
}

func (im *erc1155Contract) IsOwner(c ctx.Ctx, holder domain.Address, tokenId domain.TokenId) (bool, error) {
	bal, err := im.BalanceOf(c, holder, tokenId)
	if err != nil {
		return false, err
	}
	return bal.Sign() > 0, nil
}

func (im *erc1155Contract) Transfer(c ctx.Ctx, from, to domain.Address, tokenId domain.TokenId, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(1)
	}
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	return im.move(c, from, to, tokenId, amount)
}

func (im *erc1155Contract) Credit(c ctx.Ctx, to domain.Address, tokenId domain.TokenId, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if !to.IsValid() {
		return domain.ErrInvalidAddress
	}
	return im.adjust(c, to, tokenId, amount)
}
