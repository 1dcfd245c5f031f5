package usecase

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/treemarket/domain/reward"
)

// ProportionalPolicy pays both sides of an accepted bid a share of the sale price.
// Other transitions earn nothing.
type ProportionalPolicy struct {
	SellerBps uint32
	BuyerBps  uint32
}

func (p ProportionalPolicy) Accrue(t reward.Transition) []reward.Grant {
	if t.Kind != reward.TransitionAccepted || t.Price == nil || t.Price.Sign() <= 0 {
		return nil
	}

	grants := []reward.Grant{}
	if amount := share(t.Price, p.SellerBps); amount.Sign() > 0 {
		grants = append(grants, reward.Grant{To: t.Seller, Amount: amount})
	}
	if amount := share(t.Price, p.BuyerBps); amount.Sign() > 0 {
		grants = append(grants, reward.Grant{To: t.Bidder, Amount: amount})
	}
	return grants
}

// share truncates toward zero
func share(price *big.Int, bps uint32) *big.Int {
	return decimal.NewFromBigInt(price, 0).
		Mul(decimal.New(int64(bps), -4)).
		BigInt()
}

type NoopPolicy struct{}

func (NoopPolicy) Accrue(reward.Transition) []reward.Grant {
	return nil
}
