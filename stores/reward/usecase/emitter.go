package usecase

import (
	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/reward"
)

type EmitterCfg struct {
	Token  reward.Token
	Policy reward.AccrualPolicy
	// Minter must own Token
	Minter domain.Address
}

type emitterImpl struct {
	token  reward.Token
	policy reward.AccrualPolicy
	minter domain.Address
}

func NewEmitter(cfg *EmitterCfg) reward.Emitter {
	policy := cfg.Policy
	if policy == nil {
		policy = NoopPolicy{}
	}
	return &emitterImpl{
		token:  cfg.Token,
		policy: policy,
		minter: cfg.Minter,
	}
}

// Emit runs inside the registry transaction, so a failed mint aborts the transition
func (im *emitterImpl) Emit(c ctx.Ctx, t reward.Transition) ([]reward.Grant, error) {
	grants := im.policy.Accrue(t)
	for _, g := range grants {
		if err := im.token.Mint(c, im.minter, g.To, g.Amount); err != nil {
			c.WithFields(log.Fields{"err": err, "grant": g, "kind": t.Kind, "key": t.Key}).Error("failed to token.Mint")
			return nil, err
		}
	}
	return grants, nil
}
