package treasury

import (
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

// MaxFeeBps caps the treasury cut at 100%
const MaxFeeBps = 10000

// Config is the marketplace-wide fee recipient. Owner and the current Treasury holder may
// both reassign Treasury.
type Config struct {
	Owner     domain.Address `json:"owner" bson:"owner"`
	Treasury  domain.Address `json:"treasury" bson:"treasury"`
	FeeBps    uint32         `json:"feeBps" bson:"feeBps"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (cfg *Config) CanUpdate(caller domain.Address) bool {
	return caller.Equals(cfg.Owner) || caller.Equals(cfg.Treasury)
}

type Repo interface {
	Get(c ctx.Ctx) (*Config, error)
	Upsert(c ctx.Ctx, cfg *Config) error
}

type UseCase interface {
	// Bootstrap stores the initial config. It keeps an existing one untouched.
	Bootstrap(c ctx.Ctx, owner, treasury domain.Address, feeBps uint32) (*Config, error)
	Get(c ctx.Ctx) (*Config, error)
	UpdateTreasury(c ctx.Ctx, caller, newTreasury domain.Address) (*Config, error)
}
