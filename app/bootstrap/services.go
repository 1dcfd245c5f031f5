package bootstrap

import (
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/domain/payment"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/domain/treasury"
	"github.com/x-xyz/treemarket/service/cache"
	"github.com/x-xyz/treemarket/service/cache/provider"
	"github.com/x-xyz/treemarket/service/cache/provider/compound"
	"github.com/x-xyz/treemarket/service/cache/provider/primitive"
	redisProvider "github.com/x-xyz/treemarket/service/cache/provider/redis"
	"github.com/x-xyz/treemarket/service/chain"
	"github.com/x-xyz/treemarket/service/chain/contract"
	"github.com/x-xyz/treemarket/service/notifier/discord"
	"github.com/x-xyz/treemarket/service/redis"
	assetUC "github.com/x-xyz/treemarket/stores/asset/usecase"
	bidUC "github.com/x-xyz/treemarket/stores/bid/usecase"
	escrowUC "github.com/x-xyz/treemarket/stores/escrow/usecase"
	eventUC "github.com/x-xyz/treemarket/stores/event/usecase"
	paymentUC "github.com/x-xyz/treemarket/stores/payment/usecase"
	rewardUC "github.com/x-xyz/treemarket/stores/reward/usecase"
	treasuryUC "github.com/x-xyz/treemarket/stores/treasury/usecase"
)

const (
	defaultRewardSymbol = "TREE"
	defaultKindTtl      = 10 * time.Minute
	defaultCacheSizeMB  = 16
)

// Services is the wired marketplace
type Services struct {
	Operator  domain.Address
	Symbol    string
	Locker    domain.Locker
	KindCache provider.Provider
	Payments  payment.UseCase
	Ledger    escrow.Ledger
	Treasury  treasury.UseCase
	Token     reward.Token
	Emitter   reward.Emitter
	Resolver  asset.Resolver
	Assets    asset.UseCase
	Events    event.UseCase
	Bids      bid.UseCase
}

// ServicesCfg carries what the binaries build before the usecases
type ServicesCfg struct {
	Storage *Storage
	// Redis is optional. It backs the lock and the second cache layer.
	Redis redis.Service
	// Chain is optional. Without it contracts must be registered explicitly.
	Chain chain.Client
}

func kindCache(red redis.Service) provider.Provider {
	size := viper.GetInt("cache.sizeMB")
	if size <= 0 {
		size = defaultCacheSizeMB
	}
	local := primitive.NewPrimitive("asset", size)
	if red == nil {
		return local
	}
	return compound.NewCompound(local, redisProvider.NewRedis(red))
}

func notifiers(c ctx.Ctx) []event.Notifier {
	botKey := viper.GetString("notifier.discord.botKey")
	if botKey == "" {
		return nil
	}
	var types []event.Type
	for _, t := range viper.GetStringSlice("notifier.discord.types") {
		types = append(types, event.Type(t))
	}
	n, err := discord.New(discord.Config{
		BotKey:    botKey,
		ChannelId: viper.GetString("notifier.discord.channelId"),
		Types:     types,
	})
	if err != nil {
		c.WithField("err", err).Error("discord.New failed, notifications disabled")
		return nil
	}
	return []event.Notifier{n}
}

func RewardPolicy() reward.AccrualPolicy {
	seller := viper.GetUint32("marketplace.reward.sellerBps")
	buyer := viper.GetUint32("marketplace.reward.buyerBps")
	if seller == 0 && buyer == 0 {
		return rewardUC.NoopPolicy{}
	}
	return rewardUC.ProportionalPolicy{SellerBps: seller, BuyerBps: buyer}
}

func NewServices(c ctx.Ctx, cfg *ServicesCfg) *Services {
	st := cfg.Storage
	s := &Services{
		Operator:  domain.Address(viper.GetString("marketplace.operator")).ToLower(),
		Symbol:    viper.GetString("marketplace.reward.symbol"),
		Locker:    NewLocker(cfg.Redis),
		KindCache: kindCache(cfg.Redis),
	}
	if s.Symbol == "" {
		s.Symbol = defaultRewardSymbol
	}
	if !s.Operator.IsValid() {
		c.WithField("operator", s.Operator).Panic("marketplace.operator is not an address")
	}

	s.Payments = paymentUC.New(&paymentUC.PaymentUseCaseCfg{
		Repo:       st.Accounts,
		Transactor: st.Transactor,
		Locker:     s.Locker,
	})
	s.Ledger = escrowUC.New(&escrowUC.EscrowUseCaseCfg{Repo: st.Escrows, Rail: s.Payments})
	s.Treasury = treasuryUC.New(st.Treasury)
	s.Token = rewardUC.NewToken(&rewardUC.TokenUseCaseCfg{Repo: st.Rewards, Symbol: s.Symbol})
	s.Emitter = rewardUC.NewEmitter(&rewardUC.EmitterCfg{
		Token:  s.Token,
		Policy: RewardPolicy(),
		Minter: s.Operator,
	})

	kindTtl := viper.GetDuration("cache.assetKindTtl")
	if kindTtl <= 0 {
		kindTtl = defaultKindTtl
	}
	var detector asset.KindDetector
	if cfg.Chain != nil {
		detector = contract.NewKindDetector(cfg.Chain)
	}
	s.Resolver = assetUC.NewResolver(&assetUC.ResolverCfg{
		Contracts: st.Contracts,
		Holdings:  st.Holdings,
		Approvals: st.Approvals,
		Detector:  detector,
		Cache: cache.New(cache.ServiceConfig{
			Ttl:   kindTtl,
			Pfx:   keys.PfxAssetKind,
			Cache: s.KindCache,
		}),
	})
	s.Assets = assetUC.New(&assetUC.AssetUseCaseCfg{
		Resolver:   s.Resolver,
		Holdings:   st.Holdings,
		Locker:     s.Locker,
		Transactor: st.Transactor,
		Operator:   s.Operator,
	})

	notifyTimeout := viper.GetDuration("notifier.timeout")
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	s.Events = eventUC.New(&eventUC.EventUseCaseCfg{
		Repo:          st.Events,
		Notifiers:     notifiers(c),
		NotifyTimeout: notifyTimeout,
	})

	s.Bids = bidUC.New(&bidUC.BidUseCaseCfg{
		Repo:       st.Bids,
		Ledger:     s.Ledger,
		Assets:     s.Resolver,
		Treasury:   s.Treasury,
		Emitter:    s.Emitter,
		Events:     s.Events,
		Locker:     s.Locker,
		Transactor: st.Transactor,
		Operator:   s.Operator,
	})
	return s
}
