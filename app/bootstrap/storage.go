package bootstrap

import (
	"github.com/spf13/viper"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	"github.com/x-xyz/treemarket/base/database/redisclient"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/bid"
	"github.com/x-xyz/treemarket/domain/escrow"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/domain/payment"
	"github.com/x-xyz/treemarket/domain/reward"
	"github.com/x-xyz/treemarket/domain/treasury"
	"github.com/x-xyz/treemarket/service/keylock"
	"github.com/x-xyz/treemarket/service/memstore"
	"github.com/x-xyz/treemarket/service/query"
	"github.com/x-xyz/treemarket/service/redis"
	assetRepo "github.com/x-xyz/treemarket/stores/asset/repository"
	bidRepo "github.com/x-xyz/treemarket/stores/bid/repository"
	escrowRepo "github.com/x-xyz/treemarket/stores/escrow/repository"
	eventRepo "github.com/x-xyz/treemarket/stores/event/repository"
	paymentRepo "github.com/x-xyz/treemarket/stores/payment/repository"
	rewardRepo "github.com/x-xyz/treemarket/stores/reward/repository"
	trackerStateRepo "github.com/x-xyz/treemarket/stores/tracker_state/repository"
	treasuryRepo "github.com/x-xyz/treemarket/stores/treasury/repository"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Storage holds every repository over one backend
type Storage struct {
	// Mongo is nil on the memory backend
	Mongo         *mongoclient.Client
	Transactor    domain.Transactor
	Bids          bid.Repo
	Escrows       escrow.Repo
	Accounts      payment.Repo
	Treasury      treasury.Repo
	Rewards       reward.Repo
	Contracts     asset.ContractRepo
	Holdings      asset.HoldingRepo
	Approvals     asset.ApprovalRepo
	Events        event.Repo
	TrackerStates domain.TrackerStateRepo
}

// OpenStorage connects the backend named by store.backend. The memory backend only lives
// as long as the process.
func OpenStorage(c ctx.Ctx) *Storage {
	if viper.GetString("store.backend") == BackendMemory {
		c.Warn("using in-memory store, state is lost on exit")
		return MemoryStorage(memstore.New())
	}

	c.Info("init mongo")
	cli := mongoclient.MustConnectMongoClient(mongoclient.Config{
		URI:                viper.GetString("mongo.uri"),
		AuthDBName:         viper.GetString("mongo.authDBName"),
		DBName:             viper.GetString("mongo.dbName"),
		SSL:                viper.GetBool("mongo.enableSSL"),
		SetSafe:            true,
		PoolSizeMultiplier: viper.GetFloat64("mongo.poolMultiplier"),
	})
	q := query.New(cli)
	if viper.GetBool("mongo.checkIndex") {
		if err := EnsureIndexes(c, q); err != nil {
			c.WithField("err", err).Panic("EnsureIndexes failed")
		}
	}
	st := MongoStorage(q)
	st.Mongo = cli
	return st
}

func MongoStorage(q query.Mongo) *Storage {
	return &Storage{
		Transactor:    q,
		Bids:          bidRepo.New(q),
		Escrows:       escrowRepo.New(q),
		Accounts:      paymentRepo.New(q),
		Treasury:      treasuryRepo.New(q),
		Rewards:       rewardRepo.New(q),
		Contracts:     assetRepo.NewContractRepo(q),
		Holdings:      assetRepo.NewHoldingRepo(q),
		Approvals:     assetRepo.NewApprovalRepo(q),
		Events:        eventRepo.New(q),
		TrackerStates: trackerStateRepo.New(q),
	}
}

func MemoryStorage(s *memstore.Store) *Storage {
	return &Storage{
		Transactor:    s,
		Bids:          s.Bids(),
		Escrows:       s.Escrows(),
		Accounts:      s.Accounts(),
		Treasury:      s.Treasury(),
		Rewards:       s.Rewards(),
		Contracts:     s.Contracts(),
		Holdings:      s.Holdings(),
		Approvals:     s.Approvals(),
		Events:        s.Events(),
		TrackerStates: s.TrackerStates(),
	}
}

// OpenRedis returns nil when redis.uri is empty
func OpenRedis(c ctx.Ctx) redis.Service {
	uri := viper.GetString("redis.uri")
	if uri == "" {
		return nil
	}
	c.WithField("uri", uri).Info("init redis")
	pool := redisclient.MustConnectRedis(redisclient.Config{
		URI:            uri,
		Password:       viper.GetString("redis.password"),
		PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
		Retry:          true,
	})
	return redis.New(viper.GetString("redis.name"), pool)
}

// NewLocker is redis backed when red is set, so several api replicas serialize on the same keys
func NewLocker(red redis.Service) domain.Locker {
	if red == nil {
		return keylock.NewLocal()
	}
	return keylock.NewRedis(red, keylock.RedisConfig{
		TTL:            viper.GetDuration("lock.ttl"),
		AcquireTimeout: viper.GetDuration("lock.acquireTimeout"),
	})
}
