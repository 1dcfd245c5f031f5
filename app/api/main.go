package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/x-xyz/treemarket/app/bootstrap"
	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/goroutine"
	"github.com/x-xyz/treemarket/base/log"
	bValidator "github.com/x-xyz/treemarket/base/validator"
	mmiddleware "github.com/x-xyz/treemarket/middleware"
	"github.com/x-xyz/treemarket/service/chain"
	"github.com/x-xyz/treemarket/service/chain/contract"
	asset_delivery "github.com/x-xyz/treemarket/stores/asset/delivery/http"
	auth_delivery "github.com/x-xyz/treemarket/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/treemarket/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/treemarket/stores/auth/usecase"
	bid_delivery "github.com/x-xyz/treemarket/stores/bid/delivery/http"
	escrow_delivery "github.com/x-xyz/treemarket/stores/escrow/delivery/http"
	event_delivery "github.com/x-xyz/treemarket/stores/event/delivery/http"
	hc_delivery "github.com/x-xyz/treemarket/stores/healthcheck/delivery/http"
	hc_repository "github.com/x-xyz/treemarket/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/treemarket/stores/healthcheck/usecase"
	payment_delivery "github.com/x-xyz/treemarket/stores/payment/delivery/http"
	reward_delivery "github.com/x-xyz/treemarket/stores/reward/delivery/http"
)

func init() {
	if err := bootstrap.LoadConfig("api"); err != nil {
		panic(err)
	}
}

func main() {
	defer log.Sync()

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()

	storage := bootstrap.OpenStorage(context)
	redisCache := bootstrap.OpenRedis(context)
	if redisCache == nil {
		context.Panic("redis.uri is required, sign-in nonces live in redis")
	}

	// init chain service, optional for a marketplace that registers contracts by hand
	var chainService chain.Client
	if network, err := bootstrap.MarketplaceNetwork(); err != nil {
		context.WithField("err", err).Warn("no marketplace network, kind detection and erc1271 disabled")
	} else {
		eth, err := chain.Dial(context, &chain.ClientCfg{
			RpcUrl:        network.RpcUrl,
			MaxConcurrent: network.MaxConcurrent,
		})
		if err != nil {
			context.WithField("err", err).Panic("chain.Dial failed")
		}
		chainService = chain.NewClient(eth)
	}

	services := bootstrap.NewServices(context, &bootstrap.ServicesCfg{
		Storage: storage,
		Redis:   redisCache,
		Chain:   chainService,
	})

	// nothing outlives a memory store, so the api seeds it the way app/deploy seeds mongo
	if storage.Mongo == nil {
		deployCfg, err := bootstrap.LoadDeployCfg()
		if err != nil {
			context.WithField("err", err).Panic("LoadDeployCfg failed")
		}
		if err := bootstrap.Deploy(context, services, deployCfg); err != nil {
			context.WithField("err", err).Panic("Deploy failed")
		}
	}

	authCfg := &auth_usecase.AuthUseCaseCfg{
		JwtSecret:       viper.GetString("auth.jwtSecret"),
		Redis:           redisCache,
		MessageTemplate: viper.GetString("auth.signatureMsg"),
		NonceTTL:        viper.GetDuration("auth.nonceTtl"),
		TokenTTL:        viper.GetDuration("auth.tokenTtl"),
	}
	if chainService != nil {
		authCfg.Erc1271 = contract.NewErc1271(chainService)
	}
	auth := auth_usecase.New(authCfg)
	hc := hc_usecase.New(hc_repository.New(storage.Mongo, redisCache))

	authMiddleware := auth_middleware.New(auth, bootstrap.Addresses("admin.addresses"))

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	bid_delivery.New(e, services.Bids, authMiddleware)
	escrow_delivery.New(e, services.Ledger)
	payment_delivery.New(e, services.Payments, authMiddleware, viper.GetBool("marketplace.allowDeposit"))
	reward_delivery.New(e, services.Token, services.Symbol)
	event_delivery.New(e, services.Events)
	asset_delivery.New(e, services.Assets, authMiddleware, asset_delivery.Config{
		AllowTestMint: viper.GetBool("marketplace.allowTestMint"),
		KindCache:     services.KindCache,
	})

	serverErr := goroutine.RecoverableGo(func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}, goroutine.WithName("api-server"))

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-quit:
		log.Log().WithField("signal", sig).Info("received signal")
	case p, ok := <-serverErr:
		if ok {
			log.Log().WithField("panic", p.Panic).Error("server goroutine panicked")
		}
	}
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
