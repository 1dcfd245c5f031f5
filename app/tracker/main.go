package main

import (
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/x-xyz/treemarket/app/bootstrap"
	bCtx "github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/goroutine"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/tracker"
	"github.com/x-xyz/treemarket/domain"
	hcdomain "github.com/x-xyz/treemarket/domain/healthcheck"
	mmiddleware "github.com/x-xyz/treemarket/middleware"
	"github.com/x-xyz/treemarket/service/chain"
	hc_delivery "github.com/x-xyz/treemarket/stores/healthcheck/delivery/http"
	hc_repository "github.com/x-xyz/treemarket/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/treemarket/stores/healthcheck/usecase"
	trackerStateUseCase "github.com/x-xyz/treemarket/stores/tracker_state/usecase"
)

func init() {
	if err := bootstrap.LoadConfig("tracker"); err != nil {
		panic(err)
	}
}

func main() {
	defer log.Sync()
	ctx, cancel := bCtx.WithCancel(bCtx.Background())
	defer cancel()

	ctxTimeout := viper.GetDuration("context.timeout")
	if ctxTimeout <= 0 {
		ctxTimeout = 10 * time.Second
	}
	pollInterval := viper.GetDuration("tracker.pollInterval")

	storage := bootstrap.OpenStorage(ctx)
	redisCache := bootstrap.OpenRedis(ctx)

	// start server to pass cloud run health check
	startEchoServer(hc_usecase.New(hc_repository.New(storage.Mongo, redisCache)))

	networks := bootstrap.Networks()
	clients := make(map[string]domain.EthClientRepo, len(networks))
	for _, n := range networks {
		ctx.WithFields(log.Fields{
			"network": n.Name,
			"chainId": n.ChainId,
			"rpcUrl":  n.RpcUrl,
			"custody": n.Custody,
		}).Info("config")
		client, err := chain.Dial(ctx, &chain.ClientCfg{RpcUrl: n.RpcUrl, MaxConcurrent: n.MaxConcurrent})
		if err != nil {
			ctx.WithField("err", err).Panic("chain.Dial failed")
		}
		clients[n.Name] = client
	}

	// kind detection reads the marketplace network; the custody book itself is chain agnostic
	var chainService chain.Client
	if n, err := bootstrap.MarketplaceNetwork(); err == nil {
		chainService = chain.NewClient(clients[n.Name])
	}
	services := bootstrap.NewServices(ctx, &bootstrap.ServicesCfg{
		Storage: storage,
		Redis:   redisCache,
		Chain:   chainService,
	})
	tsUseCase := trackerStateUseCase.New(storage.TrackerStates, ctxTimeout)

	var trackers []*tracker.EventTracker
	for _, n := range networks {
		if !n.Custody.IsValid() {
			ctx.WithField("network", n.Name).Warn("no custody address, not tracking deposits")
			continue
		}
		contracts := make([]common.Address, 0, len(n.Contracts))
		for _, a := range n.Contracts {
			contracts = append(contracts, common.HexToAddress(a.ToLowerStr()))
		}
		trackers = append(trackers, tracker.NewEventTracker(&tracker.EventTrackerCfg{
			ChainId:             n.ChainId,
			Client:              clients[n.Name],
			TrackerStateUseCase: tsUseCase,
			Contracts:           contracts,
			Custody:             n.Custody,
			TrackerTag:          domain.DepositTrackerTag,
			EventHandl:          tracker.NewDepositHandler(n.Custody, services.Assets),
			FromBlock:           n.FromBlock,
			FollowDistance:      n.FollowDistance,
			PollInterval:        pollInterval,
			MaxBlockRange:       n.MaxBlockRange,
		}))
	}
	if len(trackers) == 0 {
		ctx.Panic("nothing to track")
	}

	ctx.Info("starting trackers")
	errCh := make(chan error, len(trackers))
	wg := sync.WaitGroup{}
	for _, t := range trackers {
		t := t
		wg.Add(1)
		goroutine.RecoverableGo(func() {
			if err := t.Run(ctx); err != nil {
				errCh <- err
			}
		}, goroutine.WithName("tracker"), goroutine.WithAfterEnded(wg.Done), goroutine.WithAfterRecovered(func(p interface{}, _ []byte) {
			errCh <- xerrors.Errorf("tracker panic: %v", p)
		}))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case err := <-errCh:
		ctx.WithField("err", err).Error("tracker error")
	case sig := <-quit:
		ctx.WithField("signal", sig).Info("received signal")
	}
	cancel()
	wg.Wait()
}

func startEchoServer(hc hcdomain.HealthCheckUsecase) {
	context := bCtx.Background()

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	hc_delivery.New(e, hc)

	address := viper.GetString("server.address")
	context.WithField("address", address).Info("starting server")
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			context.WithField("err", err).Error("shutting down the server")
		}
	}()
}
