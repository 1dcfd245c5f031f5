package main

import (
	"github.com/x-xyz/treemarket/app/bootstrap"
	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
)

func init() {
	if err := bootstrap.LoadConfig("deploy"); err != nil {
		panic(err)
	}
}

func main() {
	defer log.Sync()
	c := ctx.Background()

	cfg, err := bootstrap.LoadDeployCfg()
	if err != nil {
		c.WithField("err", err).Panic("LoadDeployCfg failed")
	}

	storage := bootstrap.OpenStorage(c)
	if storage.Mongo == nil {
		c.Warn("deploying into an in-memory store, the api seeds its own on start")
	}
	services := bootstrap.NewServices(c, &bootstrap.ServicesCfg{Storage: storage, Redis: bootstrap.OpenRedis(c)})
	if err := bootstrap.Deploy(c, services, cfg); err != nil {
		c.WithField("err", err).Panic("Deploy failed")
	}
	c.Info("deploy finished")
}
