// Package bootstrap loads configuration and builds the storage and usecases shared by the
// api, tracker and deploy binaries.
package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
)

const defaultConfigFile = "infra/configs/config.yaml"

// LoadConfig reads --config, merges config.<env>.yaml next to it when --env is set, and lets
// env vars override every key (mongo.uri -> MONGO_URI).
func LoadConfig(appName string) error {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	file := fs.String("config", defaultConfigFile, "config file")
	env := fs.String("env", "", "environment overlay, e.g. staging")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*file)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	if *env != "" {
		overlay := strings.TrimSuffix(*file, ".yaml") + "." + *env + ".yaml"
		if _, err := os.Stat(overlay); err == nil {
			viper.SetConfigFile(overlay)
			if err := viper.MergeInConfig(); err != nil {
				return err
			}
		}
		viper.Set("env_name", *env)
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.Set("app_name", appName)

	if err := log.Init(viper.GetString("log.level"), viper.GetBool("debug")); err != nil {
		return err
	}
	if viper.GetBool("debug") {
		log.Log().WithField("app", appName).Info("Service RUN on DEBUG mode")
	}
	return nil
}

// Network is one entry under networks.*
type Network struct {
	Name           string
	ChainId        domain.ChainId
	RpcUrl         string
	MaxConcurrent  int
	Custody        domain.Address
	FromBlock      uint64
	FollowDistance uint64
	MaxBlockRange  uint64
	Contracts      []domain.Address
}

func Networks() []Network {
	networks := viper.Sub("networks")
	if networks == nil {
		return nil
	}
	var res []Network
	for k := range networks.AllSettings() {
		n := networks.Sub(k)
		var contracts []domain.Address
		for _, a := range n.GetStringSlice("contracts") {
			contracts = append(contracts, domain.Address(a).ToLower())
		}
		res = append(res, Network{
			Name:           k,
			ChainId:        domain.ChainId(n.GetInt64("chainId")),
			RpcUrl:         n.GetString("rpcUrl"),
			MaxConcurrent:  n.GetInt("maxConcurrent"),
			Custody:        domain.Address(n.GetString("custody")).ToLower(),
			FromBlock:      n.GetUint64("fromBlock"),
			FollowDistance: n.GetUint64("followDistance"),
			MaxBlockRange:  n.GetUint64("maxBlockRange"),
			Contracts:      contracts,
		})
	}
	return res
}

// MarketplaceNetwork is the network the api reads contract kinds and erc1271 signatures from
func MarketplaceNetwork() (Network, error) {
	name := viper.GetString("marketplace.network")
	for _, n := range Networks() {
		if n.Name == name {
			return n, nil
		}
	}
	return Network{}, fmt.Errorf("network %q not configured", name)
}

func Addresses(key string) []domain.Address {
	var res []domain.Address
	for _, a := range viper.GetStringSlice(key) {
		res = append(res, domain.Address(a).ToLower())
	}
	return res
}
