package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/x-xyz/treemarket/base/log"
)

const (
	ddClientsSize    = 16 // needs to be 2^n
	ddClientsIdxMask = ddClientsSize - 1
	// buffer 10 counters before sending to statsd
	bufferMetrics = 10
	defaultDdPort = 8125
)

var (
	initOnce = sync.Once{}

	// ddClientsIdx round-robins over clients
	ddClientsIdx = int32(0)
	clients      []statsCli
)

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

// initClients dials the agent at metrics.datadog_host. Without a host every metric goes to
// the debug log instead.
func initClients() {
	host := viper.GetString("metrics.datadog_host")
	if host == "" {
		clients = []statsCli{&LogClient{}}
		return
	}

	port := viper.GetInt("metrics.datadog_port")
	if port == 0 {
		port = defaultDdPort
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	clients = make([]statsCli, ddClientsSize)
	for i := 0; i < ddClientsSize; i++ {
		c, err := statsd.NewBuffered(addr, bufferMetrics)
		if err != nil {
			log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Error("can't talk to datadog agent, falling back to log")
			clients = []statsCli{&LogClient{}}
			return
		}
		clients[i] = c
	}
	log.Log().WithFields(log.Fields{"addr": addr, "clients": ddClientsSize}).Info("connected to datadog agent")
}

func client() statsCli {
	initOnce.Do(initClients)
	if len(clients) == 1 {
		return clients[0]
	}
	i := atomic.AddInt32(&ddClientsIdx, 1) & ddClientsIdxMask
	return clients[i]
}
