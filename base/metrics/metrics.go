/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- Error: *.err
- Business counters: plain nouns, e.g. bid.placed
*/
package metrics

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/treemarket/base/log"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// New creates a metric client which prefixes every key with pkgName
func New(pkgName string) Service {
	return &Metrics{
		pkgName: pkgName,
		tags: []string{
			// using host removes all tags associated with host
			// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
			"host:",
			"pod:" + os.Getenv("PODNAME"),
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
	}
}

// Metrics sends to the shared statsd clients, or to the log when no agent is configured.
type Metrics struct {
	pkgName string
	tags    []string
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + "." + key
}

// guard swallows panics from malformed tags so metrics never break a request
func (mt *Metrics) guard(fn string, key string) {
	if err := recover(); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "func": fn, "key": mt.key(key)}).Error("metrics panic")
	}
}

func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	defer mt.guard("BumpAvg", key)
	c := client()
	if err := c.Gauge(mt.key(key), val, append(mt.tags, parseTag(tags)...), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpAvg"}).Error("Bump fail")
	}
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	defer mt.guard("BumpSum", key)
	c := client()
	if err := c.Count(mt.key(key), int64(val), append(mt.tags, parseTag(tags)...), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpSum"}).Error("Bump fail")
	}
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	defer mt.guard("BumpHistogram", key)
	c := client()
	if err := c.Histogram(mt.key(key), val, append(mt.tags, parseTag(tags)...), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpHistogram"}).Error("Bump fail")
	}
}

// BumpTime starts a timer; End records it. Typical use:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		start: time.Now(),
		key:   mt.key(key),
		tags:  append(mt.tags, parseTag(tags)...),
	}
}

type timeTracker struct {
	start time.Time
	key   string
	tags  []string
}

func (tt *timeTracker) End() {
	dur := float64(time.Since(tt.start)) / float64(time.Millisecond)
	if err := client().TimeInMilliseconds(tt.key, dur, tt.tags, 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": tt.key, "val": dur, "func": "BumpTime"}).Error("Bump fail")
	}
}

func parseTag(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Panic("tag length needs to be multiple of 2")
	}
	arr := make([]string, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		arr[i/2] = tags[i] + ":" + tags[i+1]
	}
	return arr
}
