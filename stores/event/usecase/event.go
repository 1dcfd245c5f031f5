package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/goroutine"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/metrics"
	"github.com/x-xyz/treemarket/domain/event"
)

var timeNow = time.Now

const notifyWorkers = 4

type EventUseCaseCfg struct {
	Repo      event.Repo
	Notifiers []event.Notifier
	// NotifyTimeout bounds one Dispatch call
	NotifyTimeout time.Duration
}

type impl struct {
	repo          event.Repo
	notifiers     []event.Notifier
	notifyTimeout time.Duration
	met           metrics.Service
}

func New(cfg *EventUseCaseCfg) event.UseCase {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &impl{
		repo:          cfg.Repo,
		notifiers:     cfg.Notifiers,
		notifyTimeout: timeout,
		met:           metrics.New("event"),
	}
}

func (im *impl) Record(c ctx.Ctx, e *event.Event) error {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = timeNow()
	}
	if err := im.repo.Insert(c, e); err != nil {
		c.WithFields(log.Fields{"err": err, "event": e}).Error("failed to repo.Insert")
		return err
	}
	im.met.BumpSum("recorded", 1, "type", string(e.Type))
	return nil
}

func (im *impl) Dispatch(c ctx.Ctx, events []*event.Event) {
	if len(events) == 0 || len(im.notifiers) == 0 {
		return
	}

	// the request may finish before the notifiers do
	dc, cancel := ctx.WithTimeout(ctx.Detach(c), im.notifyTimeout)
	goroutine.RecoverableGo(func() {
		defer cancel()
		im.notify(dc, events)
	}, goroutine.WithName("notifier"))
}

func (im *impl) notify(c ctx.Ctx, events []*event.Event) {
	b := goroutines.NewBatch(notifyWorkers, goroutines.WithBatchSize(len(events)*len(im.notifiers)))
	defer b.Close()

	for _, e := range events {
		for _, n := range im.notifiers {
			e, n := e, n
			b.Queue(func() (interface{}, error) {
				return e, n.Notify(c, e)
			})
		}
	}
	b.QueueComplete()

	for ret := range b.Results() {
		if err := ret.Error(); err != nil {
			im.met.BumpSum("notify.err", 1)
			c.WithFields(log.Fields{"err": err, "event": ret.Value()}).Warn("failed to notify")
		}
	}
}

func (im *impl) List(c ctx.Ctx, opts ...event.FindAllOptionsFunc) ([]*event.Event, error) {
	return im.repo.FindAll(c, opts...)
}
