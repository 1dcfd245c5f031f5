package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain/event"
	"github.com/x-xyz/treemarket/service/memstore"
)

type recorder struct {
	mu   sync.Mutex
	got  []string
	fail bool
	done chan struct{}
}

func (r *recorder) Notify(c ctx.Ctx, e *event.Event) error {
	r.mu.Lock()
	r.got = append(r.got, e.Id)
	n := len(r.got)
	r.mu.Unlock()
	if n == 2 {
		close(r.done)
	}
	if r.fail {
		return errors.New("unreachable")
	}
	return nil
}

type eventSuite struct {
	suite.Suite

	store *memstore.Store
	now   time.Time
}

func TestEventSuite(t *testing.T) {
	suite.Run(t, new(eventSuite))
}

func (s *eventSuite) SetupTest() {
	s.store = memstore.New()
	s.now = time.Unix(1660000000, 0)
	timeNow = func() time.Time { return s.now }
}

func (s *eventSuite) TearDownTest() {
	timeNow = time.Now
}

func (s *eventSuite) TestRecordFillsIdAndTime() {
	c := ctx.Background()
	uc := New(&EventUseCaseCfg{Repo: s.store.Events()})

	e := &event.Event{Type: event.TypeBidPlaced, Actor: "0xA"}
	s.NoError(uc.Record(c, e))
	s.NotEmpty(e.Id)
	s.Equal(s.now, e.CreatedAt)

	res, err := uc.List(c, event.WithType(event.TypeBidPlaced))
	s.NoError(err)
	s.Len(res, 1)
	s.Equal(e.Id, res[0].Id)
}

func (s *eventSuite) TestDispatchOutlivesCaller() {
	c, cancel := ctx.WithCancel(ctx.Background())
	ok := &recorder{done: make(chan struct{})}
	failing := &recorder{done: make(chan struct{}), fail: true}
	uc := New(&EventUseCaseCfg{Repo: s.store.Events(), Notifiers: []event.Notifier{ok, failing}})

	uc.Dispatch(c, []*event.Event{{Id: "a"}, {Id: "b"}})
	cancel()

	for _, r := range []*recorder{ok, failing} {
		select {
		case <-r.done:
		case <-time.After(time.Second):
			s.FailNow("notifier not called")
		}
		r.mu.Lock()
		s.ElementsMatch([]string{"a", "b"}, r.got)
		r.mu.Unlock()
	}
}

func (s *eventSuite) TestDispatchWithoutNotifiers() {
	uc := New(&EventUseCaseCfg{Repo: s.store.Events()})
	uc.Dispatch(ctx.Background(), []*event.Event{{Id: "a"}})
}
