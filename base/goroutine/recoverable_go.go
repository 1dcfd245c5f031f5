package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/treemarket/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type options struct {
	name           string
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(panic interface{}, stack []byte)
}

type Option func(*options)

// WithName tags the panic log so a crashed worker can be told apart
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithBeforeStart(f func()) Option {
	return func(o *options) { o.beforeStart = f }
}

// WithAfterEnded runs once f returns or panics, before any recovery hook
func WithAfterEnded(f func()) Option {
	return func(o *options) { o.afterEnded = f }
}

func WithAfterRecovered(f func(panic interface{}, stack []byte)) Option {
	return func(o *options) { o.afterRecovered = f }
}

// RecoverableGo runs f in a goroutine. The returned channel yields the panic, if any,
// and is closed otherwise.
func RecoverableGo(f func(), opts ...Option) <-chan *PanicEvent {
	o := options{name: "goroutine"}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan *PanicEvent, 1)
	go func() {
		defer func() {
			p := recover()
			if o.afterEnded != nil {
				o.afterEnded()
			}
			if p == nil {
				close(done)
				return
			}

			stack := debug.Stack()
			log.Log().WithFields(log.Fields{
				"err":   p,
				"name":  o.name,
				"stack": string(stack),
			}).Error("recovered from panic")
			if o.afterRecovered != nil {
				o.afterRecovered(p, stack)
			}
			done <- &PanicEvent{p, stack}
		}()

		if o.beforeStart != nil {
			o.beforeStart()
		}
		f()
	}()
	return done
}
