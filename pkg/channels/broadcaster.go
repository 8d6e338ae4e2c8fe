package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("broadcaster already started")
	ErrNoSubscribers  = errors.New("no subscribers available")
	ErrNilChannel     = errors.New("subscriber channel cannot be nil")
)

// SubscribeOption configures one subscriber.
type SubscribeOption func(*subscribeConfig) error

// WithSendTimeout makes deliveries wait up to d for room instead of
// dropping immediately.
func WithSendTimeout(d time.Duration) SubscribeOption {
	return func(s *subscribeConfig) error {
		if d <= 0 {
			return fmt.Errorf("send timeout must be positive, got %s", d)
		}
		s.timeout = d
		return nil
	}
}

// WithName labels the subscriber in Stats.
func WithName(name string) SubscribeOption {
	return func(s *subscribeConfig) error {
		s.name = name
		return nil
	}
}

type subscribeConfig struct {
	name    string
	timeout time.Duration // zero drops when full
}

type subscriber[T any] struct {
	subscribeConfig
	ch      chan<- T
	closed  atomic.Bool
	dropped atomic.Int64
}

func (s *subscriber[T]) deliver(msg T) {
	if s.closed.Load() {
		s.dropped.Add(1)
		return
	}

	var err error
	if s.timeout > 0 {
		err = SendWithTimeout(s.ch, msg, s.timeout)
	} else {
		err = SendNonBlock(s.ch, msg)
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrChannelClosed):
		s.closed.Store(true)
		s.dropped.Add(1)
	default:
		s.dropped.Add(1)
	}
}

// Broadcaster fans every message written to its input channel out to all
// subscribers. Each message is offered to the subscribers concurrently, so
// one slow subscriber delays the next message by at most its own timeout;
// per-subscriber order is preserved.
//
// The input channel is closed when the context given to Run is done.
// Anything already buffered is still delivered before Wait returns.
type Broadcaster[T any] struct {
	subs    []*subscriber[T]
	started atomic.Bool
	done    sync.WaitGroup
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe registers ch. Without options a full ch drops the message.
// Must be called before Run.
func (b *Broadcaster[T]) Subscribe(ch chan<- T, opts ...SubscribeOption) error {
	if ch == nil {
		return ErrNilChannel
	}
	if b.started.Load() {
		return ErrAlreadyStarted
	}

	s := &subscriber[T]{ch: ch}
	s.name = fmt.Sprintf("subscriber-%d", len(b.subs))
	for _, opt := range opts {
		if err := opt(&s.subscribeConfig); err != nil {
			return err
		}
	}
	b.subs = append(b.subs, s)

	return nil
}

// Run starts delivery and returns the input channel. Send to it with
// SendNonBlock or SendWithTimeout; it is closed underneath late senders.
func (b *Broadcaster[T]) Run(ctx context.Context) (chan<- T, error) {
	if len(b.subs) == 0 {
		return nil, ErrNoSubscribers
	}
	if !b.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	input := make(chan T, 2*len(b.subs))

	b.done.Go(func() {
		for msg := range input {
			if len(b.subs) == 1 {
				b.subs[0].deliver(msg)
				continue
			}

			var wg sync.WaitGroup
			for _, s := range b.subs {
				wg.Go(func() { s.deliver(msg) })
			}
			wg.Wait()
		}
	})

	go func() {
		<-ctx.Done()
		close(input)
	}()

	return input, nil
}

// Wait blocks until the input channel is closed and drained.
func (b *Broadcaster[T]) Wait() {
	b.done.Wait()
}

// SubscriberStats reports delivery health for one subscriber.
type SubscriberStats struct {
	Name    string
	Dropped int64
	Closed  bool
}

// Stats returns per-subscriber stats in subscription order.
func (b *Broadcaster[T]) Stats() []SubscriberStats {
	out := make([]SubscriberStats, len(b.subs))
	for i, s := range b.subs {
		out[i] = SubscriberStats{Name: s.name, Dropped: s.dropped.Load(), Closed: s.closed.Load()}
	}
	return out
}
