// Package redis provides an emitter target backed by Redis Pub/Sub.
//
// Every event type maps to one Redis channel (prefix + type). The first
// listener for a type subscribes to its channel and the last removed listener
// unsubscribes. Emit publishes an encoded payload.Envelope; every process
// subscribed to the channel, including the emitting one, delivers it to its
// local listeners.
//
// Delivery is at-most-once and asynchronous: listeners run on the
// subscription's receive goroutine, never inside Emit.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	ee, _ := eredis.New(client)
//	defer ee.Close(ctx)
//
//	h, _ := event.On(ee, "order.created", handle)
//	event.Emit(ee, event.NewObject("order.created", nil))
package redis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/feidao/event"
	"github.com/feidao/event/emitter"
	"github.com/feidao/event/payload"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client defines the Redis operations the emitter needs.
// Supports *redis.Client, *redis.ClusterClient, and redis.UniversalClient.
type Client interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

var (
	// ErrClientRequired is returned when no Redis client is provided
	ErrClientRequired = errors.New("redis client is required")
	// ErrClosed is returned by operations on a closed emitter
	ErrClosed = errors.New("redis emitter is closed")
)

// Default configuration
var (
	DefaultPrefix  = "events:"
	DefaultTimeout = 5 * time.Second
)

// Emitter implements event.EmitterTarget over Redis Pub/Sub.
type Emitter struct {
	status  int32
	client  Client
	codec   payload.Codec
	logger  *slog.Logger
	onError func(error)
	prefix  string
	source  string
	timeout time.Duration

	local *emitter.Emitter

	mu   sync.Mutex
	subs map[string]*redis.PubSub
	wg   sync.WaitGroup
}

// New creates a Redis Pub/Sub emitter using a pre-initialized client.
func New(client Client, opts ...Option) (*Emitter, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	e := &Emitter{
		status:  1,
		client:  client,
		codec:   payload.Default(),
		logger:  event.Logger("emitter>redis"),
		onError: func(error) {},
		prefix:  DefaultPrefix,
		source:  uuid.NewString(),
		timeout: DefaultTimeout,
		subs:    make(map[string]*redis.PubSub),
	}

	for _, opt := range opts {
		opt(e)
	}
	e.local = emitter.New(emitter.WithLogger(e.logger), emitter.WithMaxListeners(0))

	return e, nil
}

func (e *Emitter) isOpen() bool {
	return atomic.LoadInt32(&e.status) == 1
}

func (e *Emitter) channel(typ string) string {
	return e.prefix + typ
}

// On registers cb for typ, subscribing to the type's channel if cb is the
// first listener.
func (e *Emitter) On(typ string, cb *event.Callback) error {
	if cb == nil {
		return emitter.ErrNilCallback
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOpen() {
		return ErrClosed
	}

	if _, ok := e.subs[typ]; !ok {
		if err := e.subscribe(typ); err != nil {
			return err
		}
	}
	return e.local.On(typ, cb)
}

// subscribe must be called with e.mu held.
func (e *Emitter) subscribe(typ string) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	ch := e.channel(typ)
	ps := e.client.Subscribe(ctx, ch)
	// Wait for the subscription confirmation so events emitted right after
	// On returns are not missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return err
	}
	e.subs[typ] = ps

	e.wg.Add(1)
	go e.receive(typ, ps.Channel())

	e.logger.Debug("subscribed", "type", typ, "channel", ch)
	return nil
}

func (e *Emitter) receive(typ string, ch <-chan *redis.Message) {
	defer e.wg.Done()

	for msg := range ch {
		env, err := e.codec.Decode([]byte(msg.Payload))
		if err != nil {
			e.logger.Warn("dropping undecodable message", "channel", msg.Channel, "error", err)
			e.onError(err)
			continue
		}
		if err := e.local.Emit(typ, env.Event()); err != nil {
			e.onError(err)
		}
	}
}

// RemoveListener removes cb from typ. Removing the last listener closes the
// type's subscription.
func (e *Emitter) RemoveListener(typ string, cb *event.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.local.RemoveListener(typ, cb); err != nil {
		return err
	}
	if e.local.ListenerCount(typ) > 0 {
		return nil
	}

	ps, ok := e.subs[typ]
	if !ok {
		return nil
	}
	delete(e.subs, typ)
	e.logger.Debug("unsubscribed", "type", typ)
	return ps.Close()
}

// Emit publishes ev on typ's channel.
func (e *Emitter) Emit(typ string, ev event.Event) error {
	if !e.isOpen() {
		return ErrClosed
	}

	data, err := e.codec.Encode(payload.NewEnvelope(e.source, typ, ev))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := e.client.Publish(ctx, e.channel(typ), data).Err(); err != nil {
		e.onError(err)
		return err
	}
	return nil
}

// ListenerCount returns the number of local listeners for typ.
func (e *Emitter) ListenerCount(typ string) int {
	return e.local.ListenerCount(typ)
}

// Close unsubscribes every channel and waits for receive goroutines to exit.
// Close is idempotent.
func (e *Emitter) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.status, 1, 0) {
		return nil
	}

	e.mu.Lock()
	var errs []error
	for typ, ps := range e.subs {
		if err := ps.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(e.subs, typ)
	}
	e.local.RemoveAllListeners()
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	e.logger.Debug("emitter closed")
	return errors.Join(errs...)
}

// Compile-time check
var _ event.EmitterTarget = (*Emitter)(nil)
