// Package nats provides an emitter target backed by NATS Core pub/sub.
//
// Every event type maps to one subject (prefix + type). The first listener for
// a type subscribes and the last removed listener unsubscribes. Emit publishes
// an encoded payload.Envelope.
//
// NATS Core is at-most-once: events published while no process is subscribed
// are dropped. Listeners run on the subscription's delivery goroutine.
package nats

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
	"github.com/nats-io/nats.go"
)

var (
	// ErrConnRequired is returned when no NATS connection is provided
	ErrConnRequired = errors.New("nats connection is required")
	// ErrClosed is returned by operations on a closed emitter
	ErrClosed = errors.New("nats emitter is closed")
)

// Default configuration
var (
	DefaultPrefix  = "events."
	DefaultTimeout = 5 * time.Second
)

// Emitter implements event.EmitterTarget over NATS Core.
type Emitter struct {
	status  int32
	conn    *nats.Conn
	codec   payload.Codec
	logger  *slog.Logger
	onError func(error)
	prefix  string
	queue   string
	source  string
	timeout time.Duration

	local *emitter.Emitter

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// New creates a NATS Core emitter.
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	ee, _ := enats.New(nc, enats.WithPrefix("app."))
func New(conn *nats.Conn, opts ...Option) (*Emitter, error) {
	if conn == nil {
		return nil, ErrConnRequired
	}

	e := &Emitter{
		status:  1,
		conn:    conn,
		codec:   payload.Default(),
		logger:  event.Logger("emitter>nats"),
		onError: func(error) {},
		prefix:  DefaultPrefix,
		source:  uuid.NewString(),
		timeout: DefaultTimeout,
		subs:    make(map[string]*nats.Subscription),
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

func (e *Emitter) subject(typ string) string {
	return e.prefix + typ
}

// On registers cb for typ, subscribing to the type's subject if cb is the
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
	handler := func(msg *nats.Msg) {
		env, err := e.codec.Decode(msg.Data)
		if err != nil {
			e.logger.Warn("dropping undecodable message", "subject", msg.Subject, "error", err)
			e.onError(err)
			return
		}
		if err := e.local.Emit(typ, env.Event()); err != nil {
			e.onError(err)
		}
	}

	subj := e.subject(typ)
	var (
		sub *nats.Subscription
		err error
	)
	if e.queue != "" {
		sub, err = e.conn.QueueSubscribe(subj, e.queue, handler)
	} else {
		sub, err = e.conn.Subscribe(subj, handler)
	}
	if err != nil {
		return err
	}

	// Make sure the server knows about the subscription before returning.
	if err := e.conn.FlushTimeout(e.timeout); err != nil {
		_ = sub.Unsubscribe()
		return err
	}
	e.subs[typ] = sub

	e.logger.Debug("subscribed", "type", typ, "subject", subj, "queue", e.queue)
	return nil
}

// RemoveListener removes cb from typ. Removing the last listener
// unsubscribes the type's subject.
func (e *Emitter) RemoveListener(typ string, cb *event.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.local.RemoveListener(typ, cb); err != nil {
		return err
	}
	if e.local.ListenerCount(typ) > 0 {
		return nil
	}

	sub, ok := e.subs[typ]
	if !ok {
		return nil
	}
	delete(e.subs, typ)
	e.logger.Debug("unsubscribed", "type", typ)
	return sub.Unsubscribe()
}

// Emit publishes ev on typ's subject (fire-and-forget).
func (e *Emitter) Emit(typ string, ev event.Event) error {
	if !e.isOpen() {
		return ErrClosed
	}

	data, err := e.codec.Encode(payload.NewEnvelope(e.source, typ, ev))
	if err != nil {
		return err
	}

	msg := nats.NewMsg(e.subject(typ))
	msg.Header.Set("Content-Type", e.codec.ContentType())
	msg.Data = data
	if err := e.conn.PublishMsg(msg); err != nil {
		e.onError(err)
		return err
	}
	return nil
}

// ListenerCount returns the number of local listeners for typ.
func (e *Emitter) ListenerCount(typ string) int {
	return e.local.ListenerCount(typ)
}

// Close drains every subscription. The connection is left open.
// Close is idempotent.
func (e *Emitter) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.status, 1, 0) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for typ, sub := range e.subs {
		if err := sub.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			errs = append(errs, err)
		}
		delete(e.subs, typ)
	}
	e.local.RemoveAllListeners()

	e.logger.Debug("emitter closed")
	return errors.Join(errs...)
}

// Compile-time check
var _ event.EmitterTarget = (*Emitter)(nil)
