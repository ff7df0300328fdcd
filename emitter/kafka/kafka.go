// Package kafka provides an emitter target backed by Kafka topics.
//
// Every event type maps to one topic (prefix + type). The first listener for
// a type starts a partition consumer at the newest offset, so only events
// produced after On returns are delivered. Emit produces an encoded
// payload.Envelope with a sync producer.
//
// The emitter does not use consumer groups: each Emitter sees every event
// produced to the configured partition, which gives the broadcast semantics
// of an in-process emitter.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/IBM/sarama"
	"github.com/feidao/event"
	"github.com/feidao/event/emitter"
	"github.com/feidao/event/payload"
	"github.com/google/uuid"
)

// Errors
var (
	ErrProducerRequired = errors.New("kafka producer is required")
	ErrConsumerRequired = errors.New("kafka consumer is required")
	ErrClientRequired   = errors.New("kafka client is required")
	ErrProducerFailed   = errors.New("failed to create kafka producer")
	ErrConsumerFailed   = errors.New("failed to create kafka consumer")
	ErrClosed           = errors.New("kafka emitter is closed")
)

// Default configuration
var (
	DefaultPrefix    = "events."
	DefaultPartition = int32(0)
)

// Emitter implements event.EmitterTarget over Kafka.
type Emitter struct {
	status    int32
	producer  sarama.SyncProducer
	consumer  sarama.Consumer
	owned     bool // producer and consumer were created by NewFromClient
	codec     payload.Codec
	logger    *slog.Logger
	onError   func(error)
	prefix    string
	source    string
	partition int32

	local *emitter.Emitter

	mu        sync.Mutex
	consumers map[string]*partition
	wg        sync.WaitGroup
}

// partition is the consumer of one event type's topic. A stopping partition
// stays registered until its consume goroutine exits, because sarama refuses
// a second consumer for the same partition before then.
type partition struct {
	pc       sarama.PartitionConsumer
	stopping bool
}

// New creates a Kafka emitter from a producer and a consumer the caller owns.
//
// The producer config must have Producer.Return.Successes enabled, as
// required by sarama for sync producers.
func New(producer sarama.SyncProducer, consumer sarama.Consumer, opts ...Option) (*Emitter, error) {
	if producer == nil {
		return nil, ErrProducerRequired
	}
	if consumer == nil {
		return nil, ErrConsumerRequired
	}

	e := &Emitter{
		status:    1,
		producer:  producer,
		consumer:  consumer,
		codec:     payload.Default(),
		logger:    event.Logger("emitter>kafka"),
		onError:   func(error) {},
		prefix:    DefaultPrefix,
		source:    uuid.NewString(),
		partition: DefaultPartition,
		consumers: make(map[string]*partition),
	}

	for _, opt := range opts {
		opt(e)
	}
	e.local = emitter.New(emitter.WithLogger(e.logger), emitter.WithMaxListeners(0))

	return e, nil
}

// NewFromClient creates a Kafka emitter with a producer and consumer built on
// client. Close releases both; the client itself stays open.
func NewFromClient(client sarama.Client, opts ...Option) (*Emitter, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		return nil, errors.Join(ErrProducerFailed, err)
	}
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = producer.Close()
		return nil, errors.Join(ErrConsumerFailed, err)
	}

	e, err := New(producer, consumer, opts...)
	if err != nil {
		return nil, err
	}
	e.owned = true
	return e, nil
}

func (e *Emitter) isOpen() bool {
	return atomic.LoadInt32(&e.status) == 1
}

func (e *Emitter) topic(typ string) string {
	return e.prefix + typ
}

// On registers cb for typ, starting a partition consumer for the type's topic
// if cb is the first listener.
func (e *Emitter) On(typ string, cb *event.Callback) error {
	if cb == nil {
		return emitter.ErrNilCallback
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOpen() {
		return ErrClosed
	}

	// A stopping partition is restarted by its consume goroutine once it has
	// drained, so registering the listener is enough.
	if _, ok := e.consumers[typ]; !ok {
		if err := e.start(typ, sarama.OffsetNewest); err != nil {
			return err
		}
	}
	return e.local.On(typ, cb)
}

// start must be called with e.mu held.
func (e *Emitter) start(typ string, offset int64) error {
	topic := e.topic(typ)
	pc, err := e.consumer.ConsumePartition(topic, e.partition, offset)
	if err != nil {
		return err
	}
	p := &partition{pc: pc}
	e.consumers[typ] = p

	e.wg.Add(1)
	go e.consume(typ, p)

	e.logger.Debug("consuming", "type", typ, "topic", topic, "partition", e.partition, "offset", offset)
	return nil
}

func (e *Emitter) consume(typ string, p *partition) {
	defer e.wg.Done()

	next := sarama.OffsetNewest
	defer func() { e.finish(typ, p, next) }()

	messages, errs := p.pc.Messages(), p.pc.Errors()
	for messages != nil || errs != nil {
		select {
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			next = msg.Offset + 1
			env, err := e.codec.Decode(msg.Value)
			if err != nil {
				e.logger.Warn("dropping undecodable message",
					"topic", msg.Topic, "offset", msg.Offset, "error", err)
				e.onError(err)
				continue
			}
			if err := e.local.Emit(typ, env.Event()); err != nil {
				e.onError(err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			e.logger.Error("consumer error", "type", typ, "error", err)
			e.onError(err)
		}
	}
}

// RemoveListener removes cb from typ. Removing the last listener stops the
// type's partition consumer.
func (e *Emitter) RemoveListener(typ string, cb *event.Callback) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.local.RemoveListener(typ, cb); err != nil {
		return err
	}
	if e.local.ListenerCount(typ) > 0 {
		return nil
	}

	p, ok := e.consumers[typ]
	if !ok || p.stopping {
		return nil
	}
	p.stopping = true
	e.logger.Debug("stopping consumer", "type", typ)
	p.pc.AsyncClose()
	return nil
}

// finish runs when a consume goroutine exits. If listeners were added while
// the partition was stopping, consumption resumes after the last delivered
// offset.
func (e *Emitter) finish(typ string, p *partition, next int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.consumers[typ] != p {
		return
	}
	delete(e.consumers, typ)
	if !e.isOpen() || e.local.ListenerCount(typ) == 0 {
		e.logger.Debug("stopped consuming", "type", typ)
		return
	}
	if err := e.start(typ, next); err != nil {
		e.logger.Error("failed to resume consumer", "type", typ, "error", err)
		e.onError(err)
	}
}

// Emit produces ev to typ's topic and waits for the broker acknowledgment.
func (e *Emitter) Emit(typ string, ev event.Event) error {
	if !e.isOpen() {
		return ErrClosed
	}

	env := payload.NewEnvelope(e.source, typ, ev)
	data, err := e.codec.Encode(env)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: e.topic(typ),
		Key:   sarama.StringEncoder(env.ID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte(e.codec.ContentType())},
		},
	}
	if _, _, err := e.producer.SendMessage(msg); err != nil {
		e.onError(err)
		return err
	}
	return nil
}

// ListenerCount returns the number of local listeners for typ.
func (e *Emitter) ListenerCount(typ string) int {
	return e.local.ListenerCount(typ)
}

// Close stops every partition consumer and waits for them to drain. When the
// emitter was built by NewFromClient it also closes the producer and consumer.
// Close is idempotent.
func (e *Emitter) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.status, 1, 0) {
		return nil
	}

	e.mu.Lock()
	for typ, p := range e.consumers {
		if !p.stopping {
			p.pc.AsyncClose()
		}
		delete(e.consumers, typ)
	}
	e.local.RemoveAllListeners()
	e.mu.Unlock()

	var errs []error
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

	if e.owned {
		if err := e.producer.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := e.consumer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	e.logger.Debug("emitter closed")
	return errors.Join(errs...)
}

// Compile-time check
var _ event.EmitterTarget = (*Emitter)(nil)
