package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/feidao/event"
	ekafka "github.com/feidao/event/emitter/kafka"
	enats "github.com/feidao/event/emitter/nats"
	eredis "github.com/feidao/event/emitter/redis"
	"github.com/feidao/event/payload"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Remote is an emitter target with a broker connection behind it.
type Remote interface {
	event.EmitterTarget
	Close(ctx context.Context) error
}

type remote struct {
	Remote
	closeConn func() error
}

func (r *remote) Close(ctx context.Context) error {
	return errors.Join(r.Remote.Close(ctx), r.closeConn())
}

// Connect opens the emitter selected by the options.
func (o *Options) Connect() (Remote, error) {
	codec, ok := payload.ByName(o.codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", o.codec)
	}
	logger := event.Logger("eventctl")

	switch o.transport {
	case "nats":
		url := o.url
		if url == "" {
			url = nats.DefaultURL
		}
		nc, err := nats.Connect(url)
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		opts := []enats.Option{enats.WithCodec(codec), enats.WithLogger(logger)}
		if o.prefix != "" {
			opts = append(opts, enats.WithPrefix(o.prefix))
		}
		ee, err := enats.New(nc, opts...)
		if err != nil {
			nc.Close()
			return nil, err
		}
		return &remote{Remote: ee, closeConn: func() error {
			err := nc.Flush()
			nc.Close()
			return err
		}}, nil

	case "redis":
		url := o.url
		if url == "" {
			url = "redis://localhost:6379"
		}
		ropts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(ropts)
		opts := []eredis.Option{eredis.WithCodec(codec), eredis.WithLogger(logger)}
		if o.prefix != "" {
			opts = append(opts, eredis.WithPrefix(o.prefix))
		}
		ee, err := eredis.New(client, opts...)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &remote{Remote: ee, closeConn: client.Close}, nil

	case "kafka":
		brokers := []string{"localhost:9092"}
		if o.url != "" {
			brokers = strings.Split(o.url, ",")
		}
		cfg := sarama.NewConfig()
		cfg.Producer.Return.Successes = true
		cfg.Consumer.Return.Errors = true
		client, err := sarama.NewClient(brokers, cfg)
		if err != nil {
			return nil, fmt.Errorf("kafka connect: %w", err)
		}
		opts := []ekafka.Option{ekafka.WithCodec(codec), ekafka.WithLogger(logger)}
		if o.prefix != "" {
			opts = append(opts, ekafka.WithPrefix(o.prefix))
		}
		ee, err := ekafka.NewFromClient(client, opts...)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &remote{Remote: ee, closeConn: client.Close}, nil

	default:
		return nil, fmt.Errorf("unknown transport %q", o.transport)
	}
}
