package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

const (
	DefaultExchange   = "boardroom"
	DefaultRoutingKey = "boardroom.discussion"
	Producer          = "boardroom"

	dialTimeout = 10 * time.Second
)

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type Meta struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Producer *string   `json:"producer,omitempty"`
}

type Discussion struct {
	Personas []string `json:"personas"`
	Topic    string   `json:"topic"`
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type channelSource interface {
	channel() (publishChannel, error)
	Close() error
}

type Options struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Publisher emits discussion summaries onto a topic exchange.
type Publisher struct {
	source     channelSource
	exchange   string
	routingKey string
	newID      func() string
}

var _ ports.Notifier = (*Publisher)(nil)

// Dial connects to the broker and declares the exchange.
func Dial(opts Options) (*Publisher, error) {
	opts = withDefaults(opts)
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("amqp url: %w", domain.ErrNotConfigured)
	}

	conn, err := dial(opts.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", opts.Exchange, err)
	}

	return newPublisher(connectionSource{conn: conn}, opts), nil
}

func newPublisher(source channelSource, opts Options) *Publisher {
	opts = withDefaults(opts)
	return &Publisher{
		source:     source,
		exchange:   opts.Exchange,
		routingKey: opts.RoutingKey,
		newID:      uuid.NewString,
	}
}

func withDefaults(opts Options) Options {
	if opts.Exchange == "" {
		opts.Exchange = DefaultExchange
	}
	if opts.RoutingKey == "" {
		opts.RoutingKey = DefaultRoutingKey
	}
	return opts
}

func (p *Publisher) Notify(ctx context.Context, notification domain.Notification) error {
	producer := Producer
	envelope := Envelope{
		Meta: Meta{
			ID:       p.newID(),
			Type:     domain.DiscussionType,
			Time:     notification.SentAt.UTC(),
			Producer: &producer,
		},
		Data: Discussion{
			Personas: append([]string{}, notification.PersonaNames...),
			Topic:    notification.Topic,
		},
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode discussion envelope: %w", err)
	}

	ch, err := p.source.channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	err = ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    envelope.Meta.ID,
		Type:         envelope.Meta.Type,
		Timestamp:    envelope.Meta.Time,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish discussion: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.source.Close()
}

type connectionSource struct {
	conn *amqp091.Connection
}

func (s connectionSource) channel() (publishChannel, error) {
	return s.conn.Channel()
}

func (s connectionSource) Close() error {
	return s.conn.Close()
}

func dial(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(url, amqp091.Config{Dial: amqp091.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("dial amqp broker: %w", err)
	}
	return conn, nil
}
