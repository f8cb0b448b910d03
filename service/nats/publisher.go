package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher emits payment events for downstream consumers. Publication is
// best-effort from the pipeline's point of view: a failed publish never fails
// the payment that produced the event.
type Publisher interface {
	PublishPayment(ctx context.Context, event *PaymentEvent) error
	Close() error
}

// Stream layout. Each payer gets its own subject in the payments.* space so
// consumers can subscribe per payer or to the whole firehose.
const (
	streamName   = "PAYMENTS"
	streamDesc   = "Outbound payment events"
	subjectSpace = "payments.*"
	streamMaxAge = 30 * 24 * time.Hour
	setupTimeout = 10 * time.Second
)

// JetStreamPublisher is the production Publisher. It owns its NATS
// connection and declares the payments stream on construction, so a
// misconfigured broker fails at startup rather than on the first payment.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

func NewPublisher(natsURL string, logger *slog.Logger) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("solcash-publisher"),
		nats.Timeout(setupTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: streamDesc,
		Subjects:    []string{subjectSpace},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      streamMaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to declare stream %s: %w", streamName, err)
	}

	logger.Info("NATS publisher ready", "url", natsURL, "stream", streamName)

	return &JetStreamPublisher{nc: nc, js: js, logger: logger}, nil
}

func subjectFor(event *PaymentEvent) string {
	return "payments." + event.PayerAddress
}

func (p *JetStreamPublisher) PublishPayment(ctx context.Context, event *PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	subject := subjectFor(event)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.Debug("published payment event",
		"subject", subject,
		"signature", event.Signature,
		"status", event.Status,
	)
	return nil
}

func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
		p.logger.Info("NATS publisher closed")
	}
	return nil
}
