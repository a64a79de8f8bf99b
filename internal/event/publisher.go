// Package event puts product changes and failed index jobs on the Kafka bus.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IGDevX/marche-conclu-shop-service/internal/indexer"
	"github.com/IGDevX/marche-conclu-shop-service/internal/relay"
	pkgkafka "github.com/IGDevX/marche-conclu-shop-service/pkg/kafka"
)

// Event types published on the product topic.
const (
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"
)

// AggregateTypeProduct is the aggregate type of every product event.
const AggregateTypeProduct = "product"

// SourceShopService identifies events originating from this service.
const SourceShopService = "shop-service"

// EventPublisher is the part of *pkgkafka.Producer the publisher needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// ProductChangedData is the payload of product.updated and product.deleted.
type ProductChangedData struct {
	ProductID int64 `json:"product_id"`
}

// DefaultPublishTimeout bounds a single change publish.
const DefaultPublishTimeout = 5 * time.Second

// Runner runs tasks off the caller's goroutine. *indexer.Pool satisfies it.
type Runner interface {
	Submit(task indexer.Task) error
}

// ChangePublisher announces committed product changes. It is registered on
// the relay next to the index handler.
type ChangePublisher struct {
	producer EventPublisher
	topic    string
	runner   Runner
	timeout  time.Duration
	logger   *slog.Logger
}

// PublisherOption customizes a ChangePublisher.
type PublisherOption func(*ChangePublisher)

// WithRunner publishes on r so the request that committed the change does not
// wait on the broker.
func WithRunner(r Runner) PublisherOption {
	return func(p *ChangePublisher) { p.runner = r }
}

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *ChangePublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewChangePublisher creates a publisher writing to topic.
func NewChangePublisher(producer EventPublisher, topic string, logger *slog.Logger, opts ...PublisherOption) *ChangePublisher {
	p := &ChangePublisher{producer: producer, topic: topic, timeout: DefaultPublishTimeout, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleProductEvent implements relay.Handler. With a runner the publish is
// scheduled and only a scheduling failure is returned.
func (p *ChangePublisher) HandleProductEvent(ctx context.Context, e relay.Event) error {
	eventType := TypeProductUpdated
	if e.Kind == relay.KindDeleted {
		eventType = TypeProductDeleted
	}

	id := strconv.FormatInt(e.ProductID, 10)
	evt, err := pkgkafka.NewEventFromContext(ctx, eventType, id, AggregateTypeProduct, SourceShopService,
		ProductChangedData{ProductID: e.ProductID})
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if p.runner == nil {
		return p.publish(ctx, evt, e.ProductID)
	}

	values := context.WithoutCancel(ctx)
	err = p.runner.Submit(func(poolCtx context.Context) {
		ctx, cancel := context.WithCancel(values)
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()

		if err := p.publish(ctx, evt, e.ProductID); err != nil {
			p.logger.ErrorContext(ctx, "product change not published",
				slog.Int64("product_id", e.ProductID),
				slog.String("error", err.Error()),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s event: %w", eventType, err)
	}
	return nil
}

func (p *ChangePublisher) publish(ctx context.Context, evt *pkgkafka.Event, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.producer.Publish(ctx, p.topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.EventType, err)
	}
	p.logger.DebugContext(ctx, "published product change",
		slog.String("event_type", evt.EventType),
		slog.Int64("product_id", productID),
	)
	return nil
}
