package event

import (
	"context"
	"fmt"
	"strconv"

	"github.com/IGDevX/marche-conclu-shop-service/internal/indexer"
	pkgkafka "github.com/IGDevX/marche-conclu-shop-service/pkg/kafka"
)

// DLQSource names the dead-letter topic for index jobs:
// pkgkafka.DLQTopic(DLQSource) == "shop.dlq.product-index".
const DLQSource = "product-index"

// TypeIndexFailed is the event type of a dead-lettered index job.
const TypeIndexFailed = "index.failed"

// IndexFailedData is the payload of an index.failed event.
type IndexFailedData struct {
	Op        string `json:"op"`
	ProductID int64  `json:"product_id"`
	Error     string `json:"error"`
	Attempts  int    `json:"attempts"`
}

// DLQWriter is the part of *pkgkafka.DLQProducer the sink needs.
type DLQWriter interface {
	Publish(ctx context.Context, source string, event *pkgkafka.Event, cause error, attempts int) error
}

// DLQSink implements indexer.DeadLetter on top of the DLQ topic.
type DLQSink struct {
	dlq DLQWriter
}

// NewDLQSink creates a sink.
func NewDLQSink(dlq DLQWriter) *DLQSink {
	return &DLQSink{dlq: dlq}
}

var _ indexer.DeadLetter = (*DLQSink)(nil)

// IndexFailed publishes the exhausted job.
func (s *DLQSink) IndexFailed(ctx context.Context, op indexer.Op, productID int64, cause error, attempts int) error {
	data := IndexFailedData{
		Op:        string(op),
		ProductID: productID,
		Attempts:  attempts,
	}
	if cause != nil {
		data.Error = cause.Error()
	}

	evt, err := pkgkafka.NewEventFromContext(ctx, TypeIndexFailed, strconv.FormatInt(productID, 10),
		AggregateTypeProduct, SourceShopService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TypeIndexFailed, err)
	}
	evt.WithMetadata("op", string(op))
	return s.dlq.Publish(ctx, DLQSource, evt, cause, attempts)
}
