package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.OrderSubmitter = (*OrderProducer)(nil)

const eventIDHeader = "event-id"

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An OrderProducer submits orders to the orders topic.
//
// Records are keyed by the customer email.
type OrderProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
	now      func() time.Time
}

func NewOrderProducer(
	opts ...ProducerOpt,
) (OrderProducer, error) {
	const op = "NewOrderProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrderProducer{}, opErr(err, op)
		}
	}

	opPrefix := "OrderProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return OrderProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
		now:      time.Now,
	}, nil
}

func (p OrderProducer) Close() {
	p.producer.close()
}

func (p OrderProducer) SubmitOrder(
	ctx context.Context, o domain.Order,
) (domain.OrderReceipt, error) {
	const op = "SubmitOrder"
	log := slog.With("op", makeOp(p.opPrefix, op))

	if err := ctx.Err(); err != nil {
		return domain.OrderReceipt{}, opErr(err, p.opPrefix, op)
	}

	if o.ID == "" {
		o.ID = domain.NewOrderID()
	}
	if o.Date.IsZero() {
		o.Date = p.now()
	}
	if o.Status == "" {
		o.Status = domain.OrderProcessing
	}

	r, err := p.createRecord(o)
	if err != nil {
		return domain.OrderReceipt{}, opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return domain.OrderReceipt{}, opErr(err, p.opPrefix, op)
	}

	log.Info("order produced", "orderID", o.ID)
	return domain.OrderReceipt{Success: true, OrderID: o.ID}, nil
}

func (p OrderProducer) createRecord(o domain.Order) (*kgo.Record, error) {
	const op = "createRecord"

	s := orderToSchemaV1(o)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}

	return &kgo.Record{
		Key:   []byte(customerKey(s.Email)),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: eventIDHeader, Value: []byte(uuid.NewString())},
		},
	}, nil
}
