package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/lovoo/goka"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/pkg/schema"
)

var (
	_ port.OrderHistoryProcessor = (*OrderHistoryProcessor)(nil)
	_ port.OrderHistory          = (*OrderHistoryView)(nil)
)

var ErrViewNotReady = errors.New("view is not recovered yet")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

// run blocks until the processor is ready or ctx is done.
func (p *processor) run(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// An orderEventCodec used for serde [schema.OrderV1]
type orderEventCodec struct {
	serde Serde
}

func newOrderEventCodec(s Serde) orderEventCodec {
	return orderEventCodec{s}
}

func (c orderEventCodec) Encode(v any) ([]byte, error) {
	const op = "orderEventCodec.Encode"
	if _, ok := v.(schema.OrderV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c orderEventCodec) Decode(data []byte) (any, error) {
	const op = "orderEventCodec.Decode"
	var s schema.OrderV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// An orderListCodec stores a customer's orders in the group table as JSON.
type orderListCodec struct{}

func (orderListCodec) Encode(v any) ([]byte, error) {
	const op = "orderListCodec.Encode"
	l, ok := v.([]schema.OrderV1)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return json.Marshal(l)
}

func (orderListCodec) Decode(data []byte) (any, error) {
	const op = "orderListCodec.Decode"
	var l []schema.OrderV1
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, opErr(err, op)
	}
	return l, nil
}

// appendOrder adds o to the stored list. Redelivered orders are ignored.
func appendOrder(stored any, o schema.OrderV1) ([]schema.OrderV1, bool) {
	l, _ := stored.([]schema.OrderV1)
	for _, v := range l {
		if v.OrderID == o.OrderID {
			return l, false
		}
	}
	return append(l, o), true
}

// An OrderHistoryProcessor folds the orders stream into per-customer
// order lists kept in its group table.
type OrderHistoryProcessor struct {
	opPrefix string
	proc     processor
}

func NewOrderHistoryProc(
	seedBrokers []string,
	inputStream string,
	group string,
	orderSerde Serde,
) (*OrderHistoryProcessor, error) {
	const op = "NewOrderHistoryProc"

	p := OrderHistoryProcessor{opPrefix: "OrderHistoryProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newOrderEventCodec(orderSerde),
			p.processFn,
		),
		goka.Persist(orderListCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	return &p, nil
}

func (p *OrderHistoryProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc,
) {
	p.proc.run(ctx, stopFn)
}

func (p *OrderHistoryProcessor) Close() {
	p.proc.close()
}

func (p *OrderHistoryProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	order, ok := msg.(schema.OrderV1)
	if !ok {
		return
	}
	log := slog.With("op", makeOp(p.opPrefix, op), "orderID", order.OrderID)

	l, added := appendOrder(ctx.Value(), order)
	if !added {
		log.Warn("order already recorded")
		return
	}
	ctx.SetValue(l)
	log.Info("order recorded", "customerOrders", len(l))
}

// An OrderHistoryView reads the order history group table.
type OrderHistoryView struct {
	gv *goka.View
}

func NewOrderHistoryView(
	seedBrokers []string, group string,
) (*OrderHistoryView, error) {
	const op = "NewOrderHistoryView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		orderListCodec{},
		withNonlogViewOpt(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}
	return &OrderHistoryView{gv}, nil
}

func (v *OrderHistoryView) Run(ctx context.Context, stopFn context.CancelFunc) {
	const op = "OrderHistoryView.Run"
	log := slog.With("op", op)

	defer stopFn()

	log.Info("running")
	if err := v.gv.Run(ctx); err != nil {
		log.Error("unexpected fail on run", "err", err)
		return
	}
	log.Info("stopped")
}

// UserOrders returns the customer's orders, newest first.
func (v *OrderHistoryView) UserOrders(
	ctx context.Context, email string,
) ([]domain.Order, error) {
	const op = "OrderHistoryView.UserOrders"

	if err := ctx.Err(); err != nil {
		return nil, opErr(err, op)
	}

	if !v.gv.Recovered() {
		return nil, opErr(ErrViewNotReady, op)
	}

	stored, err := v.gv.Get(customerKey(email))
	if err != nil {
		return nil, opErr(err, op)
	}

	orders, err := ordersFromTable(stored)
	if err != nil {
		return nil, opErr(err, op)
	}
	return orders, nil
}

func ordersFromTable(stored any) ([]domain.Order, error) {
	if stored == nil {
		return []domain.Order{}, nil
	}

	l, ok := stored.([]schema.OrderV1)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrInvalidValueType, stored)
	}

	orders := make([]domain.Order, 0, len(l))
	for i := len(l) - 1; i >= 0; i-- {
		o, err := schemaV1ToOrder(l[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
