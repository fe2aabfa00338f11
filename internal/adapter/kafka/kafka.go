package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lovoo/goka"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt dials the brokers. tlsConfig may be nil.
func ProducerClientOpt(
	ctx context.Context,
	seedBrokers []string,
	topic string,
	tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// ConfigureGoka switches goka's global sarama config to TLS.
// Call it before any processor or view is created.
func ConfigureGoka(tlsConfig *tls.Config) {
	if tlsConfig == nil {
		return
	}
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func withNonlogViewOpt() goka.ViewOption {
	return goka.WithViewLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

// customerKey is the record and table key of a customer's orders.
func customerKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func orderToSchemaV1(v domain.Order) (s schema.OrderV1) {
	s.OrderID = v.ID
	s.PlacedAt = v.Date.UTC()
	s.FullName = v.Shipping.FullName
	s.Email = v.Shipping.Email
	s.Address = v.Shipping.Address
	s.City = v.Shipping.City
	s.Country = v.Shipping.Country
	s.Total = v.Total.String()
	s.Status = string(v.Status)

	s.Items = make([]schema.OrderLineV1, len(v.Items))
	for i, l := range v.Items {
		s.Items[i].ProductID = int64(l.ID)
		s.Items[i].Name = l.Name
		s.Items[i].Price = l.Price.String()
		s.Items[i].Quantity = l.Quantity
	}
	return
}

func schemaV1ToOrder(s schema.OrderV1) (domain.Order, error) {
	total, err := decimal.NewFromString(s.Total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: total: %w", s.OrderID, err)
	}

	o := domain.Order{
		ID:   s.OrderID,
		Date: s.PlacedAt,
		Shipping: domain.ShippingInfo{
			FullName: s.FullName,
			Email:    s.Email,
			Address:  s.Address,
			City:     s.City,
			Country:  s.Country,
		},
		Total:  total,
		Status: domain.OrderStatus(s.Status),
		Items:  make([]domain.CartLine, len(s.Items)),
	}

	for i, l := range s.Items {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return domain.Order{}, fmt.Errorf(
				"order %s: line %d: price: %w", s.OrderID, l.ProductID, err,
			)
		}
		o.Items[i] = domain.CartLine{
			Product: domain.Product{
				ID:    int(l.ProductID),
				Name:  l.Name,
				Price: price,
			},
			Quantity: l.Quantity,
		}
	}
	return o, nil
}
