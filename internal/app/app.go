package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/souvenir-shop/config"
	"github.com/niksmo/souvenir-shop/internal/adapter"
	"github.com/niksmo/souvenir-shop/internal/adapter/checkout"
	"github.com/niksmo/souvenir-shop/internal/adapter/httphandler"
	"github.com/niksmo/souvenir-shop/internal/adapter/kafka"
	"github.com/niksmo/souvenir-shop/internal/adapter/memcatalog"
	"github.com/niksmo/souvenir-shop/internal/adapter/storage"
	"github.com/niksmo/souvenir-shop/internal/core/notify"
	"github.com/niksmo/souvenir-shop/internal/core/persist"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/internal/core/service"
	"github.com/niksmo/souvenir-shop/internal/core/state"
	"github.com/niksmo/souvenir-shop/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type outbound struct {
	kv      port.KVStorage
	catalog port.CatalogSupplier
	orders  port.OrderSubmitter
	history port.OrderHistory
}

// Kafka side of the order flow, nil with the mock driver.
type orderStream struct {
	producer    *kafka.OrderProducer
	historyProc port.OrderHistoryProcessor
	historyView *kafka.OrderHistoryView
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	brokerTLS  *tls.Config
	sqlDB      *storage.SQLDB
	outbound   outbound
	stream     orderStream
	stores     persist.Stores
	toasts     *notify.Channel
	service    *service.Service
	httpServer httphandler.HTTPServer
	stopRun    context.CancelFunc
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg, stopRun: func() {}}

	app.initLogger()
	app.initStorage()
	app.initStores()
	app.initCatalog()
	app.initOrders()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	if app.cfg.Storage.Driver != config.StoragePostgres {
		app.outbound.kv = storage.NewMemoryStorage()
		return
	}

	sqlDB, err := storage.NewSQLDB(app.ctx, app.cfg.Storage.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqlDB = &sqlDB
	app.outbound.kv = storage.NewClientStateRepository(sqlDB, app.cfg.ClientScope)
}

// initStores restores the client stores before anything can mutate them.
func (app *App) initStores() {
	app.stores = persist.Stores{
		Cart:     state.NewCart(),
		Wishlist: state.NewWishlist(),
		Theme:    state.NewTheme(),
	}

	p := persist.New(app.outbound.kv)
	p.Hydrate(app.ctx, app.stores)
	p.Attach(app.ctx, app.stores)
}

func (app *App) initCatalog() {
	const op = "App.initCatalog"

	c, err := memcatalog.New(
		memcatalog.LatencyOpt(app.cfg.Catalog.Latency),
		memcatalog.FileOpt(app.cfg.Catalog.File),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.catalog = c
}

func (app *App) initOrders() {
	const op = "App.initOrders"

	if app.cfg.Orders.Driver != config.OrdersKafka {
		m, err := checkout.NewMockSubmitter(
			checkout.LatencyOpt(app.cfg.Orders.Latency),
		)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.orders = m
		app.outbound.history = m
		return
	}

	app.initBrokerTLS()
	serde := app.initOrderSerde()
	app.initOrderStream(serde)
}

func (app *App) initBrokerTLS() {
	const op = "App.initBrokerTLS"

	paths := app.cfg.Broker.TLS
	if !paths.Enabled() {
		return
	}
	tlsConfig, err := adapter.LoadClientTLS(paths.CA, paths.Cert, paths.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	app.brokerTLS = tlsConfig
	kafka.ConfigureGoka(tlsConfig)
}

func (app *App) initOrderSerde() schema.Serde {
	const op = "App.initOrderSerde"

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.brokerTLS != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.brokerTLS))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	orderSerde, err := schema.NewSerdeOrderV1(
		app.ctx,
		schema.SubjectOpt(app.cfg.Broker.Topics.Orders+"-value"),
		schema.SchemaIdentifierOpt(schema.NewRegistryIdentifier(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	return orderSerde
}

func (app *App) initOrderStream(orderSerde schema.Serde) {
	const op = "App.initOrderStream"

	seedBrokers := app.cfg.Broker.SeedBrokers
	ordersTopic := app.cfg.Broker.Topics.Orders
	historyGroup := app.cfg.Broker.Consumers.OrderHistoryGroup

	producer, err := kafka.NewOrderProducer(
		kafka.ProducerClientOpt(app.ctx, seedBrokers, ordersTopic, app.brokerTLS),
		kafka.ProducerEncoderOpt(orderSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	historyProc, err := kafka.NewOrderHistoryProc(
		seedBrokers, ordersTopic, historyGroup, orderSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	historyView, err := kafka.NewOrderHistoryView(seedBrokers, historyGroup)
	if err != nil {
		app.fallDown(op, err)
	}

	app.stream = orderStream{
		producer:    &producer,
		historyProc: historyProc,
		historyView: historyView,
	}
	app.outbound.orders = producer
	app.outbound.history = historyView
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	app.toasts = notify.New()

	s, err := service.New(
		app.outbound.catalog,
		app.outbound.orders,
		app.outbound.history,
		app.stores,
		app.toasts,
		service.AuthLatencyOpt(app.cfg.Auth.Latency),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.service = s
}

func (app *App) initInboundAdapters() {
	handler := httphandler.NewHandler(app.service)
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.RequestTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	ctx, cancel := context.WithCancel(app.ctx)
	app.stopRun = cancel

	if app.stream.historyProc != nil {
		app.stream.historyProc.Run(ctx, stopFn)
		go app.stream.historyView.Run(ctx, stopFn)
	}

	go app.warmup(ctx)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) warmup(ctx context.Context) {
	const op = "App.warmup"
	log := slog.With("op", op)

	if err := app.service.Warmup(ctx); err != nil {
		log.Error("catalog is unavailable", "err", err)
		return
	}
	log.Info("catalog is ready")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.stopRun()
	if app.stream.historyProc != nil {
		app.stream.historyProc.Close()
		app.stream.producer.Close()
	}
	app.toasts.Close()
	if app.sqlDB != nil {
		app.sqlDB.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
