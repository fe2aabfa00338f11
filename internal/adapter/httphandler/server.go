package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const defaultRequestTimeout = 5 * time.Second

type HTTPServer struct {
	httpServer *http.Server
}

// NewHTTPServer wraps handler with a per-request timeout. Checkout and
// sign-in wait on simulated latency, so requestTimeout must exceed it.
func NewHTTPServer(
	addr string, handler http.Handler, requestTimeout time.Duration,
) HTTPServer {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	handler = http.TimeoutHandler(handler, requestTimeout, "unavailable")
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return HTTPServer{s}
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected servers shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}

// NewHandler registers every storefront route.
func NewHandler(shop Storefront) http.Handler {
	mux := http.NewServeMux()
	RegisterProducts(mux, shop)
	RegisterContent(mux, shop)
	RegisterCart(mux, shop)
	RegisterWishlist(mux, shop)
	RegisterOrders(mux, shop)
	RegisterUI(mux, shop)
	RegisterAuth(mux, shop)
	return LogRequests(AllowJSON(mux))
}
