package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/niksmo/souvenir-shop/config"
	"github.com/niksmo/souvenir-shop/internal/adapter"
	"github.com/niksmo/souvenir-shop/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

func main() {
	ctx, stop := sigctx.NotifyContext()
	defer stop()

	cfg := config.Load()
	specs := orderStreamTopics(cfg)

	adm, err := newAdminClient(cfg)
	if err != nil {
		fmt.Printf("broker admin: %v\n", err)
		os.Exit(2)
	}
	defer adm.Close()

	fmt.Println("order stream topics:")
	for _, s := range specs {
		fmt.Printf("\t- %s\n", s)
	}
	fmt.Println()

	start := time.Now()
	if err := createAll(ctx, adm, specs); err != nil {
		fmt.Printf("\nsome topics were not created:\n%s\n", err)
		os.Exit(1)
	}
	fmt.Printf("\ndone in %s\n", time.Since(start))
}

func newAdminClient(cfg config.Config) (*kadm.Client, error) {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}

	if paths := cfg.Broker.TLS; paths.Enabled() {
		tlsConfig, err := adapter.LoadClientTLS(paths.CA, paths.Cert, paths.Key)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	return kadm.NewOptClient(opts...)
}

// createAll keeps going after a failed topic and reports every failure.
func createAll(ctx context.Context, adm *kadm.Client, specs []topicSpec) error {
	var errs []error
	for _, s := range specs {
		resps, err := adm.CreateTopics(
			ctx, s.partitions, s.replicas, s.configs(), s.name,
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		for _, res := range resps.Sorted() {
			msg, err := outcome(res)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Println(msg)
		}
	}
	return errors.Join(errs...)
}
