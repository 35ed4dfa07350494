// Command catalogctl queries a running catalog over gRPC.
//
//	catalogctl [-config catalogctl.yaml] [-addr host:port] list
//	catalogctl [-config catalogctl.yaml] [-addr host:port] get <id>
//	catalogctl [-config catalogctl.yaml] [-addr host:port] health
//	catalogctl [-config catalogctl.yaml] watch
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/abgdnv/productcatalog/internal/client"
	"github.com/abgdnv/productcatalog/internal/config"
	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/events"
	catalogv1 "github.com/abgdnv/productcatalog/pkg/api/catalog/v1"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	pnats "github.com/abgdnv/productcatalog/pkg/nats"
)

const serviceName = "catalogctl"

var errUsage = errors.New("usage: catalogctl [-config file] [-addr host:port] list | get <id> | health | watch")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configFile := fs.String("config", "catalogctl.yaml", "path to the yaml config file")
	addr := fs.String("addr", "", "catalog gRPC address, overrides grpc.addr")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *addr != "" {
		// environment has the highest priority in the loader
		if err := os.Setenv("CATALOGCTL_GRPC_ADDR", *addr); err != nil {
			return err
		}
	}

	cfg, err := configloader.Load[*config.CtlConfig](serviceName, configloader.WithConfigFile(*configFile))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch {
	case fs.Arg(0) == "list" && fs.NArg() == 1:
		return withClient(cfg, func(c *client.Client) error {
			products, err := c.List(ctx)
			if err != nil {
				return err
			}
			return printTable(out, products)
		})
	case fs.Arg(0) == "get" && fs.NArg() == 2:
		id, err := strconv.ParseInt(fs.Arg(1), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", fs.Arg(1), err)
		}
		return withClient(cfg, func(c *client.Client) error {
			product, err := c.Get(ctx, id)
			if errors.Is(err, perrors.ErrProductNotFound) {
				return fmt.Errorf("product %d not found", id)
			}
			if err != nil {
				return err
			}
			return printJSON(out, product)
		})
	case fs.Arg(0) == "health" && fs.NArg() == 1:
		return withClient(cfg, func(c *client.Client) error {
			if err := c.Healthy(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintln(out, "SERVING")
			return err
		})
	case fs.Arg(0) == "watch" && fs.NArg() == 1:
		return watch(ctx, cfg, out)
	default:
		return errUsage
	}
}

func withClient(cfg *config.CtlConfig, fn func(c *client.Client) error) error {
	c, err := client.New(cfg.GRPC)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// watch prints catalog events from JetStream until ctx is cancelled.
func watch(ctx context.Context, cfg *config.CtlConfig, out io.Writer) error {
	if !cfg.NATS.Enabled {
		return errors.New("watch requires nats.enabled")
	}
	nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return err
	}
	defer nc.Close()
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return err
	}
	if err := pnats.EnsureStream(ctx, js, cfg.Subscriber.Stream, events.SubjectWildcard); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var mu sync.Mutex
	handler := func(_ context.Context, subject string, data []byte) error {
		event, err := events.Decode(subject, data)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		_, err = fmt.Fprintln(out, formatEvent(event))
		return err
	}

	err = pnats.Subscribe(ctx, js, cfg.Subscriber, handler, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func formatEvent(event messaging.Event) string {
	switch e := event.(type) {
	case events.ProductCreatedEvent:
		return fmt.Sprintf("%s created  id=%d name=%q price=%s quantity=%d",
			e.OccurredAt.Format(time.RFC3339), e.Product.ID, e.Product.Name, e.Product.Price, e.Product.Quantity)
	case events.ProductUpdatedEvent:
		return fmt.Sprintf("%s updated  id=%d name=%q price=%s quantity=%d",
			e.OccurredAt.Format(time.RFC3339), e.Product.ID, e.Product.Name, e.Product.Price, e.Product.Quantity)
	case events.ProductRemovedEvent:
		return fmt.Sprintf("%s removed  id=%d", e.OccurredAt.Format(time.RFC3339), e.ProductID)
	default:
		return event.Subject()
	}
}

func printTable(out io.Writer, products []catalogv1.Product) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQUANTITY")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.String(), p.Quantity)
	}
	return w.Flush()
}

func printJSON(out io.Writer, p *catalogv1.Product) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"id":       p.ID,
		"name":     p.Name,
		"price":    p.Price,
		"quantity": p.Quantity,
	})
}
