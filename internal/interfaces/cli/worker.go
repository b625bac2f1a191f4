package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent-radar/internal/application/lifecycle"
	"github.com/turtacn/patent-radar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/pkg/types/common"
)

// NewWorkerCmd builds the background worker command.  The worker consumes
// lifecycle events from the bus, repairs missing embeddings, and
// periodically recomputes patents approaching expiration so status changes
// and fee reminders fire without API traffic.
func NewWorkerCmd(opts *RootOptions) *cobra.Command {
	var (
		sweepInterval  time.Duration
		expiringWindow int
		backfillBatch  int
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the patradar background worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd, opts, sweepInterval, expiringWindow, backfillBatch)
		},
	}

	cmd.Flags().DurationVar(&sweepInterval, "sweep-interval", time.Hour, "how often to recompute soon-expiring patents")
	cmd.Flags().IntVar(&expiringWindow, "expiring-window", 30, "days ahead the recompute sweep looks")
	cmd.Flags().IntVar(&backfillBatch, "backfill-batch", 100, "embedding backfill batch size per ingest event")
	return cmd
}

func runWorker(cmd *cobra.Command, opts *RootOptions, sweepInterval time.Duration, expiringWindow, backfillBatch int) error {
	cfg, err := loadServerConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	svcs, err := buildServices(b)
	if err != nil {
		return err
	}

	handler := func(ctx context.Context, envelope kafka.Envelope) error {
		switch envelope.EventType {
		case kafka.TopicPatentIngested:
			// Ingestion tolerates embedding failures, so every ingest
			// event triggers a repair batch for vectorless patents.
			embedded, err := svcs.patents.BackfillEmbeddings(ctx, backfillBatch)
			if err != nil {
				return err
			}
			if embedded > 0 {
				logger.Info("backfilled embeddings", logging.Int("count", embedded))
			}
			return nil
		case kafka.TopicPatentStatusChanged, kafka.TopicPatentFeeDue:
			logger.Info("lifecycle event",
				logging.String("event_type", envelope.EventType),
				logging.String("event_id", envelope.EventID))
			return nil
		default:
			logger.Warn("unhandled event type", logging.String("event_type", envelope.EventType))
			return nil
		}
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Consumer, handler, logger)
	defer consumer.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(ctx) })
	g.Go(func() error { return sweepLoop(ctx, svcs.lifecycle, logger, sweepInterval, expiringWindow) })

	logger.Info("worker started",
		logging.Duration("sweep_interval", sweepInterval),
		logging.Int("expiring_window_days", expiringWindow))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// sweepLoop periodically recomputes soon-expiring patents so expirations and
// maintenance fee windows that passed since the last write are reflected,
// publishing the resulting status change events.
func sweepLoop(ctx context.Context, svc lifecycle.Service, logger logging.Logger, interval time.Duration, windowDays int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := sweepExpiring(ctx, svc, logger, windowDays); err != nil {
				logger.Error("recompute sweep failed", logging.Err(err))
			}
		}
	}
}

func sweepExpiring(ctx context.Context, svc lifecycle.Service, logger logging.Logger, windowDays int) error {
	const pageSize = 200

	recomputed := 0
	for page := 1; ; page++ {
		resp, err := svc.Expiring(ctx, lifecycle.ExpiringRequest{
			WithinDays: windowDays,
			Pagination: common.Pagination{Page: page, PageSize: pageSize},
		})
		if err != nil {
			return err
		}
		for _, item := range resp.Items {
			if _, err := svc.Recompute(ctx, item.PatentNumber); err != nil {
				logger.Warn("recompute failed",
					logging.String("patent_number", item.PatentNumber), logging.Err(err))
				continue
			}
			recomputed++
		}
		if int64(page*pageSize) >= resp.Total || len(resp.Items) == 0 {
			break
		}
	}

	logger.Info("recompute sweep finished", logging.Int("recomputed", recomputed))
	return nil
}
