package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amsen20/adaptsched/internal/config"
	"github.com/amsen20/adaptsched/internal/connector"
	"github.com/amsen20/adaptsched/internal/gui"
	"github.com/amsen20/adaptsched/internal/metrics"
	"github.com/amsen20/adaptsched/internal/report"
	"github.com/amsen20/adaptsched/internal/scheduler"
	"github.com/amsen20/adaptsched/logging"
	"github.com/amsen20/adaptsched/sim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var log = logging.Component("main")

const REPORT_HISTORY = 256

func main() {
	configFilePath := pflag.String("config_file", "", "Path to config file")
	slots := pflag.Int("slots", -1, "Number of slots, overrides the config file")
	policy := pflag.String("policy", "", "Weight policy (sigmoid or piecewise-slope), overrides the config file")
	httpAddr := pflag.String("http_addr", "", "Address of the report server, overrides the config file")
	pflag.Parse()

	cfg := config.Default()
	if *configFilePath != "" {
		var err error
		if cfg, err = config.Load(*configFilePath); err != nil {
			log.Err(err).Msgf("could not load config")
			os.Exit(1)
		}
	}

	if *slots >= 0 {
		cfg.Slots = *slots
	}
	if *policy != "" {
		cfg.Policy = config.NormalizePolicy(*policy)
	}
	if *httpAddr != "" {
		cfg.HttpAddr = *httpAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Err(err).Msg("invalid config")
		os.Exit(1)
	}
	config.SchedulerGeneralConfig = cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.SchedulerGeneralConfig, report.NewStore(REPORT_HISTORY), prometheus.NewRegistry()); err != nil {
		log.Err(err).Msg("run did not finish")
		stop()
		os.Exit(1)
	}
}

// run drives one scheduling run. The summary reaches store only when every
// slot completed, and sinks are closed before it returns.
func run(ctx context.Context, cfg config.GeneralConfig, store *report.Store, registry *prometheus.Registry) error {
	c, err := connector.New(&cfg)
	if err != nil {
		return fmt.Errorf("could not init the connector: %w", err)
	}

	opts := []sim.Option{
		sim.WithSink(report.LogSink{}),
		sim.WithSink(store),
		sim.WithMetrics(metrics.New(registry)),
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := report.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return fmt.Errorf("could not init the kafka sink: %w", err)
		}
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				log.Err(err).Msg("could not close the kafka sink")
			}
		}()
		opts = append(opts, sim.WithSink(kafkaSink))
	}

	sched, err := scheduler.New(c, cfg, opts...)
	if err != nil {
		return fmt.Errorf("could not initiate scheduler: %w", err)
	}

	if cfg.HttpAddr != "" {
		server := gui.New(store, sched, registry)
		go func() {
			if err := server.Run(ctx, cfg.HttpAddr); err != nil {
				log.Err(err).Msg("report server stopped")
			}
		}()
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("could not start scheduler: %w", err)
	}

	summary, err := sched.Run(ctx)
	fmt.Println(summary.String())
	if err != nil {
		return err
	}
	store.SetSummary(&summary)

	if cfg.HttpAddr != "" {
		log.Info().Msgf("run finished, reports stay on %s until interrupted", cfg.HttpAddr)
		<-ctx.Done()
	}

	return nil
}
