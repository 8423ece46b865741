package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/amsen20/adaptsched/internal/config"
	"github.com/amsen20/adaptsched/internal/connector"
	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/logging"
	"github.com/amsen20/adaptsched/sim"
)

var log = logging.Get()

// Scheduler wires a connector to a slot driver. Start fetches the nodes and
// requests, Run drives the slots until the configured count or cancellation.
type Scheduler struct {
	connector connector.Connector
	cfg       config.GeneralConfig
	opts      []sim.Option

	mutex      sync.Mutex
	driver     *sim.Driver
	lastSample *healthCheckSample
}

func New(c connector.Connector, cfg config.GeneralConfig, opts ...sim.Option) (*Scheduler, error) {
	if c == nil {
		return nil, fmt.Errorf("scheduler needs a connector")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Scheduler{
		connector: c,
		cfg:       cfg,
		opts:      opts,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	nodes, err := s.connector.FindNodes(ctx)
	if err != nil {
		log.Err(err).Send()

		return fmt.Errorf("connector could not find nodes: %w", err)
	}
	if len(nodes) == 0 {
		return model.ErrEmptyNodeSet
	}

	requests, err := s.connector.FindRequests(ctx)
	if err != nil {
		log.Err(err).Send()

		return fmt.Errorf("connector could not find requests: %w", err)
	}

	driver, err := sim.New(s.cfg, nodes, requests, s.opts...)
	if err != nil {
		return fmt.Errorf("could not set up the driver: %w", err)
	}

	s.mutex.Lock()
	s.driver = driver
	s.mutex.Unlock()

	log.Info().Msgf("scheduler started with %d nodes and %d requests", len(nodes), len(requests))

	return nil
}

// Driver is nil until Start succeeds.
func (s *Scheduler) Driver() *sim.Driver {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.driver
}

func (s *Scheduler) Run(ctx context.Context) (model.RunSummary, error) {
	driver := s.Driver()
	if driver == nil {
		return model.RunSummary{}, fmt.Errorf("scheduler is not started")
	}

	return driver.Run(ctx)
}
