package connector

import (
	"context"
	"fmt"

	"github.com/amsen20/adaptsched/internal/config"
	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/logging"
)

// Connector supplies the nodes and requests a run is set up with.
type Connector interface {
	FindNodes(ctx context.Context) ([]*model.Node, error)
	FindRequests(ctx context.Context) ([]*model.Request, error)
}

var log = logging.Get()

// New picks the connector named in the configuration.
func New(cfg *config.GeneralConfig) (Connector, error) {
	switch cfg.ConnectorKind {
	case "", "const":
		return NewConstantConnector(cfg.ScenarioFile)
	case "kubernetes":
		return NewKubeConnector(cfg.Kubeconfig, cfg.Namespace)
	}

	return nil, fmt.Errorf("connector kind %q is not recognized", cfg.ConnectorKind)
}
