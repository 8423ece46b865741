package connector

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"

	"github.com/amsen20/adaptsched/internal/model"
	"gopkg.in/yaml.v3"
)

type Scenario struct {
	Nodes    []*model.Node    `yaml:"nodes"`
	Requests []*model.Request `yaml:"requests"`
}

// SampleScenario is the three road-side-unit setup used when no scenario
// file is given.
func SampleScenario() *Scenario {
	return &Scenario{
		Nodes: []*model.Node{
			{Id: 0, Name: "rsu-0", MaxCapacity: 110, RetentionCost: 0.02, ComputationCost: 0.03},
			{Id: 1, Name: "rsu-1", MaxCapacity: 120, RetentionCost: 0.04, ComputationCost: 0.02},
			{Id: 2, Name: "rsu-2", MaxCapacity: 130, RetentionCost: 0.025, ComputationCost: 0.05},
		},
		Requests: []*model.Request{
			{Id: 0, Deadline: 4, ComputationLoad: 25, TransferCost: 0.025, PreparationCost: 0.02, Demand: 10, Distance: 110},
			{Id: 1, Deadline: 5, ComputationLoad: 35, TransferCost: 0.035, PreparationCost: 0.02, Demand: 15, Distance: 130},
			{Id: 2, Deadline: 2, ComputationLoad: 12, TransferCost: 0.015, PreparationCost: 0.008, Demand: 5, Distance: 90},
		},
	}
}

// ParseScenario decodes a yaml scenario. Unknown fields, duplicate request ids
// and negative request values are rejected.
func ParseScenario(content []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	scenario := &Scenario{}
	if err := decoder.Decode(scenario); err != nil {
		return nil, fmt.Errorf("could not parse scenario: %w", err)
	}

	if err := model.ValidateRequests(scenario.Requests); err != nil {
		return nil, fmt.Errorf("could not parse scenario: %w", err)
	}

	return scenario, nil
}

// ConstantConnector serves a fixed scenario, either from a file or the sample.
type ConstantConnector struct {
	scenario *Scenario
}

func NewConstantConnector(scenarioFile string) (*ConstantConnector, error) {
	if scenarioFile == "" {
		log.Info().Msg("no scenario file given, using the sample scenario")
		return NewConstantConnectorFromScenario(SampleScenario()), nil
	}

	content, err := ioutil.ReadFile(scenarioFile)
	if err != nil {
		return nil, fmt.Errorf("could not read scenario file %s: %w", scenarioFile, err)
	}

	scenario, err := ParseScenario(content)
	if err != nil {
		return nil, err
	}

	return NewConstantConnectorFromScenario(scenario), nil
}

func NewConstantConnectorFromScenario(scenario *Scenario) *ConstantConnector {
	return &ConstantConnector{scenario: scenario}
}

func (c *ConstantConnector) FindNodes(_ context.Context) ([]*model.Node, error) {
	return model.CloneNodes(c.scenario.Nodes), nil
}

func (c *ConstantConnector) FindRequests(_ context.Context) ([]*model.Request, error) {
	return model.CloneRequests(c.scenario.Requests), nil
}
