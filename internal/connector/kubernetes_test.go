package connector

import (
	"context"
	"testing"
	"time"

	"github.com/amsen20/adaptsched/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func kubeNode(name, nodeType, cpu string, annotations map[string]string) *v1.Node {
	labels := map[string]string{}
	if nodeType != "" {
		labels[NODE_TYPE_LABEL] = nodeType
	}

	return &v1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels, Annotations: annotations},
		Status: v1.NodeStatus{
			Allocatable: v1.ResourceList{v1.ResourceCPU: resource.MustParse(cpu)},
		},
	}
}

func kubePod(name, nodeName, cpu string, phase v1.PodPhase, created time.Time, annotations map[string]string) *v1.Pod {
	return &v1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Namespace:         "default",
			Annotations:       annotations,
			CreationTimestamp: metav1.NewTime(created),
		},
		Spec: v1.PodSpec{
			NodeName: nodeName,
			Containers: []v1.Container{{
				Name: "main",
				Resources: v1.ResourceRequirements{
					Requests: v1.ResourceList{v1.ResourceCPU: resource.MustParse(cpu)},
				},
			}},
		},
		Status: v1.PodStatus{Phase: phase},
	}
}

func TestKubeConnectorFindNodes(t *testing.T) {
	now := time.Now()
	client := fake.NewSimpleClientset(
		kubeNode("edge-b", "edge", "4", map[string]string{
			COMPUTATION_COST_ANNOTATION: "0.5",
			RETENTION_COST_ANNOTATION:   "0.25",
		}),
		kubeNode("edge-a", "edge", "2", nil),
		kubeNode("master", "ignore", "8", nil),
		kubeNode("unlabeled", "", "8", nil),
		kubePod("busy", "edge-b", "1500m", v1.PodRunning, now, nil),
		kubePod("finished", "edge-b", "2", v1.PodSucceeded, now, nil),
	)

	kc := NewKubeConnectorWithClient(client, "default")
	nodes, err := kc.FindNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "edge-a", nodes[0].Name)
	assert.Equal(t, utils.Hash("edge-a"), nodes[0].Id)
	assert.InDelta(t, 2.0, nodes[0].MaxCapacity, 1e-9)

	assert.Equal(t, "edge-b", nodes[1].Name)
	assert.InDelta(t, 2.5, nodes[1].MaxCapacity, 1e-9)
	assert.Equal(t, 0.5, nodes[1].ComputationCost)
	assert.Equal(t, 0.25, nodes[1].RetentionCost)
}

func TestKubeConnectorRejectsBadAnnotation(t *testing.T) {
	for _, value := range []string{"cheap", "-1", "NaN", "Inf", "-Inf", "+Inf"} {
		t.Run(value, func(t *testing.T) {
			client := fake.NewSimpleClientset(
				kubeNode("edge-a", "edge", "2", map[string]string{COMPUTATION_COST_ANNOTATION: value}),
			)

			_, err := NewKubeConnectorWithClient(client, "default").FindNodes(context.Background())
			assert.Error(t, err)
		})
	}

	client := fake.NewSimpleClientset(
		kubePod("nan", "", "1", v1.PodPending, time.Now(), map[string]string{
			REQUEST_ANNOTATION:  "true",
			DISTANCE_ANNOTATION: "NaN",
		}),
	)
	_, err := NewKubeConnectorWithClient(client, "default").FindRequests(context.Background())
	assert.Error(t, err)
}

func TestKubeConnectorFindRequests(t *testing.T) {
	now := time.Now()
	marked := func(extra map[string]string) map[string]string {
		annotations := map[string]string{REQUEST_ANNOTATION: "true"}
		for k, v := range extra {
			annotations[k] = v
		}
		return annotations
	}

	client := fake.NewSimpleClientset(
		kubePod("late", "", "500m", v1.PodPending, now.Add(time.Second), marked(nil)),
		kubePod("early", "", "2", v1.PodPending, now, marked(map[string]string{
			TRANSFER_COST_ANNOTATION: "0.3",
			DEMAND_ANNOTATION:        "4",
		})),
		kubePod("bound", "edge-a", "1", v1.PodPending, now, marked(nil)),
		kubePod("plain", "", "1", v1.PodPending, now, nil),
		kubePod("running", "", "1", v1.PodRunning, now, marked(nil)),
	)

	requests, err := NewKubeConnectorWithClient(client, "default").FindRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, utils.Hash("early"), requests[0].Id)
	assert.InDelta(t, 2.0, requests[0].ComputationLoad, 1e-9)
	assert.Equal(t, 0.3, requests[0].TransferCost)
	assert.Equal(t, 4.0, requests[0].Demand)

	assert.Equal(t, utils.Hash("late"), requests[1].Id)
	assert.InDelta(t, 0.5, requests[1].ComputationLoad, 1e-9)
}
