package connector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/internal/utils"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	NODE_TYPE_LABEL = "nodetype"

	REQUEST_ANNOTATION          = "adaptsched/request"
	COMPUTATION_COST_ANNOTATION = "adaptsched/computation-cost"
	RETENTION_COST_ANNOTATION   = "adaptsched/retention-cost"
	TRANSFER_CAP_ANNOTATION     = "adaptsched/transfer-capacity"
	TRANSFER_COST_ANNOTATION    = "adaptsched/transfer-cost"
	PREPARATION_ANNOTATION      = "adaptsched/preparation-cost"
	DEMAND_ANNOTATION           = "adaptsched/demand"
	DISTANCE_ANNOTATION         = "adaptsched/distance"
	DEADLINE_ANNOTATION         = "adaptsched/deadline"
)

// KubeConnector builds nodes and requests from a Kubernetes cluster. A node
// joins when it carries the nodetype label (any value but "ignore"), its
// capacity is the allocatable CPU left after the pods already bound to it.
// Pending unbound pods annotated with adaptsched/request=true become requests.
type KubeConnector struct {
	// Kubernetes official library client for
	// contacting API-server.
	clientset kubernetes.Interface
	namespace string
}

func NewKubeConnector(kubeconfig, namespace string) (*KubeConnector, error) {
	var (
		restConfig *rest.Config
		err        error
	)
	if kubeconfig == "" {
		restConfig, err = rest.InClusterConfig()
	} else {
		restConfig, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("can't connect to kubernetes cluster: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("could not init clients: %w", err)
	}

	return NewKubeConnectorWithClient(clientset, namespace), nil
}

func NewKubeConnectorWithClient(clientset kubernetes.Interface, namespace string) *KubeConnector {
	return &KubeConnector{
		clientset: clientset,
		namespace: namespace,
	}
}

func annotationFloat(annotations map[string]string, key string) (float64, error) {
	raw, ok := annotations[key]
	if !ok {
		return 0, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("annotation %s has invalid value %q", key, raw)
	}

	return value, nil
}

func podCpuRequest(pod *v1.Pod) float64 {
	var cpu float64
	for _, container := range pod.Spec.Containers {
		cpu += container.Resources.Requests.Cpu().AsApproximateFloat64()
	}

	return cpu
}

func (kc *KubeConnector) boundCpu(ctx context.Context) (map[string]float64, error) {
	podList, err := kc.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not list pods: %w", err)
	}

	bound := make(map[string]float64)
	for i := range podList.Items {
		pod := &podList.Items[i]
		if pod.Spec.NodeName == "" || pod.Status.Phase == v1.PodSucceeded || pod.Status.Phase == v1.PodFailed {
			continue
		}
		bound[pod.Spec.NodeName] += podCpuRequest(pod)
	}

	return bound, nil
}

func (kc *KubeConnector) FindNodes(ctx context.Context) ([]*model.Node, error) {
	log.Info().Msg("finding nodes...")

	nodeList, err := kc.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not list nodes: %w", err)
	}

	bound, err := kc.boundCpu(ctx)
	if err != nil {
		return nil, err
	}

	items := nodeList.Items
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	nodes := make([]*model.Node, 0, len(items))
	for _, node := range items {
		nodeType, ok := node.GetLabels()[NODE_TYPE_LABEL]
		if !ok || nodeType == "ignore" {
			continue
		}

		capacity := node.Status.Allocatable.Cpu().AsApproximateFloat64() - bound[node.Name]
		if capacity <= 0 {
			log.Warn().Msgf("node %s has no free cpu, skipping", node.Name)
			continue
		}

		annotations := node.GetAnnotations()
		modelNode := &model.Node{
			Id:          utils.Hash(node.Name),
			Name:        node.Name,
			MaxCapacity: capacity,
		}
		for _, iter := range []struct {
			key    string
			target *float64
		}{
			{COMPUTATION_COST_ANNOTATION, &modelNode.ComputationCost},
			{RETENTION_COST_ANNOTATION, &modelNode.RetentionCost},
			{TRANSFER_CAP_ANNOTATION, &modelNode.TransferCapacity},
		} {
			if *iter.target, err = annotationFloat(annotations, iter.key); err != nil {
				return nil, fmt.Errorf("node %s: %w", node.Name, err)
			}
		}

		log.Info().Msgf("found %s node %s with %f free cpu", nodeType, node.Name, capacity)
		nodes = append(nodes, modelNode)
	}

	log.Info().Msgf("%d nodes found", len(nodes))

	return nodes, nil
}

func (kc *KubeConnector) FindRequests(ctx context.Context) ([]*model.Request, error) {
	podList, err := kc.clientset.CoreV1().Pods(kc.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not get pods list: %w", err)
	}

	items := podList.Items
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreationTimestamp.Equal(&items[j].CreationTimestamp) {
			return items[i].CreationTimestamp.Before(&items[j].CreationTimestamp)
		}
		return items[i].Name < items[j].Name
	})

	requests := make([]*model.Request, 0)
	for i := range items {
		pod := &items[i]
		if pod.GetAnnotations()[REQUEST_ANNOTATION] != "true" {
			continue
		}
		if pod.Status.Phase != v1.PodPending || pod.Spec.NodeName != "" {
			continue
		}

		annotations := pod.GetAnnotations()
		request := &model.Request{
			Id:              utils.Hash(pod.Name),
			ComputationLoad: podCpuRequest(pod),
		}
		for _, iter := range []struct {
			key    string
			target *float64
		}{
			{TRANSFER_COST_ANNOTATION, &request.TransferCost},
			{PREPARATION_ANNOTATION, &request.PreparationCost},
			{DEMAND_ANNOTATION, &request.Demand},
			{DISTANCE_ANNOTATION, &request.Distance},
			{DEADLINE_ANNOTATION, &request.Deadline},
		} {
			if *iter.target, err = annotationFloat(annotations, iter.key); err != nil {
				return nil, fmt.Errorf("pod %s: %w", pod.Name, err)
			}
		}

		requests = append(requests, request)
	}

	log.Info().Msgf("%d pending requests found in namespace %s", len(requests), kc.namespace)

	return requests, nil
}
