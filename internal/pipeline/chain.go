// Package pipeline wires the audio inbox to its event handler: a Kafka-backed
// Knative broker, the Kafka source feeding it, and the trigger delivering
// object-storage events to the handler service. Only the configuration is
// applied; message delivery stays with the eventing layer.
package pipeline

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/finsight-ai/finsightctl/internal/config"
)

// kafkaEventType is the CloudEvents type the Kafka source stamps on every
// record it forwards.
const kafkaEventType = "dev.knative.kafka.event"

// Chain derives the eventing objects from the pipeline configuration. All
// names are deterministic so a rerun re-applies the same objects.
type Chain struct {
	cfg config.PipelineConfig
}

// NewChain returns the chain for the given pipeline configuration.
func NewChain(cfg config.PipelineConfig) *Chain {
	return &Chain{cfg: cfg}
}

// Validate checks the fields without which no chain can be built.
func (c *Chain) Validate() error {
	if c.cfg.Namespace == "" {
		return fmt.Errorf("pipeline.namespace is required")
	}
	if c.cfg.Broker == "" {
		return fmt.Errorf("pipeline.broker is required")
	}
	if c.cfg.KafkaTopic == "" {
		return fmt.Errorf("pipeline.kafka_topic is required")
	}
	if c.cfg.BootstrapServers == "" {
		return fmt.Errorf("pipeline.bootstrap_servers is required")
	}
	if c.cfg.HandlerService == "" {
		return fmt.Errorf("pipeline.handler_service is required")
	}
	return nil
}

// SourceName returns the name of the Kafka source feeding the broker.
func (c *Chain) SourceName() string {
	return c.cfg.Broker + "-source"
}

// TriggerName returns the name of the trigger delivering to the handler
// service.
func (c *Chain) TriggerName() string {
	return c.cfg.HandlerService + "-trigger"
}

// Namespace returns the namespace every chain object lives in.
func (c *Chain) Namespace() string {
	return c.cfg.Namespace
}

// Objects returns the chain in apply order: broker, source, trigger.
func (c *Chain) Objects() []*unstructured.Unstructured {
	return []*unstructured.Unstructured{c.broker(), c.source(), c.trigger()}
}

// broker is the delivery hub the handler subscribes to. It rides the same
// Kafka cluster the source reads from.
func (c *Chain) broker() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "eventing.knative.dev/v1",
		"kind":       "Broker",
		"metadata": map[string]interface{}{
			"name":      c.cfg.Broker,
			"namespace": c.cfg.Namespace,
			"annotations": map[string]interface{}{
				"eventing.knative.dev/broker.class": "Kafka",
			},
		},
	}}
}

// source pumps the object-storage notification topic into the broker.
func (c *Chain) source() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "sources.knative.dev/v1beta1",
		"kind":       "KafkaSource",
		"metadata": map[string]interface{}{
			"name":      c.SourceName(),
			"namespace": c.cfg.Namespace,
		},
		"spec": map[string]interface{}{
			"bootstrapServers": []interface{}{c.cfg.BootstrapServers},
			"topics":           []interface{}{c.cfg.KafkaTopic},
			"sink": map[string]interface{}{
				"ref": map[string]interface{}{
					"apiVersion": "eventing.knative.dev/v1",
					"kind":       "Broker",
					"name":       c.cfg.Broker,
				},
			},
		},
	}}
}

// trigger routes the source's events from the broker to the handler service.
func (c *Chain) trigger() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "eventing.knative.dev/v1",
		"kind":       "Trigger",
		"metadata": map[string]interface{}{
			"name":      c.TriggerName(),
			"namespace": c.cfg.Namespace,
		},
		"spec": map[string]interface{}{
			"broker": c.cfg.Broker,
			"filter": map[string]interface{}{
				"attributes": map[string]interface{}{
					"type": kafkaEventType,
				},
			},
			"subscriber": map[string]interface{}{
				"ref": map[string]interface{}{
					"apiVersion": "v1",
					"kind":       "Service",
					"name":       c.cfg.HandlerService,
				},
			},
		},
	}}
}

// Render returns the chain as a multi-document YAML stream, for dry runs and
// for checking into a GitOps repository instead of applying directly.
func (c *Chain) Render() (string, error) {
	var docs []string
	for _, obj := range c.Objects() {
		data, err := yaml.Marshal(obj.Object)
		if err != nil {
			return "", fmt.Errorf("failed to marshal %s %s: %w", obj.GetKind(), obj.GetName(), err)
		}
		docs = append(docs, string(data))
	}
	return strings.Join(docs, "---\n"), nil
}
