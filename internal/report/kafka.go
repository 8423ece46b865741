package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amsen20/adaptsched/internal/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink streams slot reports as JSON, keyed by run id.
type KafkaSink struct {
	writer MessageWriter
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka sink needs brokers and a topic")
	}

	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}), nil
}

func NewKafkaSinkWithWriter(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (k *KafkaSink) Publish(ctx context.Context, r *model.SlotReport) error {
	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("could not encode slot %d report: %w", r.Slot, err)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.RunId),
		Value: value,
	}); err != nil {
		return fmt.Errorf("could not publish slot %d report: %w", r.Slot, err)
	}

	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
