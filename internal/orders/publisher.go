package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// KafkaEvents wraps every lifecycle event in an Envelope and hands it to the
// async producer.
type KafkaEvents struct {
	Producer    Publisher
	ServiceName string
}

func (k *KafkaEvents) Emit(_ context.Context, eventType, orderID string, payload any) {
	p, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.ServiceName,
		CorrelationID: orderID,
		Payload:       p,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	k.Producer.Publish(PartitionKey(orderID), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
