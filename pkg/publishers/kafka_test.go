package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/IBM/sarama"
)

type fakeProducer struct {
	mu   sync.Mutex
	msgs []*sarama.ProducerMessage
	err  error
}

func (f *fakeProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	f.msgs = append(f.msgs, msg)
	return 2, 42, nil
}

func (f *fakeProducer) sent() []*sarama.ProducerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs
}

func TestKafkaSendKeysBySubscription(t *testing.T) {
	producer := &fakeProducer{}
	sender := &kafkaSender{topic: "news.alerts", producer: producer, log: ensureLogger(nil)}

	if err := sender.Send(context.Background(), testEvent("sub-9")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := producer.sent()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Topic != "news.alerts" {
		t.Errorf("expected topic news.alerts, got %q", msgs[0].Topic)
	}

	key, err := msgs[0].Key.Encode()
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	if string(key) != "sub-9" {
		t.Errorf("expected message keyed by subscription, got %q", key)
	}

	value, err := msgs[0].Value.Encode()
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}
	var evt Event
	if err := json.Unmarshal(value, &evt); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if evt.ID != "evt-1" || evt.SubscriptionID != "sub-9" {
		t.Errorf("expected event round-tripped, got %+v", evt)
	}
}

func TestKafkaSendProducerFailure(t *testing.T) {
	sender := &kafkaSender{
		topic:    "news.alerts",
		producer: &fakeProducer{err: errors.New("broker unreachable")},
		log:      ensureLogger(nil),
	}

	err := sender.Send(context.Background(), testEvent("sub-1"))
	if err == nil {
		t.Fatal("expected error from failing producer")
	}
	if !strings.Contains(err.Error(), "send message to kafka") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestKafkaSendHonorsCancelledContext(t *testing.T) {
	producer := &fakeProducer{}
	sender := &kafkaSender{topic: "news.alerts", producer: producer, log: ensureLogger(nil)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sender.Send(ctx, testEvent("sub-1")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(producer.sent()) != 0 {
		t.Errorf("expected no messages sent after cancellation, got %d", len(producer.sent()))
	}
}
