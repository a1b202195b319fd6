// Package publisher ships audit events to Kafka, one topic per category.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "medgate/pkg/platform/audit"
)

const (
	TopicCompliance = "medgate.audit.compliance"
	TopicSecurity   = "medgate.audit.security"
	TopicOperations = "medgate.audit.operations"
)

func topicFor(category audit.EventCategory) string {
	switch category {
	case audit.CategoryCompliance:
		return TopicCompliance
	case audit.CategorySecurity:
		return TopicSecurity
	default:
		return TopicOperations
	}
}

// Kafka publishes audit events as JSON records keyed by principal id, so a
// principal's trail stays ordered within its partition.
type Kafka struct {
	client *kgo.Client
}

func NewKafka(brokers []string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client}, nil
}

// EnsureTopics creates the audit topics when they do not exist yet. Safe to
// call on every startup.
func (k *Kafka) EnsureTopics(ctx context.Context, partitions int32, replicas int16) error {
	admin := kadm.NewClient(k.client)
	resp, err := admin.CreateTopics(ctx, partitions, replicas, nil,
		TopicCompliance, TopicSecurity, TopicOperations)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, res := range resp.Sorted() {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

type record struct {
	EventID            string `json:"event_id"`
	Timestamp          string `json:"timestamp"`
	Category           string `json:"category"`
	PrincipalID        string `json:"principal_id,omitempty"`
	ClinicID           string `json:"clinic_id,omitempty"`
	Action             string `json:"action"`
	Outcome            string `json:"outcome"`
	ReasonCode         string `json:"reason_code,omitempty"`
	RequestFingerprint string `json:"request_fingerprint"`
	OperationID        string `json:"operation_id,omitempty"`
	RequestID          string `json:"request_id,omitempty"`
	ClientIP           string `json:"client_ip,omitempty"`
}

func (k *Kafka) Append(ctx context.Context, event audit.Event) error {
	rec := record{
		EventID:            event.EventID.String(),
		Timestamp:          event.Timestamp.Format(time.RFC3339Nano),
		Category:           string(event.Category()),
		Action:             string(event.Action),
		Outcome:            string(event.Outcome),
		ReasonCode:         event.ReasonCode.String(),
		RequestFingerprint: event.RequestFingerprint,
		RequestID:          event.RequestID,
		ClientIP:           event.ClientIP,
	}
	if !event.PrincipalID.IsNil() {
		rec.PrincipalID = event.PrincipalID.String()
	}
	if !event.ClinicID.IsNil() {
		rec.ClinicID = event.ClinicID.String()
	}
	if !event.OperationID.IsNil() {
		rec.OperationID = event.OperationID.String()
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	result := k.client.ProduceSync(ctx, &kgo.Record{
		Topic: topicFor(event.Category()),
		Key:   []byte(rec.PrincipalID),
		Value: value,
	})
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
