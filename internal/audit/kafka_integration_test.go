//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"trustledger/internal/audit"
	"trustledger/pkg/testutil/containers"
)

const auditTopic = "trustledger.audit"

type KafkaPublisherSuite struct {
	suite.Suite
	broker    string
	publisher *audit.KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	redpanda := containers.NewRedpandaContainer(s.T())
	s.broker = redpanda.Broker

	client, err := audit.DialKafka([]string{s.broker})
	s.Require().NoError(err)

	admin := kadm.NewClient(client)
	_, err = admin.CreateTopics(context.Background(), 1, 1, nil, auditTopic)
	s.Require().NoError(err)

	s.publisher = audit.NewKafkaPublisher(client, auditTopic)
	s.T().Cleanup(s.publisher.Close)
}

func (s *KafkaPublisherSuite) TestEmitRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	emitted := audit.Event{Operation: audit.OpCreateAttestation, Caller: "prov", Entity: "attestation:ab12", Block: 99}
	s.Require().NoError(s.publisher.Emit(ctx, emitted))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(auditTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var received audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &received))
	s.Equal(audit.OpCreateAttestation, received.Operation)
	s.Equal(emitted.Caller, received.Caller)
	s.Equal(uint64(99), received.Block)
	s.NotEmpty(received.ID)
	s.Equal([]byte("prov"), records[0].Key)
}
