package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSaramaConfig(t *testing.T) {
	sc := NewSaramaConfig(config.KafkaConfig{ClientID: "labstock"})
	require.NoError(t, sc.Validate())
	assert.Equal(t, "labstock", sc.ClientID)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.True(t, sc.Producer.Idempotent)
}

func TestKafkaPublisher_Handle(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisherWithProducer(producer, "labstock.stock-events", zap.NewNop())
	e := newTestEvent("StockLevelChanged")

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "labstock.stock-events" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != e.AggregateID().String() {
			return errors.New("record must be keyed by aggregate id")
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != "StockLevelChanged" {
			return errors.New("missing event-type header")
		}
		value, _ := msg.Value.Encode()
		env, err := Decode(value)
		if err != nil {
			return err
		}
		var payload testEvent
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return err
		}
		if payload.Data != "payload" || env.ID != e.EventID() {
			return errors.New("envelope does not carry the event")
		}
		return nil
	})

	require.NoError(t, pub.Handle(context.Background(), e))
	assert.Empty(t, pub.EventTypes())
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_RetriesThenFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisherWithProducer(producer, "t", nil)
	pub.backoff = 0

	brokerDown := errors.New("broker unavailable")
	for i := 0; i < 3; i++ {
		producer.ExpectSendMessageAndFail(brokerDown)
	}

	err := pub.Handle(context.Background(), newTestEvent("StockItemDeleted"))
	require.Error(t, err)
	assert.ErrorIs(t, err, brokerDown)
	assert.Contains(t, err.Error(), "after 3 attempts")
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_RecoversOnRetry(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisherWithProducer(producer, "t", nil)
	pub.backoff = 0

	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	producer.ExpectSendMessageAndSucceed()

	require.NoError(t, pub.Handle(context.Background(), newTestEvent("StockItemRegistered")))
	require.NoError(t, pub.Close())
}

func TestDecode_RejectsUntypedEnvelope(t *testing.T) {
	_, err := Decode([]byte(`{"id":"00000000-0000-0000-0000-000000000000"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
