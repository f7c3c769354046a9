//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"alyra/internal/platform/metrics"
	"alyra/pkg/testutil/containers"
)

func TestProducerRoundTrip(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	p, err := NewProducer(broker.Brokers, "alyra.test.events", WithMetrics(m))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })

	require.NoError(t, p.EnsureTopic(ctx, 1, 1))
	require.NoError(t, p.EnsureTopic(ctx, 1, 1), "second ensure is a no-op")

	require.NoError(t, p.Produce(ctx, []byte("ballot-1"), []byte(`{"action":"voted"}`),
		map[string]string{"event_type": "voted"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BrokerPublished))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics("alyra.test.events"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "ballot-1", string(records[0].Key))
	assert.Equal(t, `{"action":"voted"}`, string(records[0].Value))
	require.Len(t, records[0].Headers, 1)
	assert.Equal(t, "event_type", records[0].Headers[0].Key)
}
