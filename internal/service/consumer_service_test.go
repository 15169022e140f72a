package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"run-coach-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerUpdatesSummary(t *testing.T) {
	profiles := newFakeProfileRepo()
	uow := &fakeUow{profiles: profiles, messages: &fakeMessageRepo{}, metas: newFakeMetaRepo(), users: &fakeUserRepo{}}
	gw := &fakeGateway{}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, "summarize_jobs_test", &fakeFactory{uow: uow}, gw)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	userId := uuid.New()
	publisher := NewPublisherService(pubSub, "summarize_jobs_test")
	payload, err := json.Marshal(dto.SummarizeJobMessage{UserId: userId, Sender: "user", Text: "ran 10k today"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))

	// The fake gateway answers "summary" for every summarize call.
	assert.Eventually(t, func() bool {
		profiles.mu.Lock()
		defer profiles.mu.Unlock()
		return len(profiles.summaryWrites) == 1 && profiles.summaryWrites[0] == "summary"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerSkipsMalformedJob(t *testing.T) {
	profiles := newFakeProfileRepo()
	uow := &fakeUow{profiles: profiles, messages: &fakeMessageRepo{}, metas: newFakeMetaRepo(), users: &fakeUserRepo{}}
	gw := &fakeGateway{}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, "summarize_jobs_test", &fakeFactory{uow: uow}, gw)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(pubSub, "summarize_jobs_test")
	require.NoError(t, publisher.Publish(ctx, []byte("not json")))

	time.Sleep(100 * time.Millisecond)
	profiles.mu.Lock()
	defer profiles.mu.Unlock()
	assert.Empty(t, profiles.summaryWrites)
}
