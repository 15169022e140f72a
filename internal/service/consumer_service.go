package service

import (
	"context"
	"encoding/json"
	"log"

	"run-coach-be/internal/dto"
	"run-coach-be/internal/repository/unitofwork"
	"run-coach-be/pkg/coach/gateway"
	"run-coach-be/pkg/coach/summary"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains summarize jobs one at a time. The single reader
// loop is the at-most-one-in-flight guarantee for summary updates.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	modelGateway gateway.ModelGateway
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	modelGateway gateway.ModelGateway,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		uowFactory:   uowFactory,
		modelGateway: modelGateway,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage updates the running conversation summary. A failed model
// call is swallowed: the scheduler already cleared its state and the next
// batch will fold the missed turns back in.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var job dto.SummarizeJobMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		log.Printf("[ERROR] Failed to unmarshal summarize job: %v", err)
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	profileRepo := uow.RunnerProfileRepository()

	ent, err := profileRepo.FindByUserId(ctx, job.UserId)
	if err != nil {
		log.Printf("[ERROR] Failed to load profile for summarize job %s: %v", job.UserId, err)
		return
	}
	existing := ""
	if ent != nil {
		existing = ent.ConversationSummary
	}

	summaryPrompt := summary.BuildPrompt(existing, summary.Payload{Sender: job.Sender, Text: job.Text})
	updated, err := cs.modelGateway.Summarize(ctx, summaryPrompt)
	if err != nil {
		log.Printf("[WARN] Summarize call failed for user %s: %v", job.UserId, err)
		return
	}
	if updated == "" {
		return
	}

	if err := profileRepo.UpdateSummary(ctx, job.UserId, updated); err != nil {
		log.Printf("[ERROR] Failed to save summary for user %s: %v", job.UserId, err)
	}
}
