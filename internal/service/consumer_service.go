package service

import (
	"context"
	"encoding/json"

	"ai-contract-review-be/internal/dto"
	"ai-contract-review-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	analyzer  IAnalyzerService
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	analyzer IAnalyzerService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		analyzer:  analyzer,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.PublishAnalyzeContractMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "Failed to unmarshal analysis job", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("consumer", "Processing analysis job", map[string]interface{}{
		"contract_id": payload.ContractId,
	})

	// The job outlives the HTTP request that enqueued it, so the worker
	// runs on its own context.
	if err := cs.analyzer.Run(context.Background(), payload.ContractId); err != nil {
		cs.log.Error("consumer", "Analysis job failed before recording a status", map[string]interface{}{
			"contract_id": payload.ContractId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
