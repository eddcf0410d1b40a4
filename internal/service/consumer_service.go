package service

import (
	"context"
	"encoding/json"
	"fmt"

	"edushelf-be/internal/dto"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/pkg/events"
	"edushelf-be/pkg/jobqueue"
	"edushelf-be/pkg/rag/indexer"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	queue     *jobqueue.Queue
	indexer   *indexer.Indexer
	publisher events.Publisher
	logger    logger.ILogger
}

// NewConsumerService wires index jobs to the indexer. publisher may be nil.
func NewConsumerService(
	queue *jobqueue.Queue,
	idx *indexer.Indexer,
	publisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		queue:     queue,
		indexer:   idx,
		publisher: publisher,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	cs.queue.Register(JobIndexDocument, cs.processIndexDocument)
	return cs.queue.Start(ctx)
}

func (cs *consumerService) processIndexDocument(ctx context.Context, payload json.RawMessage) error {
	var msg dto.PublishIndexDocumentMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode index job: %w", err)
	}

	cs.logger.Info("CONSUMER", "Processing index job", map[string]interface{}{
		"document_id": msg.DocumentId,
		"batch_size":  msg.BatchSize,
	})

	res, err := cs.indexer.IndexDocument(ctx, msg.DocumentId, msg.StoragePath, msg.BatchSize)
	if err != nil {
		cs.publish(ctx, events.DocumentIndexFailed(msg.DocumentId, err.Error()))
		return err
	}

	switch {
	case res.Skipped && res.Reason == indexer.ReasonDocumentDeleted:
	case res.Skipped:
		cs.publish(ctx, events.DocumentIndexFailed(msg.DocumentId, res.Reason))
	default:
		cs.publish(ctx, events.DocumentIndexed(msg.DocumentId, res.Chunks))
	}
	return nil
}

func (cs *consumerService) publish(ctx context.Context, event events.Event) {
	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("CONSUMER", "Event publish failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
