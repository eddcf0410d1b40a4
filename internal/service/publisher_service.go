package service

import (
	"context"

	"edushelf-be/internal/dto"
	"edushelf-be/pkg/jobqueue"
)

const JobIndexDocument = "index_document"

type IPublisherService interface {
	PublishIndexDocument(ctx context.Context, msg dto.PublishIndexDocumentMessage) error
}

type publisherService struct {
	queue *jobqueue.Queue
}

func NewPublisherService(queue *jobqueue.Queue) IPublisherService {
	return &publisherService{queue: queue}
}

func (ps *publisherService) PublishIndexDocument(ctx context.Context, msg dto.PublishIndexDocumentMessage) error {
	return ps.queue.Enqueue(ctx, JobIndexDocument, msg)
}
