package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 15 * time.Second
	retryBaseDelay        = 200 * time.Millisecond
	retryMaxDelay         = 5 * time.Second
)

type outboxRepository interface {
	FetchPending(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause error) error
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) (string, error)
}

// gcpPublisher adapts the Pub/Sub v2 publisher to the narrow surface the
// loop needs, so tests can substitute it.
type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) (string, error) {
	return p.inner.Publish(ctx, msg).Get(ctx)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Publisher  publisher
}

// Service drains pending outbox rows into Pub/Sub. Publish failures retry
// in-process with backoff; rows that exhaust their attempts are marked
// failed and stay visible for operators.
type Service struct {
	logg         *logger.Logger
	repo         outboxRepository
	publisher    publisher
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		logg:         params.Logger,
		repo:         params.Repository,
		publisher:    params.Publisher,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher context canceled")
			return ctx.Err()
		case <-ticker.C:
		}

		drained, err := s.ProcessBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox publisher batch error", err)
			continue
		}
		// keep draining without waiting when a full batch came back
		for drained {
			drained, err = s.ProcessBatch(ctx)
			if err != nil {
				s.logg.Error(ctx, "outbox publisher batch error", err)
				break
			}
		}
	}
}

// ProcessBatch publishes up to one batch of pending events. It reports
// whether a full batch was processed, signaling more rows likely wait.
func (s *Service) ProcessBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchPending(s.batchSize)
	if err != nil {
		return false, fmt.Errorf("fetching pending events: %w", err)
	}
	if len(events) == 0 {
		return false, nil
	}

	var batchErr error
	for _, event := range events {
		if err := s.publishEvent(ctx, event); err != nil {
			fields := map[string]any{
				"event_id":   event.ID.String(),
				"event_type": event.EventType.String(),
			}
			s.logg.Error(s.logg.WithFields(ctx, fields), "publishing outbox event", err)
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				batchErr = multierr.Append(batchErr, fmt.Errorf("marking event %s failed: %w", event.ID, markErr))
			}
			batchErr = multierr.Append(batchErr, err)
			continue
		}
		if err := s.repo.MarkPublished(event.ID); err != nil {
			batchErr = multierr.Append(batchErr, fmt.Errorf("marking event %s published: %w", event.ID, err))
		}
	}
	return len(events) == s.batchSize, batchErr
}

func (s *Service) publishEvent(ctx context.Context, event models.OutboxEvent) error {
	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":     event.ID.String(),
			"event_type":   event.EventType.String(),
			"aggregate_id": event.AggregateID.String(),
		},
	}

	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewExponential(retryBaseDelay))
	backoff = retry.WithCappedDuration(retryMaxDelay, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
		defer cancel()
		if _, err := s.publisher.Publish(publishCtx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
