package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	"go.uber.org/zap"
)

// EnqueueRequestsUseCase hands conversions to the worker instead of running them locally.
type EnqueueRequestsUseCase struct {
	publisher port.RequestPublisher
	logger    *zap.Logger
}

func NewEnqueueRequestsUseCase(publisher port.RequestPublisher, logger *zap.Logger) *EnqueueRequestsUseCase {
	return &EnqueueRequestsUseCase{publisher: publisher, logger: logger}
}

// Execute validates every name before publishing any, then publishes one
// request per name in order. It returns the messages that were published.
func (uc *EnqueueRequestsUseCase) Execute(ctx context.Context, names []string, userEmail string) ([]entity.ConversionRequestMessage, error) {
	for _, name := range names {
		if !ValidSourceName(name) {
			return nil, fmt.Errorf("%q: %w", name, ErrInvalidSourceName)
		}
	}

	sent := make([]entity.ConversionRequestMessage, 0, len(names))
	for _, name := range names {
		msg := entity.ConversionRequestMessage{RequestID: uuid.New(), SourceName: name, UserEmail: userEmail}
		body, err := json.Marshal(msg)
		if err != nil {
			return sent, fmt.Errorf("encode request: %w", err)
		}
		if err := uc.publisher.PublishRequest(ctx, body); err != nil {
			return sent, fmt.Errorf("enqueue %s: %w", name, err)
		}
		uc.logger.Info("conversion request queued",
			zap.String("source", name),
			zap.String("request_id", msg.RequestID.String()),
		)
		sent = append(sent, msg)
	}
	return sent, nil
}
