package port

import (
	"context"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
)

// OutcomeNotifier tells the user how a conversion ended. It is called exactly once per run.
type OutcomeNotifier interface {
	NotifyOutcome(ctx context.Context, ex *entity.Extraction)
}

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, conversionID string, sourceName string, errorMsg string) error
}
