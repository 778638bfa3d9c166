package port

import "context"

// RequestPublisher enqueues conversion requests for the worker.
type RequestPublisher interface {
	PublishRequest(ctx context.Context, msg []byte) error
}

// StatusPublisher announces the terminal status of a queued conversion.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg []byte) error
}

// DLQPublisher parks request bodies that can never be converted, with a reason.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}
