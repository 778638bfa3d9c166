package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnqueueRequestsPublishesInOrder(t *testing.T) {
	pub := &fakePublisher{}
	uc := NewEnqueueRequestsUseCase(pub, zap.NewNop())

	sent, err := uc.Execute(context.Background(), []string{"a.mp4", "b.mp4"}, "ops@v2f.local")
	require.NoError(t, err)
	require.Len(t, sent, 2)
	require.Len(t, pub.requests, 2)

	for i, name := range []string{"a.mp4", "b.mp4"} {
		var msg entity.ConversionRequestMessage
		require.NoError(t, json.Unmarshal(pub.requests[i], &msg))
		assert.Equal(t, name, msg.SourceName)
		assert.Equal(t, "ops@v2f.local", msg.UserEmail)
		assert.NotEqual(t, uuid.Nil, msg.RequestID)
		assert.Equal(t, sent[i].RequestID, msg.RequestID)
	}
}

func TestEnqueueRequestsRejectsInvalidNamesUpFront(t *testing.T) {
	pub := &fakePublisher{}
	uc := NewEnqueueRequestsUseCase(pub, zap.NewNop())

	_, err := uc.Execute(context.Background(), []string{"a.mp4", "../etc/passwd"}, "")
	assert.ErrorIs(t, err, ErrInvalidSourceName)
	assert.Empty(t, pub.requests)
}

func TestEnqueueRequestsStopsOnPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	uc := NewEnqueueRequestsUseCase(pub, zap.NewNop())

	sent, err := uc.Execute(context.Background(), []string{"a.mp4", "b.mp4"}, "")
	assert.ErrorContains(t, err, "enqueue a.mp4")
	assert.Empty(t, sent)
}
