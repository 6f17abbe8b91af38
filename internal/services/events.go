package services

import (
	"context"
	"strconv"

	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/queue"
)

// publish sends the event keyed by the acting user. Failures are logged only.
func publish(ctx context.Context, producer queue.Publisher, log *logger.Logger, userID uint, event queue.Event) {
	if err := producer.Publish(ctx, strconv.FormatUint(uint64(userID), 10), event); err != nil {
		log.WithError(err).WithField("event_type", event.Type).Error("Failed to publish event")
	}
}
