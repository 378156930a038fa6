package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/briannzioki/qwiksale-listings/internal/cache"
	"github.com/briannzioki/qwiksale-listings/internal/domain"
	pkgkafka "github.com/briannzioki/qwiksale-listings/pkg/kafka"
)

// Consumer handles listing domain events and keeps the browse cache
// coherent when listings are written by other instances of the service
// (admin tooling, bulk importers) that share the Kafka topics.
type Consumer struct {
	cache  *cache.BrowseCache
	logger *slog.Logger
}

// NewConsumer creates a new event consumer that invalidates the browse
// cache for the affected listing kind.
func NewConsumer(browseCache *cache.BrowseCache, logger *slog.Logger) *Consumer {
	return &Consumer{
		cache:  browseCache,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicListingCreated, TopicListingUpdated:
		var data ListingEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
		}
		return c.invalidate(ctx, event.EventType, data.ID, data.Kind)

	case TopicListingDeleted:
		var data ListingDeletedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal listing.deleted data: %w", err)
		}
		return c.invalidate(ctx, event.EventType, data.ID, data.Kind)

	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) invalidate(ctx context.Context, eventType, id, kind string) error {
	if !domain.IsValidKind(kind) {
		c.logger.WarnContext(ctx, "event carries unknown listing kind, skipping",
			slog.String("event_type", eventType),
			slog.String("listing_id", id),
			slog.String("kind", kind),
		)
		return nil
	}

	if err := c.cache.Invalidate(ctx, domain.ListingKind(kind)); err != nil {
		return fmt.Errorf("invalidate browse cache from %s: %w", eventType, err)
	}

	c.logger.InfoContext(ctx, "browse cache invalidated from event",
		slog.String("event_type", eventType),
		slog.String("listing_id", id),
		slog.String("kind", kind),
	)

	return nil
}
