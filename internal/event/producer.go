package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
	pkgkafka "github.com/briannzioki/qwiksale-listings/pkg/kafka"
)

// Kafka topic constants for listing domain events.
const (
	TopicListingCreated = "marketplace.listing.created"
	TopicListingUpdated = "marketplace.listing.updated"
	TopicListingDeleted = "marketplace.listing.deleted"
)

// Aggregate type constant.
const AggregateTypeListing = "listing"

// Source identifier for events originating from this service.
const SourceListingService = "listings-service"

// ListingEventData is the payload shared by listing.created and
// listing.updated events.
type ListingEventData struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Featured    bool    `json:"featured"`
	Status      string  `json:"status"`
}

// ListingDeletedData is the payload for a listing.deleted event.
type ListingDeletedData struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// Producer publishes listing domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the listings service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishListingCreated publishes a listing.created event.
func (p *Producer) PublishListingCreated(ctx context.Context, listing *domain.Listing) error {
	return p.publish(ctx, TopicListingCreated, listing)
}

// PublishListingUpdated publishes a listing.updated event.
func (p *Producer) PublishListingUpdated(ctx context.Context, listing *domain.Listing) error {
	return p.publish(ctx, TopicListingUpdated, listing)
}

// PublishListingDeleted publishes a listing.deleted event.
func (p *Producer) PublishListingDeleted(ctx context.Context, id string, kind domain.ListingKind) error {
	data := ListingDeletedData{ID: id, Kind: string(kind)}

	event, err := pkgkafka.NewEvent(TopicListingDeleted, id, AggregateTypeListing, SourceListingService, data)
	if err != nil {
		return fmt.Errorf("create listing.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicListingDeleted, event); err != nil {
		return fmt.Errorf("publish listing.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published listing.deleted event",
		slog.String("listing_id", id),
		slog.String("kind", string(kind)),
	)

	return nil
}

func (p *Producer) publish(ctx context.Context, topic string, listing *domain.Listing) error {
	data := ListingEventData{
		ID:          listing.ID,
		Kind:        string(listing.Kind),
		Name:        listing.Name,
		Slug:        listing.Slug,
		Category:    listing.Category,
		Subcategory: listing.Subcategory,
		Price:       listing.Price,
		Featured:    listing.Featured,
		Status:      listing.Status,
	}

	event, err := pkgkafka.NewEvent(topic, listing.ID, AggregateTypeListing, SourceListingService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published listing event",
		slog.String("topic", topic),
		slog.String("listing_id", listing.ID),
		slog.String("slug", listing.Slug),
	)

	return nil
}
