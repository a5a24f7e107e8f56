package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flimando/porter/pkg/dataaccess/monitoring"
	"github.com/flimando/porter/pkg/entities"
	"github.com/flimando/porter/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ticketDalName = "ticket_dal"

type ITicketDal interface {
	// SaveTicket saves a ticket.
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket gets a ticket by channel. Returns mongo.ErrNoDocuments
	// when the channel is not a ticket.
	GetTicket(ctx context.Context, guildID string, channelID string) (*entities.Ticket, error)

	// DeleteTicket deletes a ticket. The bool reports whether a record
	// was actually removed.
	DeleteTicket(ctx context.Context, guildID string, channelID string) (bool, error)

	// ListGuildTickets lists every ticket in a guild.
	ListGuildTickets(ctx context.Context, guildID string) ([]*entities.Ticket, error)

	// ListTickets lists every ticket across all guilds.
	ListTickets(ctx context.Context) ([]*entities.Ticket, error)

	// CountUserTickets counts the open tickets a user owns in a guild.
	CountUserTickets(ctx context.Context, guildID string, ownerID string) (int64, error)

	// AttachControlMessage records the control message of a ticket. An
	// empty message ID clears the stored value.
	AttachControlMessage(ctx context.Context, guildID string, channelID string, messageID string) error
}

type ticketDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewTicketDal creates a new ticket data access layer.
func NewTicketDal(logger *slog.Logger) ITicketDal {
	l := logger.With(slog.String(logging.KeyDal, ticketDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &ticketDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *ticketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "save_ticket", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "save_ticket", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	// Save the ticket.
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx,
		bson.M{"guild_id": ticket.GuildID, "channel_id": ticket.ChannelID},
		bson.M{"$set": ticket}, opts)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}

func (d *ticketDal) GetTicket(ctx context.Context, guildID string, channelID string) (*entities.Ticket, error) {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "get_ticket", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "get_ticket", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	// Get the ticket.
	var ticket entities.Ticket
	err := collection.FindOne(ctx, bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
	}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	return &ticket, nil
}

func (d *ticketDal) DeleteTicket(ctx context.Context, guildID string, channelID string) (bool, error) {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "delete_ticket", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "delete_ticket", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	res, err := collection.DeleteOne(ctx, bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
	})
	if err != nil {
		return false, fmt.Errorf("error deleting ticket: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (d *ticketDal) ListGuildTickets(ctx context.Context, guildID string) ([]*entities.Ticket, error) {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "list_guild_tickets", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "list_guild_tickets", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	cursor, err := collection.Find(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %w", err)
	}

	var tickets []*entities.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("error decoding tickets: %w", err)
	}
	return tickets, nil
}

func (d *ticketDal) ListTickets(ctx context.Context) ([]*entities.Ticket, error) {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "list_tickets", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "list_tickets", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %w", err)
	}

	var tickets []*entities.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("error decoding tickets: %w", err)
	}
	return tickets, nil
}

func (d *ticketDal) CountUserTickets(ctx context.Context, guildID string, ownerID string) (int64, error) {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "count_user_tickets", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "count_user_tickets", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	count, err := collection.CountDocuments(ctx, bson.M{
		"guild_id": guildID,
		"owner_id": ownerID,
	})
	if err != nil {
		return 0, fmt.Errorf("error counting tickets: %w", err)
	}
	return count, nil
}

func (d *ticketDal) AttachControlMessage(ctx context.Context, guildID string, channelID string, messageID string) error {
	// Get the ticket collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(ticketDalName, "attach_control_message", mongoDatabase, collectionTickets).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(ticketDalName, "attach_control_message", mongoDatabase, collectionTickets))
	defer t.ObserveDuration()

	filter := bson.M{"guild_id": guildID, "channel_id": channelID}

	var update bson.M
	if messageID == "" {
		update = bson.M{"$unset": bson.M{"control_message_id": ""}}
	} else {
		update = bson.M{"$set": bson.M{"control_message_id": messageID}}
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}
