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

const panelDalName = "panel_dal"

type IPanelDal interface {
	// SavePanel saves a panel record.
	SavePanel(ctx context.Context, panel *entities.Panel) error

	// GetPanel gets the panel record for a guild. Returns
	// mongo.ErrNoDocuments when the guild has no panel.
	GetPanel(ctx context.Context, guildID string) (*entities.Panel, error)

	// RemovePanel removes the panel record for a guild.
	RemovePanel(ctx context.Context, guildID string) error

	// ListPanels lists every stored panel record.
	ListPanels(ctx context.Context) ([]*entities.Panel, error)
}

type panelDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewPanelDal creates a new panel data access layer.
func NewPanelDal(logger *slog.Logger) IPanelDal {
	l := logger.With(slog.String(logging.KeyDal, panelDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &panelDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *panelDal) SavePanel(ctx context.Context, panel *entities.Panel) error {
	// Get the panel collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(panelDalName, "save_panel", mongoDatabase, collectionPanels).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(panelDalName, "save_panel", mongoDatabase, collectionPanels))
	defer t.ObserveDuration()

	// One panel per guild, so upsert on the guild ID.
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"guild_id": panel.GuildID}, bson.M{"$set": panel}, opts)
	if err != nil {
		return fmt.Errorf("error updating panel: %w", err)
	}
	return nil
}

func (d *panelDal) GetPanel(ctx context.Context, guildID string) (*entities.Panel, error) {
	// Get the panel collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(panelDalName, "get_panel", mongoDatabase, collectionPanels).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(panelDalName, "get_panel", mongoDatabase, collectionPanels))
	defer t.ObserveDuration()

	// Get the panel.
	panel := new(entities.Panel)
	err := collection.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(panel)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("error getting panel: %w", err)
	}
	return panel, nil
}

func (d *panelDal) RemovePanel(ctx context.Context, guildID string) error {
	// Get the panel collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(panelDalName, "remove_panel", mongoDatabase, collectionPanels).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(panelDalName, "remove_panel", mongoDatabase, collectionPanels))
	defer t.ObserveDuration()

	_, err := collection.DeleteOne(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return fmt.Errorf("error removing panel: %w", err)
	}
	return nil
}

func (d *panelDal) ListPanels(ctx context.Context) ([]*entities.Panel, error) {
	// Get the panel collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(panelDalName, "list_panels", mongoDatabase, collectionPanels).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(panelDalName, "list_panels", mongoDatabase, collectionPanels))
	defer t.ObserveDuration()

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing panels: %w", err)
	}

	var panels []*entities.Panel
	if err := cursor.All(ctx, &panels); err != nil {
		return nil, fmt.Errorf("error decoding panels: %w", err)
	}
	return panels, nil
}
