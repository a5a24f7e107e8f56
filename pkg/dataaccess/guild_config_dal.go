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

const guildConfigDalName = "guild_config_dal"

type IGuildConfigDal interface {
	// GetGuildConfig gets the config for a guild. It never fails: if no
	// config is stored yet the defaults are persisted and returned, and
	// if the stored document cannot be read the defaults are returned
	// without being persisted.
	GetGuildConfig(ctx context.Context, guildID string) *entities.GuildConfig

	// SaveGuildConfig saves a guild config.
	SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error
}

type guildConfigDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewGuildConfigDal creates a new guild config data access layer.
func NewGuildConfigDal(logger *slog.Logger) IGuildConfigDal {
	l := logger.With(slog.String(logging.KeyDal, guildConfigDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildConfigDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *guildConfigDal) GetGuildConfig(ctx context.Context, guildID string) *entities.GuildConfig {
	// Get the guild config collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionGuildConfigs)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(guildConfigDalName, "get_guild_config", mongoDatabase, collectionGuildConfigs).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildConfigDalName, "get_guild_config", mongoDatabase, collectionGuildConfigs))
	defer t.ObserveDuration()

	cfg := entities.DefaultGuildConfig(guildID)

	// Get the stored document as a raw ordered document so that it can
	// be merged with the defaults before decoding.
	var stored bson.D
	err := collection.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&stored)
	switch {
	case err == mongo.ErrNoDocuments:
		// First sighting of this guild, persist the defaults.
		if saveErr := d.SaveGuildConfig(ctx, cfg); saveErr != nil {
			d.l.Error("Error saving default guild config",
				slog.String(logging.KeyGuild, guildID),
				slog.String(logging.KeyError, saveErr.Error()),
			)
		}
		return cfg
	case err != nil:
		d.l.Error("Error getting guild config, using defaults",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return cfg
	}

	defaults, err := asOrderedDoc(cfg)
	if err != nil {
		d.l.Error("Error encoding default guild config",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return cfg
	}

	merged := MergeDocs(defaults, stored)

	out := new(entities.GuildConfig)
	if err := decodeDoc(merged, out); err != nil {
		d.l.Error("Error decoding guild config, using defaults",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return cfg
	}
	out.ID = guildID
	return out
}

func (d *guildConfigDal) SaveGuildConfig(ctx context.Context, cfg *entities.GuildConfig) error {
	// Get the guild config collection.
	collection := d.client.Database(mongoDatabase).Collection(collectionGuildConfigs)

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(guildConfigDalName, "save_guild_config", mongoDatabase, collectionGuildConfigs).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildConfigDalName, "save_guild_config", mongoDatabase, collectionGuildConfigs))
	defer t.ObserveDuration()

	// Save the guild config.
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"guild_id": cfg.ID}, bson.M{"$set": cfg}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild config: %w", err)
	}
	return nil
}

// asOrderedDoc round-trips a value through BSON into an ordered document.
func asOrderedDoc(v any) (bson.D, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error marshalling document: %w", err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshalling document: %w", err)
	}
	return doc, nil
}

func decodeDoc(doc bson.D, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshalling document: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("error unmarshalling document: %w", err)
	}
	return nil
}
