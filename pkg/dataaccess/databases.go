package dataaccess

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB is the Mongo client. This is a connection pool.
var MongoDB *mongo.Client

const mongoDatabase = "porter"

// Collection names. Guild configuration and the ticket/panel registries live
// in separate collections so that each can evolve its schema independently.
const (
	collectionGuildConfigs = "guild_configs"
	collectionPanels       = "panels"
	collectionTickets      = "tickets"
)
