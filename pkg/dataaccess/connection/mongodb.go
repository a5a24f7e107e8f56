package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbMonitoring "github.com/flimando/porter/pkg/dataaccess/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pingTimeout bounds the connection check so a bad URI fails fast
// instead of stalling startup.
const pingTimeout = 5 * time.Second

// MongoDB dials the cluster behind a single connection string. The bot
// takes the full URI from the environment, so there is no host or
// credential assembly here.
type MongoDB struct {
	ConnectionString string
}

// Connect establishes the client and verifies it with a ping. The ping
// is recorded against the health check metrics.
func (m *MongoDB) Connect() (*mongo.Client, error) {
	if m.ConnectionString == "" {
		return nil, errors.New("no mongo connection string provided")
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(m.ConnectionString).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	if err := ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}
	return client, nil
}

func ping(ctx context.Context, client *mongo.Client) error {
	// Time the check so the health metrics see slow clusters too.
	t := prometheus.NewTimer(dbMonitoring.MongoLatency.WithLabelValues("health_check", "ping", "-", "-"))
	defer t.ObserveDuration()
	dbMonitoring.MongoTotalRequests.WithLabelValues("health_check", "ping", "-", "-").Inc()

	return client.Ping(ctx, nil)
}
