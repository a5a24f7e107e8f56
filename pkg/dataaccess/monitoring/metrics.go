package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MongoLatency is the duration of each Mongo query, labelled by the
	// DAL and query that issued it.
	MongoLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "porter_mongo_query_duration_seconds",
			Help: "Duration of Mongo queries",
		},
		[]string{"dal", "query", "database", "collection"},
	)

	// MongoTotalRequests counts Mongo queries with the same labels.
	MongoTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "porter_mongo_queries_total",
			Help: "Total number of Mongo queries",
		},
		[]string{"dal", "query", "database", "collection"},
	)
)
