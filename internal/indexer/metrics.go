package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job results recorded in shop_index_jobs_total.
const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultNotFound = "not_found"
)

var (
	indexJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_index_jobs_total",
		Help: "Asynchronous index jobs by operation and outcome.",
	}, []string{"op", "result"})

	indexRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_index_retries_total",
		Help: "Index job attempts that failed and were retried.",
	}, []string{"op"})

	indexRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_index_rejected_total",
		Help: "Index jobs refused because the queue was full or the pool closed.",
	}, []string{"op"})

	indexQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shop_index_queue_depth",
		Help: "Index jobs waiting for a worker.",
	})

	indexWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shop_index_workers",
		Help: "Running index workers, core and extra.",
	})

	reindexDocuments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_reindex_documents_total",
		Help: "Documents written or skipped by paginated reindexing.",
	}, []string{"result"})
)
