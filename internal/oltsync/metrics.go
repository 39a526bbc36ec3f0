package oltsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oltwatch",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Per-device sync cycles by outcome.",
	}, []string{"result"})

	syncOnuFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "oltwatch",
		Subsystem: "sync",
		Name:      "onu_fetched_total",
		Help:      "ONU records fetched across all sync cycles.",
	})

	syncAlertsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "oltwatch",
		Subsystem: "sync",
		Name:      "alerts_sent_total",
		Help:      "Problem notifications attempted.",
	})

	syncRecoveriesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "oltwatch",
		Subsystem: "sync",
		Name:      "recoveries_sent_total",
		Help:      "Recovery notifications attempted.",
	})

	syncOnuRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "oltwatch",
		Subsystem: "sync",
		Name:      "onu_removed_total",
		Help:      "ONU rows pruned because the device stopped reporting them.",
	})
)
