package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Low-overhead counters for the conversation/story core. Mounted at
// /metrics via promhttp in the server command.

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusconnect_messages_sent_total",
		Help: "Messages appended to conversations.",
	})
	AssistantReplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusconnect_assistant_replies_total",
		Help: "Assistant replies appended after a successful collaborator call.",
	})
	AssistantFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusconnect_assistant_failures_total",
		Help: "Reply-generator calls that failed and were logged only.",
	})
	Composing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campusconnect_assistant_composing",
		Help: "1 while an assistant reply is outstanding.",
	})
	StoriesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusconnect_stories_added_total",
		Help: "Stories accepted by the ephemeral content store.",
	})
	StoriesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusconnect_stories_purged_total",
		Help: "Expired stories physically purged by the sweeper.",
	})
	DeletesCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusconnect_deletes_committed_total",
		Help: "Pending deletions that reached their grace deadline.",
	}, []string{"kind"})
	DeletesRestored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusconnect_deletes_restored_total",
		Help: "Pending deletions cancelled by an explicit undo.",
	}, []string{"kind"})
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusconnect_persist_failures_total",
		Help: "Writes that failed at the persistence mirror; memory stays authoritative.",
	})
)

// RegisterDBSize exposes the mirror's on-disk footprint once the store
// is wired; called from app startup to avoid an import cycle at init.
func RegisterDBSize(size func() uint64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "campusconnect_db_size_bytes",
		Help: "Best-effort on-disk size of the persistence mirror.",
	}, func() float64 { return float64(size()) })
}
