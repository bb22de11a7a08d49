// Package promhooks exports scopecache hook events as Prometheus counters.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unkn0wn-root/scopecache"
)

// Error kinds reported on scopecache_errors_total.
const (
	KindCorrupt     = "corrupt"
	KindVersionGet  = "version_get"
	KindVersionBump = "version_bump"
	KindBypassed    = "bypassed"
)

type Hooks struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	Bumps       prometheus.Counter
	SetRejected prometheus.Counter
	Errors      *prometheus.CounterVec
}

var _ scopecache.Hooks = (*Hooks)(nil)

// New creates the counters and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scopecache_hits_total",
			Help: "Total number of cached responses served.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scopecache_misses_total",
			Help: "Total number of lookups that ran the handler.",
		}),
		Bumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scopecache_version_bumps_total",
			Help: "Total number of successful version scope bumps.",
		}),
		SetRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scopecache_provider_set_rejected_total",
			Help: "Total number of writes the value store rejected under pressure.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scopecache_errors_total",
			Help: "Total number of cache errors by kind.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{h.Hits, h.Misses, h.Bumps, h.SetRejected, h.Errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Hit(string)                 { h.Hits.Inc() }
func (h *Hooks) Miss(string)                { h.Misses.Inc() }
func (h *Hooks) ProviderSetRejected(string) { h.SetRejected.Inc() }
func (h *Hooks) CorruptEntry(string, error) { h.Errors.WithLabelValues(KindCorrupt).Inc() }
func (h *Hooks) VersionBumped(string, int64) {
	h.Bumps.Inc()
}

func (h *Hooks) VersionError(op, _ string, _ error) {
	kind := KindVersionGet
	if op == "bump" {
		kind = KindVersionBump
	}
	h.Errors.WithLabelValues(kind).Inc()
}

func (h *Hooks) StoreBypassed(string, error) { h.Errors.WithLabelValues(KindBypassed).Inc() }
