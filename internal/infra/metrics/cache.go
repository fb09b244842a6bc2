package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheLookupsTotal) }

var cacheLookupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Read-through cache lookups in front of Postgres.",
	},
	[]string{"cache", "result"}, // result: hit|miss|error
)

// ObserveCacheLookup records one read-through lookup. A read error counts as
// both an error and, since the caller falls through to the database, a miss.
func ObserveCacheLookup(cache string, hit bool, readErr error) {
	switch {
	case hit:
		cacheLookupsTotal.WithLabelValues(norm(cache), "hit").Inc()
		return
	case readErr != nil:
		cacheLookupsTotal.WithLabelValues(norm(cache), "error").Inc()
	}
	cacheLookupsTotal.WithLabelValues(norm(cache), "miss").Inc()
}
