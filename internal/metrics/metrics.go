// Package metrics exposes Prometheus counters for the auth flow and the
// revocation gate.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware depend on.
type Recorder interface {
	AuthAttempt(op, result string)
	TokenIssued(tokenType string)
	TokenRevocation(revoked bool)
	GateRejected(reason string)
	TokensPruned(n int64)
}

type Collector struct {
	authAttempts *prometheus.CounterVec
	tokensIssued *prometheus.CounterVec
	revocations  *prometheus.CounterVec
	gateRejected *prometheus.CounterVec
	tokensPruned prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_auth_attempts_total",
			Help: "Signup, signin and refresh attempts by result.",
		}, []string{"op", "result"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_tokens_issued_total",
			Help: "Tokens minted and recorded in the ledger.",
		}, []string{"type"}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_token_revocations_total",
			Help: "Revoke and unrevoke requests applied to the ledger.",
		}, []string{"action"}),
		gateRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_gate_rejections_total",
			Help: "Requests rejected by the revocation gate.",
		}, []string{"reason"}),
		tokensPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_tokens_pruned_total",
			Help: "Expired ledger rows removed by the cleanup worker.",
		}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.tokensIssued,
		c.revocations,
		c.gateRejected,
		c.tokensPruned,
	)

	return c
}

func (c *Collector) AuthAttempt(op, result string) {
	c.authAttempts.WithLabelValues(op, result).Inc()
}

func (c *Collector) TokenIssued(tokenType string) {
	c.tokensIssued.WithLabelValues(tokenType).Inc()
}

func (c *Collector) TokenRevocation(revoked bool) {
	action := "unrevoke"
	if revoked {
		action = "revoke"
	}
	c.revocations.WithLabelValues(action).Inc()
}

func (c *Collector) GateRejected(reason string) {
	c.gateRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) TokensPruned(n int64) {
	c.tokensPruned.Add(float64(n))
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Nop struct{}

func (Nop) AuthAttempt(string, string) {}
func (Nop) TokenIssued(string)         {}
func (Nop) TokenRevocation(bool)       {}
func (Nop) GateRejected(string)        {}
func (Nop) TokensPruned(int64)         {}
