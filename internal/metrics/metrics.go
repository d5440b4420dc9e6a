// Package metrics records staking and ledger activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pnyx"

// Rollback reasons.
const (
	ReasonExpired    = "expired"
	ReasonSuperseded = "superseded"
)

// Recorder receives domain events worth counting.
type Recorder interface {
	StakeCreated()
	StakeRolledBack(reason string)
	WalletTransaction(txType string)
	InsufficientFunds(operation string)
	SweepCompleted(rolledBack int, took time.Duration)
}

// Prometheus is a Recorder backed by its own registry.
type Prometheus struct {
	registry          *prometheus.Registry
	stakesCreated     prometheus.Counter
	stakesRolledBack  *prometheus.CounterVec
	walletTxs         *prometheus.CounterVec
	insufficientFunds *prometheus.CounterVec
	sweepDuration     prometheus.Histogram
	sweepRolledBack   prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		stakesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stakes_created_total",
			Help:      "Number of proposal stakes created.",
		}),
		stakesRolledBack: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stakes_rolled_back_total",
			Help:      "Number of proposal stakes rolled back, by reason.",
		}, []string{"reason"}),
		walletTxs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_transactions_total",
			Help:      "Number of wallet transactions applied, by transaction type.",
		}, []string{"type"}),
		insufficientFunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_funds_total",
			Help:      "Number of operations rejected for insufficient funds.",
		}, []string{"operation"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stake_sweep_duration_seconds",
			Help:      "Duration of expired stake sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		sweepRolledBack: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stake_sweep_rolled_back_total",
			Help:      "Number of stakes rolled back by sweeps.",
		}),
	}
	p.registry.MustRegister(
		p.stakesCreated,
		p.stakesRolledBack,
		p.walletTxs,
		p.insufficientFunds,
		p.sweepDuration,
		p.sweepRolledBack,
		prometheus.NewGoCollector(),
	)
	return p
}

func (p *Prometheus) StakeCreated() { p.stakesCreated.Inc() }

func (p *Prometheus) StakeRolledBack(reason string) {
	p.stakesRolledBack.WithLabelValues(reason).Inc()
}

func (p *Prometheus) WalletTransaction(txType string) {
	p.walletTxs.WithLabelValues(txType).Inc()
}

func (p *Prometheus) InsufficientFunds(operation string) {
	p.insufficientFunds.WithLabelValues(operation).Inc()
}

func (p *Prometheus) SweepCompleted(rolledBack int, took time.Duration) {
	p.sweepDuration.Observe(took.Seconds())
	p.sweepRolledBack.Add(float64(rolledBack))
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) StakeCreated()                     {}
func (Nop) StakeRolledBack(string)            {}
func (Nop) WalletTransaction(string)          {}
func (Nop) InsufficientFunds(string)          {}
func (Nop) SweepCompleted(int, time.Duration) {}
