package deal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)

//nolint:gochecknoglobals
var (
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propinvest",
		Subsystem: "deal",
		Name:      "evaluations_total",
		Help:      "Deal evaluations by outcome.",
	}, []string{"outcome"})

	dutyLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propinvest",
		Subsystem: "duty",
		Name:      "lookups_total",
		Help:      "Stamp duty lookups by jurisdiction and bracket resolution.",
	}, []string{"jurisdiction", "outcome"})
)
