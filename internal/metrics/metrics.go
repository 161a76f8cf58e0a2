package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "jotjot"

const (
	NameSharesCreated     = "shares_created_total"
	NameShareLookups      = "share_lookups_total"
	NamePreviewsRendered  = "previews_rendered_total"
	NameIDCollisions      = "id_collisions_total"
	LabelResult           = "result"
	ResultOK              = "ok"
	ResultNotFound        = "not_found"
	ResultError           = "error"
	ResultValidationError = "invalid"
)

var SharesCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameSharesCreated,
		Help:      "Share creation attempts by result",
		Namespace: Namespace,
	},
	[]string{LabelResult},
)

var ShareLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameShareLookups,
		Help:      "Share lookups by result",
		Namespace: Namespace,
	},
	[]string{LabelResult},
)

var PreviewsRendered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NamePreviewsRendered,
		Help:      "Link preview images rendered by result",
		Namespace: Namespace,
	},
	[]string{LabelResult},
)

var IDCollisions = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameIDCollisions,
		Help:      "Generated identifiers rejected because the key was taken",
		Namespace: Namespace,
	},
)
