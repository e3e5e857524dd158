package rbac

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Values of the operation label.
const (
	opGrant          = "grant"
	opRevoke         = "revoke"
	opCategoryGrant  = "category_grant"
	opCategoryRevoke = "category_revoke"
	opReplace        = "replace"
	opMenuAssign     = "menu_assign"
)

var grantChanges = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "rbac_grant_changes_total",
		Help: "Number of committed changes to role grants and menu access, by operation.",
	},
	[]string{"operation"},
)

func countChange(operation string) {
	grantChanges.WithLabelValues(operation).Inc()
}
