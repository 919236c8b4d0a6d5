package dashboard

import "wip-dashboard/internal/storage"

// ApplyDelta returns summary with one record change applied: the old state's
// contribution removed and the new state's added. before is nil for a create,
// after is nil for a delete. Excluded states contribute nothing. The input
// summary is not modified.
func ApplyDelta(summary *storage.DashboardSummary, before, after *storage.ProjectRecord, rules Rules) *storage.DashboardSummary {
	out := Clone(summary)

	if before != nil && !rules.IsExcluded(*before, VariantTrigger) {
		rules.Apply(out, *before, -1)
	}
	if after != nil && !rules.IsExcluded(*after, VariantTrigger) {
		rules.Apply(out, *after, 1)
	}

	Prune(out)
	return out
}
