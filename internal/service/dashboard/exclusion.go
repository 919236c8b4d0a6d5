package dashboard

import (
	"strings"

	"wip-dashboard/internal/config"
	"wip-dashboard/internal/constants"
	"wip-dashboard/internal/storage"
)

const (
	unknownStatus   = constants.StatusUnknown
	unknownCustomer = constants.UnknownCustomer
)

// Variant selects which exclusion rule set applies. The dashboard filter also
// drops records by estimator; the incremental trigger does not.
type Variant int

const (
	VariantDashboard Variant = iota
	VariantTrigger
)

func (v Variant) String() string {
	switch v {
	case VariantDashboard:
		return "dashboard"
	case VariantTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// Rules is the exclusion and labor-category configuration shared by every
// aggregation path.
type Rules struct {
	BlockedProjectNames       []string
	BlockedCustomerSubstrings []string
	BlockedNameSubstrings     []string
	BlockedProjectNumbers     []string
	ExcludedEstimators        []string
	ExcludedStatuses          []string
	PriorityStatuses          []string
	PMPrefix                  string
}

func DefaultRules() Rules {
	return Rules{
		BlockedProjectNames:       constants.BlockedProjectNames,
		BlockedCustomerSubstrings: constants.BlockedCustomerSubstrings,
		BlockedNameSubstrings:     constants.BlockedNameSubstrings,
		BlockedProjectNumbers:     constants.BlockedProjectNumbers,
		ExcludedEstimators:        constants.ExcludedEstimators,
		ExcludedStatuses:          constants.ExcludedStatuses,
		PriorityStatuses:          constants.PriorityStatuses,
		PMPrefix:                  constants.PMPrefix,
	}
}

// RulesFromConfig builds Rules from the configured exclusion data.
func RulesFromConfig(e config.Exclusions) Rules {
	return Rules{
		BlockedProjectNames:       e.BlockedProjectNames,
		BlockedCustomerSubstrings: e.BlockedCustomerSubstrings,
		BlockedNameSubstrings:     e.BlockedNameSubstrings,
		BlockedProjectNumbers:     e.BlockedProjectNumbers,
		ExcludedEstimators:        e.ExcludedEstimators,
		ExcludedStatuses:          e.ExcludedStatuses,
		PriorityStatuses:          e.PriorityStatuses,
		PMPrefix:                  e.PMPrefix,
	}
}

// IsExcluded reports whether rec must not count toward any aggregate.
func (r Rules) IsExcluded(rec storage.ProjectRecord, variant Variant) bool {
	if rec.ProjectArchived {
		return true
	}

	for _, s := range r.ExcludedStatuses {
		if statusIs(rec.Status, s) {
			return true
		}
	}

	customer := strings.ToLower(rec.Customer)
	for _, sub := range r.BlockedCustomerSubstrings {
		if sub != "" && strings.Contains(customer, strings.ToLower(sub)) {
			return true
		}
	}

	name := strings.ToLower(strings.TrimSpace(rec.ProjectName))
	for _, blocked := range r.BlockedProjectNames {
		if name == strings.ToLower(strings.TrimSpace(blocked)) {
			return true
		}
	}
	for _, sub := range r.BlockedNameSubstrings {
		if sub != "" && strings.Contains(name, strings.ToLower(sub)) {
			return true
		}
	}

	number := strings.ToLower(strings.TrimSpace(rec.ProjectNumber))
	for _, blocked := range r.BlockedProjectNumbers {
		if number != "" && number == strings.ToLower(strings.TrimSpace(blocked)) {
			return true
		}
	}

	if variant == VariantDashboard {
		estimator := strings.ToLower(strings.TrimSpace(rec.Estimator))
		if estimator == "" {
			return true
		}
		for _, e := range r.ExcludedEstimators {
			if estimator == strings.ToLower(strings.TrimSpace(e)) {
				return true
			}
		}
	}

	return false
}

// Filter returns the records that survive IsExcluded, in input order.
func (r Rules) Filter(records []storage.ProjectRecord, variant Variant) []storage.ProjectRecord {
	out := make([]storage.ProjectRecord, 0, len(records))
	for _, rec := range records {
		if !r.IsExcluded(rec, variant) {
			out = append(out, rec)
		}
	}
	return out
}

func (r Rules) isPriority(status string) bool {
	for _, s := range r.PriorityStatuses {
		if statusIs(status, s) {
			return true
		}
	}
	return false
}

func (r Rules) isPMGroup(tag string) bool {
	return r.PMPrefix != "" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(tag)), strings.ToLower(r.PMPrefix))
}
