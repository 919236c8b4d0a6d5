package dashboard

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"wip-dashboard/internal/constants"
	"wip-dashboard/internal/storage"
)

func NewSummary() *storage.DashboardSummary {
	return &storage.DashboardSummary{
		StatusGroups:         make(map[string]storage.StatusGroup),
		Contractors:          make(map[string]storage.ContractorGroup),
		PMCGroupHours:        make(map[string]decimal.Decimal),
		PMCGroupCounts:       make(map[string]int),
		LaborBreakdown:       make(map[string]decimal.Decimal),
		LaborBreakdownCounts: make(map[string]int),
	}
}

// Rebuild computes the dashboard summary from scratch: filter, deduplicate,
// then fold every survivor with multiplier +1.
func Rebuild(records []storage.ProjectRecord, rules Rules, variant Variant) *storage.DashboardSummary {
	s := NewSummary()
	for _, rec := range rules.Deduplicate(rules.Filter(records, variant)) {
		rules.Apply(s, rec, 1)
	}
	Prune(s)
	return s
}

// Bootstrap folds the filtered records without deduplication. This is the
// value the incremental path maintains, so it seeds the persisted document.
func Bootstrap(records []storage.ProjectRecord, rules Rules) *storage.DashboardSummary {
	s := NewSummary()
	for _, rec := range rules.Filter(records, VariantTrigger) {
		rules.Apply(s, rec, 1)
	}
	Prune(s)
	return s
}

// Apply adds rec's contribution to s scaled by multiplier (+1 to add, -1 to
// remove). It does not prune.
func (r Rules) Apply(s *storage.DashboardSummary, rec storage.ProjectRecord, multiplier int) {
	ensureMaps(s)

	m := decimal.NewFromInt(int64(multiplier))
	sales, cost, hours := Amount(rec.Sales).Mul(m), Amount(rec.Cost).Mul(m), Amount(rec.Hours).Mul(m)
	status := statusKey(rec.Status)
	customer := customerKey(rec.Customer)
	tag := strings.TrimSpace(rec.PMCGroup)

	s.TotalSales = s.TotalSales.Add(sales)
	s.TotalCost = s.TotalCost.Add(cost)
	s.TotalHours = s.TotalHours.Add(hours)

	sg := s.StatusGroups[status]
	addBucket(&sg.Bucket, sales, cost, hours, multiplier)
	if sg.LaborByGroup == nil {
		sg.LaborByGroup = make(map[string]decimal.Decimal)
	}
	if sg.LaborCounts == nil {
		sg.LaborCounts = make(map[string]int)
	}
	if tag != "" {
		addHours(sg.LaborByGroup, sg.LaborCounts, tag, hours, multiplier)
	}
	s.StatusGroups[status] = sg

	cg := s.Contractors[customer]
	addBucket(&cg.Bucket, sales, cost, hours, multiplier)
	if cg.ByStatus == nil {
		cg.ByStatus = make(map[string]storage.Bucket)
	}
	bs := cg.ByStatus[status]
	addBucket(&bs, sales, cost, hours, multiplier)
	cg.ByStatus[status] = bs
	s.Contractors[customer] = cg

	if tag == "" {
		return
	}
	bid := statusIs(rec.Status, constants.StatusBidSubmitted)
	if bid || r.isPMGroup(tag) {
		addHours(s.PMCGroupHours, s.PMCGroupCounts, tag, hours, multiplier)
	}
	if bid {
		addHours(s.LaborBreakdown, s.LaborBreakdownCounts, tag, hours, multiplier)
	}
}

// Prune drops whatever no record stands behind any more: contractors, status
// groups and per-status contractor buckets with count <= 0, and labor-hour
// entries whose record count is back to zero. A tag carried only by zero-hour
// records stays as tag: 0.
func Prune(s *storage.DashboardSummary) {
	ensureMaps(s)

	for customer, cg := range s.Contractors {
		if cg.Count <= 0 {
			delete(s.Contractors, customer)
			continue
		}
		for status, b := range cg.ByStatus {
			if b.Count <= 0 {
				delete(cg.ByStatus, status)
			}
		}
	}

	for status, sg := range s.StatusGroups {
		if sg.Count <= 0 {
			delete(s.StatusGroups, status)
			continue
		}
		pruneHours(sg.LaborByGroup, sg.LaborCounts)
	}

	pruneHours(s.PMCGroupHours, s.PMCGroupCounts)
	pruneHours(s.LaborBreakdown, s.LaborBreakdownCounts)
}

// Clone returns a deep copy of s.
func Clone(s *storage.DashboardSummary) *storage.DashboardSummary {
	out := NewSummary()
	if s == nil {
		return out
	}

	out.TotalSales, out.TotalCost, out.TotalHours = s.TotalSales, s.TotalCost, s.TotalHours
	out.LastUpdated = s.LastUpdated

	for k, sg := range s.StatusGroups {
		out.StatusGroups[k] = storage.StatusGroup{
			Bucket:       sg.Bucket,
			LaborByGroup: copyMap(sg.LaborByGroup),
			LaborCounts:  copyMap(sg.LaborCounts),
		}
	}
	for k, cg := range s.Contractors {
		out.Contractors[k] = storage.ContractorGroup{Bucket: cg.Bucket, ByStatus: copyMap(cg.ByStatus)}
	}
	out.PMCGroupHours = copyMap(s.PMCGroupHours)
	out.PMCGroupCounts = copyMap(s.PMCGroupCounts)
	out.LaborBreakdown = copyMap(s.LaborBreakdown)
	out.LaborBreakdownCounts = copyMap(s.LaborBreakdownCounts)

	return out
}

// Amount converts a stored amount to an exact decimal. Missing or
// non-finite values count as zero.
func Amount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func addBucket(b *storage.Bucket, sales, cost, hours decimal.Decimal, count int) {
	b.Sales = b.Sales.Add(sales)
	b.Cost = b.Cost.Add(cost)
	b.Hours = b.Hours.Add(hours)
	b.Count += count
}

func addHours(hours map[string]decimal.Decimal, counts map[string]int, tag string, h decimal.Decimal, count int) {
	hours[tag] = hours[tag].Add(h)
	counts[tag] += count
}

func pruneHours(hours map[string]decimal.Decimal, counts map[string]int) {
	for tag := range hours {
		if counts[tag] <= 0 {
			delete(hours, tag)
		}
	}
	for tag, c := range counts {
		if c <= 0 {
			delete(counts, tag)
		}
	}
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func ensureMaps(s *storage.DashboardSummary) {
	if s.StatusGroups == nil {
		s.StatusGroups = make(map[string]storage.StatusGroup)
	}
	if s.Contractors == nil {
		s.Contractors = make(map[string]storage.ContractorGroup)
	}
	if s.PMCGroupHours == nil {
		s.PMCGroupHours = make(map[string]decimal.Decimal)
	}
	if s.PMCGroupCounts == nil {
		s.PMCGroupCounts = make(map[string]int)
	}
	if s.LaborBreakdown == nil {
		s.LaborBreakdown = make(map[string]decimal.Decimal)
	}
	if s.LaborBreakdownCounts == nil {
		s.LaborBreakdownCounts = make(map[string]int)
	}
}
