package dashboard

import (
	"encoding/json"
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wip-dashboard/internal/storage"
)

// requireSameSummary compares summaries by their JSON form, where equal
// decimals always render the same.
func requireSameSummary(t *testing.T, want, got *storage.DashboardSummary, msgAndArgs ...any) {
	t.Helper()

	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(w), string(g), msgAndArgs...)
}

func hoursOf(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

func bucketOf(b storage.Bucket) []any {
	return []any{b.Sales.String(), b.Cost.String(), b.Hours.String(), b.Count}
}

func TestApply_Buckets(t *testing.T) {
	rules := DefaultRules()
	s := NewSummary()

	bid := project("a", "P-1", "Acme", "Bid Submitted", 100, 10)
	bid.PMCGroup = "Carpentry"
	pm := project("b", "P-2", "Acme", "In Progress", 50, 4)
	pm.PMCGroup = "PM-Field"
	plain := project("c", "P-3", "", "", 20, 2)

	rules.Apply(s, bid, 1)
	rules.Apply(s, pm, 1)
	rules.Apply(s, plain, 1)

	assert.Equal(t, "170", s.TotalSales.String())
	assert.Equal(t, "85", s.TotalCost.String())
	assert.Equal(t, "16", s.TotalHours.String())

	assert.Equal(t, []any{"100", "50", "10", 1}, bucketOf(s.StatusGroups["Bid Submitted"].Bucket))
	assert.Equal(t, map[string]string{"Carpentry": "10"}, hoursOf(s.StatusGroups["Bid Submitted"].LaborByGroup))
	assert.Equal(t, map[string]int{"Carpentry": 1}, s.StatusGroups["Bid Submitted"].LaborCounts)
	assert.Equal(t, []any{"20", "10", "2", 1}, bucketOf(s.StatusGroups["Unknown"].Bucket))
	assert.Empty(t, s.StatusGroups["Unknown"].LaborByGroup)

	acme := s.Contractors["Acme"]
	assert.Equal(t, 2, acme.Count)
	assert.Equal(t, "150", acme.Sales.String())
	assert.Equal(t, 1, acme.ByStatus["In Progress"].Count)
	assert.Equal(t, 1, s.Contractors["Unknown"].Count)

	assert.Equal(t, map[string]string{"Carpentry": "10", "PM-Field": "4"}, hoursOf(s.PMCGroupHours))
	assert.Equal(t, map[string]int{"Carpentry": 1, "PM-Field": 1}, s.PMCGroupCounts)
	assert.Equal(t, map[string]string{"Carpentry": "10"}, hoursOf(s.LaborBreakdown))
}

func TestApply_ZeroHourTagIsKept(t *testing.T) {
	rules := DefaultRules()

	rec := project("a", "P-1", "Acme", "Bid Submitted", 100, 0)
	rec.PMCGroup = "Carpentry"

	s := Bootstrap([]storage.ProjectRecord{rec}, rules)
	assert.Equal(t, map[string]string{"Carpentry": "0"}, hoursOf(s.LaborBreakdown))
	assert.Equal(t, map[string]string{"Carpentry": "0"}, hoursOf(s.PMCGroupHours))
	assert.Equal(t, map[string]string{"Carpentry": "0"}, hoursOf(s.StatusGroups["Bid Submitted"].LaborByGroup))

	incremental := ApplyDelta(NewSummary(), nil, &rec, rules)
	requireSameSummary(t, s, incremental)
}

func TestApplyDelta_ZeroHourTagSurvivesSiblingRemoval(t *testing.T) {
	rules := DefaultRules()

	idle := project("a", "P-1", "Acme", "Bid Submitted", 10, 0)
	idle.PMCGroup = "Carpentry"
	busy := project("b", "P-2", "Acme", "Bid Submitted", 10, 5)
	busy.PMCGroup = "Carpentry"

	s := Bootstrap([]storage.ProjectRecord{idle, busy}, rules)
	assert.Equal(t, map[string]string{"Carpentry": "5"}, hoursOf(s.LaborBreakdown))

	s = ApplyDelta(s, &busy, nil, rules)
	assert.Equal(t, map[string]string{"Carpentry": "0"}, hoursOf(s.LaborBreakdown))
	requireSameSummary(t, Bootstrap([]storage.ProjectRecord{idle}, rules), s)

	s = ApplyDelta(s, &idle, nil, rules)
	assert.Empty(t, s.LaborBreakdown)
	assert.Empty(t, s.LaborBreakdownCounts)
}

func TestRebuild_Idempotent(t *testing.T) {
	rules := DefaultRules()
	records := sampleRecords()

	first, err := json.Marshal(Rebuild(records, rules, VariantDashboard))
	require.NoError(t, err)
	second, err := json.Marshal(Rebuild(records, rules, VariantDashboard))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRebuild_ExclusionIsAbsolute(t *testing.T) {
	rules := DefaultRules()

	blocked := []storage.ProjectRecord{
		{ID: "x1", ProjectNumber: "P-9", ProjectName: "Shop Time", Customer: "Acme", Status: "In Progress", Estimator: "Dana", Sales: 999, Hours: 99, PMCGroup: "PM"},
		{ID: "x2", ProjectNumber: "P-100", ProjectName: "Tower", Customer: "Acme", Status: "Accepted", Estimator: "Dana", Sales: 999, ProjectArchived: true},
		{ID: "x3", ProjectNumber: "000000", ProjectName: "Tower", Customer: "Zenith", Status: "Accepted", Estimator: "Dana", Sales: 999},
		{ID: "x4", ProjectNumber: "P-7", ProjectName: "Tower", Customer: "Zenith", Status: "Accepted", Estimator: "House Account", Sales: 999},
	}

	// archived x2 shares an identifier with a live record; it must not win the
	// customer conflict or leak into the merged totals
	live := project("a", "P-100", "Zenith", "Estimating", 10, 1)
	records := append(blocked, live)

	s := Rebuild(records, rules, VariantDashboard)
	assert.Equal(t, "10", s.TotalSales.String())
	assert.Equal(t, "1", s.TotalHours.String())
	assert.NotContains(t, s.Contractors, "Acme")
	assert.Equal(t, 1, s.Contractors["Zenith"].Count)
	assert.Empty(t, s.PMCGroupHours)
}

func TestApplyDelta_ConvergesWithBootstrap(t *testing.T) {
	rules := DefaultRules()
	s := NewSummary()

	a := project("a", "P-1", "Acme", "Estimating", 100, 10)
	b := project("b", "P-2", "Acme", "Estimating", 50, 5)

	s = ApplyDelta(s, nil, &a, rules)
	s = ApplyDelta(s, nil, &b, rules)

	updated := a
	updated.Sales = 200
	s = ApplyDelta(s, &a, &updated, rules)

	assert.Equal(t, "250", s.TotalSales.String())
	requireSameSummary(t, Bootstrap([]storage.ProjectRecord{updated, b}, rules), s)
}

func TestApplyDelta_DecimalAmountsConverge(t *testing.T) {
	rules := DefaultRules()

	a := project("a", "P-1", "Acme", "Bid Submitted", 0.1, 1e7)
	a.PMCGroup = "Carpentry"
	b := project("b", "P-2", "Acme", "Bid Submitted", 0.2, 0.1)
	b.PMCGroup = "Carpentry"

	s := ApplyDelta(NewSummary(), nil, &a, rules)
	s = ApplyDelta(s, nil, &b, rules)
	assert.Equal(t, "0.3", s.TotalSales.String())

	s = ApplyDelta(s, &a, nil, rules)

	assert.Equal(t, "0.2", s.TotalSales.String())
	assert.Equal(t, "0.1", s.TotalCost.String())
	assert.Equal(t, "0.1", s.TotalHours.String())
	assert.Equal(t, map[string]string{"Carpentry": "0.1"}, hoursOf(s.LaborBreakdown))
	requireSameSummary(t, Bootstrap([]storage.ProjectRecord{b}, rules), s)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalSales":0.2,`)
}

func TestApplyDelta_PrunesRemovedCustomer(t *testing.T) {
	rules := DefaultRules()

	a := project("a", "P-1", "Acme", "Bid Submitted", 100, 10)
	a.PMCGroup = "Carpentry"
	b := project("b", "P-2", "Zenith", "Estimating", 50, 5)

	s := Bootstrap([]storage.ProjectRecord{a, b}, rules)
	require.Contains(t, s.Contractors, "Acme")

	s = ApplyDelta(s, &a, nil, rules)

	assert.NotContains(t, s.Contractors, "Acme")
	assert.NotContains(t, s.StatusGroups, "Bid Submitted")
	assert.Empty(t, s.PMCGroupHours)
	assert.Empty(t, s.LaborBreakdown)
	assert.Equal(t, 1, s.Contractors["Zenith"].Count)
}

func TestApplyDelta_ExcludedStatesContributeNothing(t *testing.T) {
	rules := DefaultRules()

	a := project("a", "P-1", "Acme", "Estimating", 100, 10)
	s := Bootstrap([]storage.ProjectRecord{a}, rules)

	archived := a
	archived.ProjectArchived = true
	s = ApplyDelta(s, &a, &archived, rules)
	requireSameSummary(t, NewSummary(), s)

	s = ApplyDelta(s, &archived, &a, rules)
	assert.Equal(t, "100", s.TotalSales.String())
	assert.Equal(t, 1, s.Contractors["Acme"].Count)
}

func TestApplyDelta_DoesNotMutateInput(t *testing.T) {
	rules := DefaultRules()

	a := project("a", "P-1", "Acme", "Estimating", 100, 10)
	a.PMCGroup = "PM"
	s := Bootstrap([]storage.ProjectRecord{a}, rules)
	snapshot := Clone(s)

	b := project("b", "P-2", "Acme", "Estimating", 10, 1)
	b.PMCGroup = "PM"
	_ = ApplyDelta(s, nil, &b, rules)

	requireSameSummary(t, snapshot, s)
}

// Random sequences of creates, updates and deletes must always land on the
// same summary a fresh bootstrap over the surviving records produces.
func TestApplyDelta_RandomSequenceConverges(t *testing.T) {
	rules := DefaultRules()
	rng := rand.New(rand.NewSource(42))

	customers := []string{"Acme", "Zenith", "Big SOP Inc", ""}
	statuses := []string{"Estimating", "Bid Submitted", "In Progress", "Invitations", ""}
	groups := []string{"", "Carpentry", "PM-Field", "Electrical"}
	amounts := []float64{0, 0.1, 0.2, 0.3, 19.99, 1234.56, 1e7}

	randomRecord := func(id string) storage.ProjectRecord {
		return storage.ProjectRecord{
			ID:              id,
			ProjectNumber:   id,
			Customer:        customers[rng.Intn(len(customers))],
			Status:          statuses[rng.Intn(len(statuses))],
			PMCGroup:        groups[rng.Intn(len(groups))],
			Sales:           amounts[rng.Intn(len(amounts))],
			Cost:            amounts[rng.Intn(len(amounts))],
			Hours:           amounts[rng.Intn(len(amounts))],
			ProjectArchived: rng.Intn(6) == 0,
		}
	}

	live := make(map[string]storage.ProjectRecord)
	s := NewSummary()

	for i := 0; i < 400; i++ {
		id := []string{"r1", "r2", "r3", "r4", "r5", "r6"}[rng.Intn(6)]
		prev, exists := live[id]

		switch {
		case !exists:
			next := randomRecord(id)
			s = ApplyDelta(s, nil, &next, rules)
			live[id] = next
		case rng.Intn(3) == 0:
			s = ApplyDelta(s, &prev, nil, rules)
			delete(live, id)
		default:
			next := randomRecord(id)
			s = ApplyDelta(s, &prev, &next, rules)
			live[id] = next
		}

		ids := make([]string, 0, len(live))
		for k := range live {
			ids = append(ids, k)
		}
		sort.Strings(ids)
		final := make([]storage.ProjectRecord, 0, len(ids))
		for _, k := range ids {
			final = append(final, live[k])
		}

		requireSameSummary(t, Bootstrap(final, rules), s, "step %d", i)
	}
}

func TestPrune_DropsEmptyBuckets(t *testing.T) {
	s := NewSummary()
	s.Contractors["Gone"] = storage.ContractorGroup{ByStatus: map[string]storage.Bucket{}}
	s.Contractors["Kept"] = storage.ContractorGroup{
		Bucket: storage.Bucket{Count: 1},
		ByStatus: map[string]storage.Bucket{
			"Estimating": {Count: 1},
			"Lost":       {Count: 0, Sales: decimal.RequireFromString("0.01")},
		},
	}
	s.StatusGroups["Lost"] = storage.StatusGroup{Bucket: storage.Bucket{Count: -1}}
	s.PMCGroupHours["Carpentry"] = decimal.RequireFromString("2.5")
	s.PMCGroupCounts["Carpentry"] = 0
	s.LaborBreakdown["Carpentry"] = decimal.Zero
	s.LaborBreakdownCounts["Carpentry"] = 1

	Prune(s)

	assert.NotContains(t, s.Contractors, "Gone")
	assert.NotContains(t, s.Contractors["Kept"].ByStatus, "Lost")
	assert.NotContains(t, s.StatusGroups, "Lost")
	assert.Empty(t, s.PMCGroupHours)
	assert.Empty(t, s.PMCGroupCounts)
	assert.Equal(t, map[string]string{"Carpentry": "0"}, hoursOf(s.LaborBreakdown))
}

func TestClone_NilSummary(t *testing.T) {
	requireSameSummary(t, NewSummary(), Clone(nil))
}

func TestSummary_JSONRoundTripKeepsAmounts(t *testing.T) {
	s := Bootstrap(sampleRecords(), DefaultRules())

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back storage.DashboardSummary
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.True(t, s.TotalSales.Equal(back.TotalSales))
	requireSameSummary(t, s, &back)
}

func sampleRecords() []storage.ProjectRecord {
	records := []storage.ProjectRecord{
		project("a", "P-1", "Acme", "Estimating", 100.1, 10.3),
		project("b", "P-1", "Zenith", "Accepted", 220.7, 30.9),
		project("c", "P-2", "Acme", "Bid Submitted", 0.3, 7.7),
		project("d", "P-3", "Northwind", "In Progress", 1e6/3, 12.1),
		project("e", "P-3", "northwind ", "In Progress", 1.0/3, 0.2),
		project("f", "P-4", "", "", 5, 5),
	}
	records[2].PMCGroup = "Carpentry"
	records[3].PMCGroup = "PM-Field"
	return records
}
