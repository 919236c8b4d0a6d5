package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"wip-dashboard/internal/storage"
)

type customerVariant struct {
	key     string
	records []storage.ProjectRecord
}

// Deduplicate collapses records that describe the same real project. It runs
// in two stages and both are required for correct totals:
//
//  1. per identifier, a project imported under several customers keeps one
//     customer variant (priority status first, then the most recent date,
//     then the lowest normalized customer name);
//  2. the survivors are grouped by GroupKey and each group is merged into one
//     record whose amounts are the group's sums.
//
// Input should already be filtered. The output is ordered by group key.
func (r Rules) Deduplicate(records []storage.ProjectRecord) []storage.ProjectRecord {
	byIdentifier := make(map[string][]storage.ProjectRecord)
	for _, rec := range records {
		id := rec.Identifier()
		byIdentifier[id] = append(byIdentifier[id], rec)
	}

	identifiers := make([]string, 0, len(byIdentifier))
	for id := range byIdentifier {
		identifiers = append(identifiers, id)
	}
	sort.Strings(identifiers)

	selected := make([]storage.ProjectRecord, 0, len(records))
	for _, id := range identifiers {
		selected = append(selected, r.resolveCustomers(byIdentifier[id])...)
	}

	return mergeByGroupKey(selected)
}

// resolveCustomers picks the records of one identifier that survive the
// customer-conflict rule.
func (r Rules) resolveCustomers(records []storage.ProjectRecord) []storage.ProjectRecord {
	variants := splitByCustomer(records)
	if len(variants) == 1 {
		return variants[0].records
	}

	for _, v := range variants {
		for _, rec := range v.records {
			if r.isPriority(rec.Status) {
				return v.records
			}
		}
	}

	best := variants[0]
	bestDate, bestOK := latestDate(best.records)
	for _, v := range variants[1:] {
		d, ok := latestDate(v.records)
		if later(d, ok, bestDate, bestOK) {
			best, bestDate, bestOK = v, d, ok
		}
	}
	return best.records
}

func splitByCustomer(records []storage.ProjectRecord) []customerVariant {
	index := make(map[string]int)
	var variants []customerVariant
	for _, rec := range records {
		key := NormalizeKey(rec.Customer)
		i, ok := index[key]
		if !ok {
			i = len(variants)
			index[key] = i
			variants = append(variants, customerVariant{key: key})
		}
		variants[i].records = append(variants[i].records, rec)
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].key < variants[j].key
	})
	return variants
}

func latestDate(records []storage.ProjectRecord) (time.Time, bool) {
	var best time.Time
	var found bool
	for _, rec := range records {
		d, ok := ProjectDate(rec)
		if later(d, ok, best, found) {
			best, found = d, true
		}
	}
	return best, found
}

func mergeByGroupKey(records []storage.ProjectRecord) []storage.ProjectRecord {
	groups := make(map[string][]storage.ProjectRecord)
	for _, rec := range records {
		key := GroupKey(rec)
		groups[key] = append(groups[key], rec)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make([]storage.ProjectRecord, 0, len(keys))
	for _, k := range keys {
		merged = append(merged, mergeGroup(groups[k]))
	}
	return merged
}

// mergeGroup takes the first record by project name as the base, sums the
// amounts of the whole group and carries the dates of its most recent member.
func mergeGroup(group []storage.ProjectRecord) storage.ProjectRecord {
	sorted := append([]storage.ProjectRecord(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ProjectName != sorted[j].ProjectName {
			return sorted[i].ProjectName < sorted[j].ProjectName
		}
		return sorted[i].ID < sorted[j].ID
	})

	base := sorted[0]
	var sales, cost, hours, laborSales, laborCost decimal.Decimal

	var newest time.Time
	var newestOK bool
	for _, rec := range sorted {
		sales = sales.Add(Amount(rec.Sales))
		cost = cost.Add(Amount(rec.Cost))
		hours = hours.Add(Amount(rec.Hours))
		laborSales = laborSales.Add(Amount(rec.LaborSales))
		laborCost = laborCost.Add(Amount(rec.LaborCost))

		if d, ok := ProjectDate(rec); later(d, ok, newest, newestOK) {
			newest, newestOK = d, true
			base.DateCreated = rec.DateCreated
			base.DateUpdated = rec.DateUpdated
		}
	}

	// The shortest float form of each sum reads back as the same decimal.
	base.Sales = sales.InexactFloat64()
	base.Cost = cost.InexactFloat64()
	base.Hours = hours.InexactFloat64()
	base.LaborSales = laborSales.InexactFloat64()
	base.LaborCost = laborCost.InexactFloat64()

	return base
}
