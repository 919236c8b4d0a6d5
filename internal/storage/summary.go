package storage

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSummaryNotFound = errors.New("dashboard summary not found")
	ErrSummaryConflict = errors.New("dashboard summary write conflict")
)

func init() {
	// Amounts travel as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Bucket holds exact running sums so repeated add/remove returns to the
// same value a fresh fold produces.
type Bucket struct {
	Sales decimal.Decimal `json:"sales"`
	Cost  decimal.Decimal `json:"cost"`
	Hours decimal.Decimal `json:"hours"`
	Count int             `json:"count"`
}

type StatusGroup struct {
	Bucket
	LaborByGroup map[string]decimal.Decimal `json:"laborByGroup"`
	LaborCounts  map[string]int             `json:"laborCounts"`
}

type ContractorGroup struct {
	Bucket
	ByStatus map[string]Bucket `json:"byStatus"`
}

// DashboardSummary is the single aggregate document behind the dashboard and
// the WIP report.
//
// The *Counts maps record how many records stand behind each labor-hour
// entry; an entry lives exactly as long as its count is positive.
type DashboardSummary struct {
	TotalSales           decimal.Decimal            `json:"totalSales"`
	TotalCost            decimal.Decimal            `json:"totalCost"`
	TotalHours           decimal.Decimal            `json:"totalHours"`
	StatusGroups         map[string]StatusGroup     `json:"statusGroups"`
	Contractors          map[string]ContractorGroup `json:"contractors"`
	PMCGroupHours        map[string]decimal.Decimal `json:"pmcGroupHours"`
	PMCGroupCounts       map[string]int             `json:"pmcGroupCounts"`
	LaborBreakdown       map[string]decimal.Decimal `json:"laborBreakdown"`
	LaborBreakdownCounts map[string]int             `json:"laborBreakdownCounts"`
	LastUpdated          time.Time                  `json:"lastUpdated"`
}
