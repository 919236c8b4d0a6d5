package storage

import (
	"errors"
	"strings"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
)

// ProjectRecord is one raw project entry as stored upstream. Field names follow
// the legacy documents so the same type decodes both backends.
type ProjectRecord struct {
	ID              string  `json:"id"`
	ProjectNumber   string  `json:"projectNumber"`
	ProjectName     string  `json:"projectName"`
	Customer        string  `json:"customer"`
	Status          string  `json:"status"`
	Estimator       string  `json:"estimator"`
	PMCGroup        string  `json:"pmcGroup"`
	Sales           float64 `json:"sales"`
	Cost            float64 `json:"cost"`
	Hours           float64 `json:"hours"`
	LaborSales      float64 `json:"laborSales"`
	LaborCost       float64 `json:"laborCost"`
	DateCreated     RawDate `json:"dateCreated"`
	DateUpdated     RawDate `json:"dateUpdated"`
	ProjectArchived bool    `json:"projectArchived"`
}

// Identifier is the first-stage dedup key: project number, then project name.
// Records carrying neither fall back to their own id so they never collapse
// into each other.
func (p ProjectRecord) Identifier() string {
	if n := strings.TrimSpace(p.ProjectNumber); n != "" {
		return n
	}
	if n := strings.TrimSpace(p.ProjectName); n != "" {
		return n
	}
	return p.ID
}
