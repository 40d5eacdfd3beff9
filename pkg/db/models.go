package db

import (
	"errors"
	"time"

	"github.com/jakechorley/ward-rota/pkg/core/model"
)

var ErrRunNotFound = errors.New("run not found")

// Skill record sources
const (
	SourceCSV    = "csv"
	SourceXLSX   = "xlsx"
	SourceSheets = "sheets"
	SourceAPI    = "api"
)

// Run is one persisted simulation
type Run struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"createdAt"`
	Policy            string    `json:"policy"`
	PeriodLengthWeeks int       `json:"periodLengthWeeks"`
	HorizonWeeks      int       `json:"horizonWeeks"`
	// EntryCount is filled on reads only
	EntryCount int `json:"entryCount"`
}

// SkillRecord is one ingested (nurse, ward) pair. Records from the same
// import share a BatchID.
type SkillRecord struct {
	ID         string     `json:"id"`
	BatchID    string     `json:"batchId"`
	Nurse      string     `json:"nurse"`
	Ward       model.Ward `json:"ward"`
	Source     string     `json:"source"`
	ImportedAt time.Time  `json:"importedAt"`
}
