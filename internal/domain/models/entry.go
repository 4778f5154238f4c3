package models

import "time"

// PackingLogEntry is one submitted packing-log row. The derived fields are
// recomputed from the raw fields at save time and are never accepted from
// clients; entries are immutable once stored.
type PackingLogEntry struct {
	ID   string    `bson:"_id,omitempty" json:"id"`
	Date time.Time `bson:"date" json:"date"`

	Minutes         float64 `bson:"minutes" json:"minutes"`
	People          int     `bson:"people" json:"people"`
	FinishedPunnets float64 `bson:"finished_punnets" json:"finished_punnets"`
	WasteOrDowntime float64 `bson:"waste_or_downtime" json:"waste_or_downtime"`
	Note            string  `bson:"note,omitempty" json:"note,omitempty"`

	// HourlyRate is the configured labour rate the row was costed with.
	HourlyRate           float64 `bson:"hourly_rate" json:"hourly_rate"`
	LabourHours          float64 `bson:"labour_hours" json:"labour_hours"`
	PunnetsPerLabourHour float64 `bson:"punnets_per_labour_hour" json:"punnets_per_labour_hour"`
	LabourCostPerPunnet  float64 `bson:"labour_cost_per_punnet" json:"labour_cost_per_punnet"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
