package models

// Summary aggregates every stored packing-log row for reporting and export.
// The two ratio fields are undefined when no rows qualify; consumers render
// them blank in that case.
type Summary struct {
	Entries                     int     `json:"entries"`
	TotalLabourHours            float64 `json:"total_labour_hours"`
	TotalFinishedPunnets        float64 `json:"total_finished_punnets"`
	TotalWasteOrDowntime        float64 `json:"total_waste_or_downtime"`
	OverallPunnetsPerLabourHour float64 `json:"overall_punnets_per_labour_hour"`
	AvgLabourCostPerPunnet      float64 `json:"avg_labour_cost_per_punnet"`
}
