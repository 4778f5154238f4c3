package models

// EntryForm carries the raw values of a submitted packing-log form. All
// validation lives in the packing-log service so that failures can name the
// offending field and the handler can echo the submitted values back.
type EntryForm struct {
	Date            string  `json:"date"`
	Minutes         float64 `json:"minutes"`
	People          int     `json:"people"`
	FinishedPunnets float64 `json:"finished_punnets"`
	WasteOrDowntime float64 `json:"waste_or_downtime"`
	Note            string  `json:"note"`
}
