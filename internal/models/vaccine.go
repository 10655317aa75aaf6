package models

// Vaccine is a row of the vaccine reference library. Rows with DaysOld > 0
// double as the standard immunization program used for template gap
// analysis.
type Vaccine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Stage       int    `json:"stage"`
	DaysOld     int    `json:"days_old"`
	Dosage      string `json:"dosage"`
	Description string `json:"description"`
}
