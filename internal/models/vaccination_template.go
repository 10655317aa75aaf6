package models

// VaccinationTemplate is one rule of the immunization program: the pen's
// batch gets vaccine VaccineID, dose Stage, at DaysOld days of age.
type VaccinationTemplate struct {
	ID          string `json:"id"`
	Ordinal     int    `json:"stt"`
	VaccineID   string `json:"vaccineId"`
	VaccineName string `json:"vaccineName"`
	Stage       int    `json:"stage"`
	FullName    string `json:"fullName"`
	Dosage      string `json:"dosage"`
	DaysOld     int    `json:"daysOld"`
	DaysOldText string `json:"daysOldText"`
	Notes       string `json:"notes"`
}

// TemplateInput is the write shape for template create/replace calls.
type TemplateInput struct {
	VaccineID   string `json:"vaccineId"`
	VaccineName string `json:"vaccineName"`
	Stage       int    `json:"stage"`
	DaysOld     int    `json:"daysOld"`
	Dosage      string `json:"dosage"`
	Notes       string `json:"notes"`
}

// TemplateSuggestion is a gap-analysis result: a reference-library dose
// missing from the current template set.
type TemplateSuggestion struct {
	VaccineID   string `json:"vaccineId"`
	VaccineName string `json:"vaccineName"`
	NameDisplay string `json:"nameDisplay"`
	Stage       int    `json:"stage"`
	DaysOld     int    `json:"daysOld"`
	Dosage      string `json:"dosage"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Type        string `json:"type"`
}
