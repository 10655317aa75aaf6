package models

import "time"

// ActivePen is a pen currently holding pigs, with its occupying batch
// resolved (one batch per pen; the first occupant decides).
type ActivePen struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Batch    *PenBatch `json:"batch,omitempty"`
}

// PenBatch is the animal batch occupying a pen. ArrivalDate anchors all
// age-based forecasting; Administered is the batch's vaccine ledger.
type PenBatch struct {
	ID           string          `json:"id"`
	ArrivalDate  time.Time       `json:"arrival_date"`
	HasArrival   bool            `json:"-"`
	Administered map[string]bool `json:"-"`
}
