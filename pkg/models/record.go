package models

// Record is one row of source data: an ordered column→value mapping tagged
// with its row index within the source. Records are never mutated in place;
// the pipeline produces new mapped/de-identified copies.
type Record struct {
	RowIndex int            `json:"row_index"`
	Data     map[string]any `json:"data"`
}
