package models

import "time"

// SortOrder for reading queries, by creation time
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ReadingFilters defines the available filter options for sensor readings.
// Schema tags allow decoding straight from the query string.
type ReadingFilters struct {
	DeviceID  string     `json:"device_id" schema:"device_id"`
	StartDate *time.Time `json:"start_date" schema:"start_date"`
	EndDate   *time.Time `json:"end_date" schema:"end_date"`
	Limit     int        `json:"limit" schema:"limit"`
	Offset    int        `json:"offset" schema:"offset"`
	Order     SortOrder  `json:"order" schema:"order"`
}

// Pagination is the metadata envelope attached to list responses
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// NewPagination computes the has_more flag from the slice position
func NewPagination(total int64, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
}
