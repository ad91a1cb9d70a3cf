package dto

import (
	"fmt"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type SortField struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

// QueryParams is the storage-agnostic description of sort, projection and pagination.
type QueryParams struct {
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
	Sort   []SortField `json:"sort,omitempty"`
	Fields []string    `json:"fields,omitempty"`
}

// Offset is the number of rows skipped before the current page.
func (q QueryParams) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}

// SortKey renders the sort list back into its query-string form, e.g. "-price,name".
func (q QueryParams) SortKey() string {
	parts := make([]string, 0, len(q.Sort))

	for _, s := range q.Sort {
		if s.Dir == SortDirDesc {
			parts = append(parts, "-"+s.Field)

			continue
		}

		parts = append(parts, s.Field)
	}

	return strings.Join(parts, ",")
}

func (q QueryParams) String() string {
	return fmt.Sprintf("page=%d&limit=%d&sort=%s&fields=%s", q.Page, q.Limit, q.SortKey(), strings.Join(q.Fields, ","))
}
