package persistence

import (
	"errors"
	"strings"

	"github.com/labstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM sentinel errors to domain errors.
// Duplicate keys are only reported when the connection was opened with TranslateError.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// whereContains adds a case-insensitive substring match on column when value is set.
func whereContains(query *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return query
	}
	return query.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(value))+"%")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// paginate applies limit and offset from the filter; a zero page size means no limit.
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	return query
}

// sortSpec whitelists the columns a listing may be ordered by. Anything else
// falls back to the listing's default order, so request input never reaches SQL.
type sortSpec struct {
	table    string
	columns  map[string]bool
	fallback string
}

var (
	stockItemSort = sortSpec{
		table:    "stock_items",
		columns:  columnSet("created_at", "updated_at", "item_code", "item_name", "company", "current_quantity", "status"),
		fallback: "stock_items.item_code ASC",
	}
	restockSort = sortSpec{
		table:    "restocks",
		columns:  columnSet("created_at", "quantity_purchased", "expiration_date", "location"),
		fallback: "restocks.created_at DESC",
	}
	issueLogSort = sortSpec{
		table:    "issue_logs",
		columns:  columnSet("created_at", "date_issued", "issued_quantity", "user_email"),
		fallback: "issue_logs.date_issued DESC",
	}
	inwardSort = sortSpec{
		table:    "inwards",
		columns:  columnSet("created_at", "inward_code", "vendor_name"),
		fallback: "inwards.created_at DESC",
	}
	labRequestSort = sortSpec{
		table:    "lab_requests",
		columns:  columnSet("created_at", "code", "date_of_requirement", "status"),
		fallback: "lab_requests.created_at DESC",
	}
)

func columnSet(columns ...string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return set
}

// clause returns the ORDER BY expression for field and dir.
func (s sortSpec) clause(field, dir string) string {
	field = strings.TrimSpace(field)
	if !s.columns[field] {
		return s.fallback
	}
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return s.table + "." + field + " ASC"
	}
	return s.table + "." + field + " DESC"
}

// orderBy applies the requested order when spec allows it.
func orderBy(query *gorm.DB, filter shared.Filter, spec sortSpec) *gorm.DB {
	return query.Order(spec.clause(filter.OrderBy, filter.OrderDir))
}
