// Package db holds the squirrel helpers shared by the list endpoints.
package db

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

// ApplyFilterConditions applies only the WHERE part of the parsed query
// filter. The count query of a paginated list must carry the same
// conditions as the select, so this is shared by both.
// Only fields present in allowedMap (JSON name to column) are honored;
// anything else in the query string is ignored rather than rejected.
func ApplyFilterConditions(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	// sorted iteration keeps the generated WHERE stable between calls
	filterFields := make([]string, 0, len(filter.Filter))
	for jsonField := range filter.Filter {
		filterFields = append(filterFields, jsonField)
	}
	sort.Strings(filterFields)
	for _, jsonField := range filterFields {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}

		// filter[state]=Activo,DadoDeBaja becomes an IN clause
		val := filter.Filter[jsonField]
		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}
	return builder
}

// ApplySortAndPagination applies the ORDER BY, LIMIT and OFFSET parts of
// the parsed query filter. Count queries never go through here.
func ApplySortAndPagination(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {

	// sorted iteration keeps the generated ORDER BY stable between calls
	sortFields := make([]string, 0, len(filter.Sort))
	for jsonField := range filter.Sort {
		sortFields = append(sortFields, jsonField)
	}
	sort.Strings(sortFields)
	for _, jsonField := range sortFields {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.EqualFold(filter.Sort[jsonField], "desc") {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(dbCol + " " + sqlDir)
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}
