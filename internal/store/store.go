package store

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// buildUpdateClause creates the SET clause for ON CONFLICT DO UPDATE
// e.g., "climate = EXCLUDED.climate, water_need = EXCLUDED.water_need"
func buildUpdateClause(fields map[string]any, skip ...string) string {
	keys := make([]string, 0, len(fields))

fieldloop:
	for field := range fields {
		for _, s := range skip {
			if field == s {
				continue fieldloop
			}
		}
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, field := range keys {
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", field, field)
	}
	return strings.Join(parts, ", ")
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
