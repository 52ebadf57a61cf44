package utils

import (
	"reflect"
)

var ColumnTag = "db"

type taggedField struct {
	column string
	index  int
}

// taggedFields lists the exported fields of a struct that carry a column tag.
// Fields tagged "-" are skipped.
func taggedFields(t reflect.Type) []taggedField {
	out := make([]taggedField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		out = append(out, taggedField{column: tagValue, index: i})
	}
	return out
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return v
}

// StructTagValues returns the column names of input in field order.
func StructTagValues(input any) []string {
	v := structValue(input)

	fields := taggedFields(v.Type())
	result := make([]string, len(fields))
	for i, f := range fields {
		result[i] = f.column
	}
	return result
}

// StructToMap maps column name to field value, suitable for squirrel SetMap.
func StructToMap(input any) map[string]any {
	v := structValue(input)

	fields := taggedFields(v.Type())
	result := make(map[string]any, len(fields))
	for _, f := range fields {
		result[f.column] = v.Field(f.index).Interface()
	}
	return result
}
