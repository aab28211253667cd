package edba

import "reflect"

// fetchInto populates out (a *T) from the current row: T == Row yields
// the same handle advanced in place (spec §4.5's "Rowset<row>"
// behavior); a FetchConverter is delegated to directly; anything else is
// treated as a record-like type and decomposed into an ordered sequence
// of fields, fetched positionally — the struct-tuple extension point
// from spec §4.3. Fields tagged `edba:"-"` are skipped.
func fetchInto[T any](row *Row, out *T) error {
	if rowOut, ok := any(out).(*Row); ok {
		*rowOut = *row
		return nil
	}
	if fc, ok := any(out).(FetchConverter); ok {
		return fc.FetchConvert(row, 0)
	}
	return fetchStruct(row, out)
}

func fetchStruct(row *Row, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		// Not a struct: treat as a single positional column.
		_, err := row.FetchNext(out)
		return err
	}

	elem := v.Elem()
	t := elem.Type()
	col := 0
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag := field.Tag.Get("edba"); tag == "-" {
			continue
		}
		fieldVal := elem.Field(i)
		if _, err := row.Fetch(col, fieldVal.Addr().Interface()); err != nil {
			return err
		}
		col++
	}
	return nil
}
