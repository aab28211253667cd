package edba

// Nullable is the generic nullable wrapper shipped in-tree (spec §4.3):
// binding an empty Nullable binds SQL NULL; fetching into one replaces it
// with a populated wrapper iff the column is non-null, and empties it
// when the column is null. It plays the role of boost::optional<T> /
// std::shared_ptr<T> in the original's type-support headers.
type Nullable[T any] struct {
	Value T
	Valid bool
}

// NullableOf returns a populated, valid wrapper around v.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Valid: true}
}

// BindConvert implements BindConverter: an empty wrapper binds NULL, a
// populated one binds its underlying value.
func (n Nullable[T]) BindConvert() (BindValue, error) {
	if !n.Valid {
		return Null(), nil
	}
	return toBindValue(n.Value)
}

// FetchConvert implements FetchConverter: a NULL column empties the
// wrapper, otherwise the column is fetched into Value and Valid is set.
func (n *Nullable[T]) FetchConvert(row *Row, col int) error {
	isNull, err := row.result.IsNull(col)
	if err != nil {
		return err
	}
	if isNull {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	ok, err := row.Fetch(col, &n.Value)
	if err != nil {
		return err
	}
	n.Valid = ok
	return nil
}
