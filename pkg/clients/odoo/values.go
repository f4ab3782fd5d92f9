package odoo

// Helpers for reading values out of object-service records. Odoo encodes
// unset fields as false, many2one references as [id, label] pairs, and all
// numerics as JSON numbers.

// ID extracts a record id from either a plain number or an [id, label]
// reference pair. The second return is false when the value is unset.
func ID(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		return ID(v[0])
	default:
		return 0, false
	}
}

// IDList extracts a list of record ids from a one2many/many2many value.
func IDList(value any) []int64 {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		if id, ok := ID(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// String extracts a string field, mapping the unset false to "".
func String(value any) string {
	s, _ := value.(string)
	return s
}

// Float extracts a numeric field, mapping the unset false to 0.
func Float(value any) float64 {
	f, _ := value.(float64)
	return f
}

// Bool extracts a boolean field.
func Bool(value any) bool {
	b, _ := value.(bool)
	return b
}
