package sync

import (
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
)

// FieldKind classifies how an ERP field is stored and compared.
type FieldKind int

const (
	// Scalar fields compare by plain value equality.
	Scalar FieldKind = iota
	// Reference fields arrive from the ERP as [id, label] pairs (or false
	// when unset) but are written as a plain id.
	Reference
	// IDSet fields are many2many id lists, compared as sets and written with
	// the full-replacement command.
	IDSet
)

// Field describes one diffable ERP field. Places > 0 marks a
// decimal-precision field: the ERP stores it as a binary float, so both sides
// are rounded to Places before comparison and the write is string-encoded at
// that precision.
type Field struct {
	Name   string
	Kind   FieldKind
	Places int32
}

// productFieldSpec covers the product.template fields this bot manages.
var productFieldSpec = []Field{
	{Name: "name"},
	{Name: "available_in_pos"},
	{Name: "standard_price", Places: 2},
	{Name: "type"},
	{Name: "image"},
	{Name: "base_price_unit"},
	{Name: "base_price_factor", Places: 3},
	{Name: "print_category_id", Kind: Reference},
	{Name: "margin_classification_id", Kind: Reference},
	{Name: "uom_po_id", Kind: Reference},
	{Name: "property_account_income_id", Kind: Reference},
	{Name: "property_account_expense_id", Kind: Reference},
	{Name: "taxes_id", Kind: IDSet},
	{Name: "supplier_taxes_id", Kind: IDSet},
}

// supplierInfoFieldSpec covers the product.supplierinfo fields.
var supplierInfoFieldSpec = []Field{
	{Name: "product_code"},
	{Name: "product_name"},
	{Name: "price", Places: 2},
	{Name: "name", Kind: Reference},
	{Name: "product_tmpl_id", Kind: Reference},
}

// FieldUpdates computes the minimal write payload turning old (an ERP record
// in its native encodings) into target. A field is emitted only when its
// normalized values differ, or when it is missing from old entirely (the
// initialization case, including a nil old for not-yet-created records). The
// payload is re-encoded for writing: decimal fields as fixed-point strings,
// id-set fields as [6, 0, ids] replacement commands.
func FieldUpdates(fields []Field, old odoo.Record, target map[string]any) map[string]any {
	updates := make(map[string]any)

	for _, f := range fields {
		oldVal, oldOK := old[f.Name]
		newVal, newOK := target[f.Name]
		if !newOK {
			continue
		}

		switch f.Kind {
		case Scalar:
			if !oldOK || !scalarEqual(f, oldVal, newVal) {
				updates[f.Name] = encodeScalar(f, newVal)
			}
		case Reference:
			newID := toInt64(newVal)
			oldID, set := odoo.ID(oldVal)
			if !oldOK || !set || oldID != newID {
				updates[f.Name] = newID
			}
		case IDSet:
			newIDs := toInt64List(newVal)
			if !oldOK || !sameIDSet(odoo.IDList(oldVal), newIDs) {
				updates[f.Name] = []any{[]any{6, 0, newIDs}}
			}
		}
	}

	return updates
}

// scalarEqual compares an ERP-native value against a target value, rounding
// decimal-precision fields on both sides so float round-trip noise never
// produces a spurious update.
func scalarEqual(f Field, oldVal, newVal any) bool {
	if f.Places > 0 {
		newDec, ok := toDecimal(newVal)
		if !ok {
			return false
		}
		oldDec, ok := toDecimal(oldVal)
		if !ok {
			// Unset in the ERP (false) always differs from a concrete value.
			return false
		}
		return oldDec.Round(f.Places).Equal(newDec.Round(f.Places))
	}

	return reflect.DeepEqual(oldVal, newVal)
}

func encodeScalar(f Field, value any) any {
	if f.Places > 0 {
		if d, ok := toDecimal(value); ok {
			return d.Round(f.Places).StringFixed(f.Places)
		}
	}
	return value
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Decimal{}, false
	}
}

func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toInt64List(value any) []int64 {
	switch v := value.(type) {
	case []int64:
		return v
	case []any:
		out := make([]int64, 0, len(v))
		for _, item := range v {
			out = append(out, toInt64(item))
		}
		return out
	default:
		return nil
	}
}

func sameIDSet(a, b []int64) bool {
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	other := make(map[int64]struct{}, len(b))
	for _, id := range b {
		other[id] = struct{}{}
	}
	if len(set) != len(other) {
		return false
	}
	for id := range set {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}
