package sync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
)

// uomCategoryNames maps a uom.category id to the unit name suffix used when
// creating purchase units.
var uomCategoryNames = map[int64]string{
	1: "Unit(s)",
	2: "kg",
}

type uomKey struct {
	multiplier int
	categoryID int64
}

// UoMResolver resolves or creates purchase units of measure. Both lookups are
// memoized for the lifetime of one batch run: the same (multiplier, category)
// always resolves to the same id without a second query.
type UoMResolver struct {
	erp   odoo.API
	byKey map[uomKey]int64
	byID  map[int64]odoo.Record
}

// NewUoMResolver builds a resolver scoped to one run.
func NewUoMResolver(erp odoo.API) *UoMResolver {
	return &UoMResolver{
		erp:   erp,
		byKey: make(map[uomKey]int64),
		byID:  make(map[int64]odoo.Record),
	}
}

// ByID fetches a uom.uom record, memoized.
func (r *UoMResolver) ByID(ctx context.Context, id int64) (odoo.Record, error) {
	if rec, ok := r.byID[id]; ok {
		return rec, nil
	}

	rec, err := r.erp.Get(ctx, "uom.uom", odoo.Domain{odoo.Eq("id", id)}, nil)
	if err != nil {
		return nil, fmt.Errorf("read uom %d: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("uom %d not found", id)
	}

	r.byID[id] = rec
	return rec, nil
}

// GetOrCreate returns the id of the unit of measure representing multiplier
// sale units in the given category, creating it when missing. The matching
// key is (inverse factor, rounding 1, category); the factor is the exact
// reciprocal of the multiplier as a normalized decimal string.
func (r *UoMResolver) GetOrCreate(ctx context.Context, multiplier int, categoryID int64) (int64, error) {
	key := uomKey{multiplier: multiplier, categoryID: categoryID}
	if id, ok := r.byKey[key]; ok {
		return id, nil
	}

	suffix, ok := uomCategoryNames[categoryID]
	if !ok {
		return 0, fmt.Errorf("unsupported uom category %d", categoryID)
	}

	factor := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(multiplier))).String()

	existing, err := r.erp.Get(ctx, "uom.uom", odoo.Domain{
		odoo.Eq("factor", factor),
		odoo.Eq("rounding", "1.0"),
		odoo.Eq("category_id", categoryID),
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("search uom %d/%d: %w", multiplier, categoryID, err)
	}

	if existing != nil {
		id, ok := odoo.ID(existing["id"])
		if !ok {
			return 0, fmt.Errorf("uom search returned record without id")
		}
		r.byKey[key] = id
		return id, nil
	}

	id, err := r.erp.Create(ctx, "uom.uom", map[string]any{
		"name":        fmt.Sprintf("%d %s", multiplier, suffix),
		"category_id": categoryID,
		"factor":      factor,
		"rounding":    "1.0",
		"uom_type":    "bigger",
	})
	if err != nil {
		return 0, fmt.Errorf("create uom %d/%d: %w", multiplier, categoryID, err)
	}

	r.byKey[key] = id
	return id, nil
}
