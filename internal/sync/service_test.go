package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/domain/models"
	"github.com/MILA-Wien/odoo-product-updater-bot/internal/refdata"
	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
)

func newProductRecord(id int64, name, barcode string, qty float64) odoo.Record {
	return odoo.Record{
		"id":                 float64(id),
		"name":               name,
		"barcode":            barcode,
		"qty_available":      qty,
		"image":              false,
		"product_variant_id": []any{float64(id + 500), name},
		"taxes_id":           []any{},
		"uom_id":             []any{float64(5), "Unit"},
		"supplier_taxes_id":  []any{},
		"standard_price":     0.0,
		"uom_po_id":          []any{float64(5), "Unit"},
	}
}

func serviceERP(products ...odoo.Record) *fakeERP {
	erp := newFakeERP()
	erp.searchReads["product.template"] = products
	erp.getFunc = func(model string, domain odoo.Domain) odoo.Record {
		if uomSearchIsByFactor(domain) {
			return odoo.Record{"id": float64(testPurchaseUomID)}
		}
		return odoo.Record{"id": float64(5), "category_id": []any{float64(1), "Einheit"}, "factor_inv": 6.0}
	}
	return erp
}

func newTestService(erp *fakeERP, feeds Feeds) *Service {
	normalizer := NewNormalizer(refdata.Default(), NewUoMResolver(erp), &fakeImages{err: assert.AnError}, nil)
	return NewService(erp, normalizer, refdata.Default(), feeds, nil)
}

func terraFeed(rec models.SupplierRecord) Feeds {
	return Feeds{
		Terra:  map[string]models.SupplierRecord{rec.Barcode: rec},
		Agidra: map[string]models.SupplierRecord{},
	}
}

func TestSelectorDomains(t *testing.T) {
	assert.Equal(t, odoo.Domain{importerEnabledCond}, Selector{All: true}.domain())
	assert.Equal(t, odoo.Domain{odoo.Eq("id", int64(7))}, Selector{ProductID: 7}.domain())
	assert.Equal(t,
		odoo.Domain{odoo.Eq("name", models.NewProductName), importerEnabledCond},
		Selector{}.domain())
}

func TestRunInitializesNewTerraProduct(t *testing.T) {
	erp := serviceERP(newProductRecord(99, models.NewProductName, "123", 0))

	svc := newTestService(erp, terraFeed(terraRecord()))
	require.NoError(t, svc.Run(context.Background(), Selector{}))

	writes := erp.writesFor("product.template")
	require.Len(t, writes, 1)
	assert.Equal(t, []int64{99}, writes[0].IDs)

	fields := writes[0].Fields
	assert.Equal(t, "10.00", fields["standard_price"])
	assert.Equal(t, "Dinkelmehl 1kg (SPI)", fields["name"])
	assert.Equal(t, []any{[]any{6, 0, []int64{108}}}, fields["taxes_id"])
	assert.Equal(t, []any{[]any{6, 0, []int64{117}}}, fields["supplier_taxes_id"])
	assert.Equal(t, int64(1874), fields["property_account_income_id"])

	// No supplier link existed, so one is created with the full field set.
	creates := erp.createsFor("product.supplierinfo")
	require.Len(t, creates, 1)
	assert.Equal(t, int64(11), creates[0].Fields["name"])
	assert.Equal(t, "60.00", creates[0].Fields["price"])
	assert.Equal(t, int64(99), creates[0].Fields["product_tmpl_id"])
}

func TestRunOrderpointOnlyForStockedProducts(t *testing.T) {
	t.Run("no stock, no rule", func(t *testing.T) {
		erp := serviceERP(newProductRecord(99, models.NewProductName, "123", 0))
		svc := newTestService(erp, terraFeed(terraRecord()))
		require.NoError(t, svc.Run(context.Background(), Selector{}))

		assert.Empty(t, erp.createsFor("stock.warehouse.orderpoint"))
	})

	t.Run("stocked product gets a rule", func(t *testing.T) {
		erp := serviceERP(newProductRecord(99, models.NewProductName, "123", 5))
		svc := newTestService(erp, terraFeed(terraRecord()))
		require.NoError(t, svc.Run(context.Background(), Selector{}))

		creates := erp.createsFor("stock.warehouse.orderpoint")
		require.Len(t, creates, 1)
		assert.Equal(t, 2.0, creates[0].Fields["product_min_qty"])
		assert.Equal(t, 6.0, creates[0].Fields["product_max_qty"])
		assert.Equal(t, int64(599), creates[0].Fields["product_id"])
	})

	t.Run("existing rule never touched", func(t *testing.T) {
		erp := serviceERP(newProductRecord(99, models.NewProductName, "123", 5))
		erp.searchReads["stock.warehouse.orderpoint"] = []odoo.Record{{
			"id":              float64(70),
			"product_id":      []any{float64(599), "Dinkelmehl"},
			"product_min_qty": 2.0,
			"product_max_qty": 6.0,
		}}

		svc := newTestService(erp, terraFeed(terraRecord()))
		require.NoError(t, svc.Run(context.Background(), Selector{}))

		assert.Empty(t, erp.createsFor("stock.warehouse.orderpoint"))
	})
}

func TestRunAgidraOrderpointMinimum(t *testing.T) {
	erp := serviceERP(newProductRecord(99, models.NewProductName, "456", 3))
	feeds := Feeds{
		Terra:  map[string]models.SupplierRecord{},
		Agidra: map[string]models.SupplierRecord{"456": agidraRecord()},
	}

	svc := newTestService(erp, feeds)
	require.NoError(t, svc.Run(context.Background(), Selector{}))

	creates := erp.createsFor("stock.warehouse.orderpoint")
	require.Len(t, creates, 1)
	assert.Equal(t, 8.0, creates[0].Fields["product_min_qty"])
	assert.Equal(t, 4.0, creates[0].Fields["product_max_qty"])
}

func TestRunSecondPassIsNoOp(t *testing.T) {
	// A product already carrying every target value must not produce writes.
	rec := newProductRecord(99, "Dinkelmehl 1kg (SPI)", "123", 0)
	rec["type"] = "product"
	rec["standard_price"] = 10.0
	rec["taxes_id"] = []any{float64(108)}
	rec["supplier_taxes_id"] = []any{float64(117)}
	rec["property_account_income_id"] = []any{float64(1874), "4400"}
	rec["property_account_expense_id"] = []any{float64(2027), "5400"}
	rec["uom_po_id"] = []any{float64(testPurchaseUomID), "6 Unit(s)"}
	rec["image"] = "aW1n"
	rec["base_price_unit"] = false
	rec["base_price_factor"] = 0.0

	erp := serviceERP(rec)
	erp.searchReads["product.supplierinfo"] = []odoo.Record{{
		"id":              float64(33),
		"name":            []any{float64(11), "Terra Naturkost Handels KG"},
		"product_code":    "55501",
		"product_name":    "Dinkelmehl 1kg",
		"product_tmpl_id": []any{float64(99), "Dinkelmehl"},
		"price":           60.0,
	}}

	svc := newTestService(erp, terraFeed(terraRecord()))
	require.NoError(t, svc.Run(context.Background(), Selector{}))

	assert.Empty(t, erp.writes)
	assert.Empty(t, erp.creates)
}

func TestRunRepairBackfillsSupplierPrice(t *testing.T) {
	rec := newProductRecord(99, "Linsen 500g", "999", 0)
	rec["standard_price"] = 10.0

	erp := serviceERP(rec)
	erp.searchReads["product.supplierinfo"] = []odoo.Record{{
		"id":              float64(33),
		"name":            []any{float64(11), "Terra Naturkost Handels KG"},
		"product_code":    "1",
		"product_name":    "Linsen",
		"product_tmpl_id": []any{float64(99), "Linsen"},
		"price":           0.0,
	}}

	svc := newTestService(erp, Feeds{Terra: map[string]models.SupplierRecord{}, Agidra: map[string]models.SupplierRecord{}})
	require.NoError(t, svc.Run(context.Background(), Selector{All: true}))

	writes := erp.writesFor("product.supplierinfo")
	require.Len(t, writes, 1)
	assert.Equal(t, []int64{33}, writes[0].IDs)
	// cost 10.00 times the purchase unit's inverse factor 6.
	assert.Equal(t, map[string]any{"price": "60.00"}, writes[0].Fields)
}

func TestRunRepairAlignsAccountsWithTaxRate(t *testing.T) {
	rec := newProductRecord(99, "Linsen 500g", "999", 0)
	rec["taxes_id"] = []any{float64(109)}
	rec["property_account_income_id"] = []any{float64(1874), "4400"}
	rec["property_account_expense_id"] = []any{float64(2027), "5400"}

	erp := serviceERP(rec)
	svc := newTestService(erp, Feeds{Terra: map[string]models.SupplierRecord{}, Agidra: map[string]models.SupplierRecord{}})
	require.NoError(t, svc.Run(context.Background(), Selector{All: true}))

	writes := erp.writesFor("product.template")
	require.Len(t, writes, 1)
	assert.Equal(t, map[string]any{
		"property_account_income_id":  int64(1864),
		"property_account_expense_id": int64(2025),
	}, writes[0].Fields)
}

func TestRunRepairLeavesAlignedAccountsAlone(t *testing.T) {
	rec := newProductRecord(99, "Linsen 500g", "999", 0)
	rec["taxes_id"] = []any{float64(108)}
	rec["property_account_income_id"] = []any{float64(1874), "4400"}
	rec["property_account_expense_id"] = []any{float64(2027), "5400"}

	erp := serviceERP(rec)
	svc := newTestService(erp, Feeds{Terra: map[string]models.SupplierRecord{}, Agidra: map[string]models.SupplierRecord{}})
	require.NoError(t, svc.Run(context.Background(), Selector{All: true}))

	assert.Empty(t, erp.writes)
}

func TestRunRepairSkipsUnknownTaxSetup(t *testing.T) {
	rec := newProductRecord(99, "Gutschein", "999", 0)

	erp := serviceERP(rec)
	svc := newTestService(erp, Feeds{Terra: map[string]models.SupplierRecord{}, Agidra: map[string]models.SupplierRecord{}})
	require.NoError(t, svc.Run(context.Background(), Selector{All: true}))

	assert.Empty(t, erp.writes)
	assert.Empty(t, erp.creates)
}

func TestRunPurgesNameTranslations(t *testing.T) {
	erp := serviceERP()
	erp.searchReads["ir.translation"] = []odoo.Record{
		{"id": float64(501)},
		{"id": float64(502)},
	}

	svc := newTestService(erp, Feeds{Terra: map[string]models.SupplierRecord{}, Agidra: map[string]models.SupplierRecord{}})
	require.NoError(t, svc.Run(context.Background(), Selector{}))

	require.Len(t, erp.unlinks, 1)
	assert.Equal(t, "ir.translation", erp.unlinks[0].Model)
	assert.Equal(t, []int64{501, 502}, erp.unlinks[0].IDs)
}

func TestRunNoTranslationsNoUnlink(t *testing.T) {
	erp := serviceERP()
	svc := newTestService(erp, Feeds{Terra: map[string]models.SupplierRecord{}, Agidra: map[string]models.SupplierRecord{}})
	require.NoError(t, svc.Run(context.Background(), Selector{}))

	assert.Empty(t, erp.unlinks)
}
