package models

import "github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"

// NewProductName is the sentinel name marking a product awaiting first-time
// initialization. Routine refreshes never touch the name-like fields again.
const NewProductName = "NEW"

// ProductFields is the field list read for every candidate product.
var ProductFields = []string{
	"id",
	"name",
	"barcode",
	"qty_available",
	"image",
	"product_variant_id",
	"taxes_id",
	"uom_id",
	"supplier_taxes_id",
	"standard_price",
	"property_account_income_id",
	"property_account_expense_id",
	"margin_classification_id",
	"print_category_id",
	"base_price_unit",
	"base_price_factor",
	"available_in_pos",
	"type",
	"uom_po_id",
}

// Product is the slice of an Odoo product.template record this bot reads and
// patches. Raw keeps the record as delivered so the diff engine can compare
// against the ERP's native encodings.
type Product struct {
	ID               int64
	Name             string
	Barcode          string
	QtyAvailable     float64
	HasImage         bool
	VariantID        int64
	UomID            int64
	PurchaseUomID    int64
	SaleTaxIDs       []int64
	StandardPrice    float64
	IncomeAccountID  int64
	ExpenseAccountID int64

	Raw odoo.Record
}

// ProductFromRecord decodes a search_read row into a Product.
func ProductFromRecord(rec odoo.Record) Product {
	id, _ := odoo.ID(rec["id"])
	variantID, _ := odoo.ID(rec["product_variant_id"])
	uomID, _ := odoo.ID(rec["uom_id"])
	purchaseUomID, _ := odoo.ID(rec["uom_po_id"])
	incomeID, _ := odoo.ID(rec["property_account_income_id"])
	expenseID, _ := odoo.ID(rec["property_account_expense_id"])

	return Product{
		ID:               id,
		Name:             odoo.String(rec["name"]),
		Barcode:          odoo.String(rec["barcode"]),
		QtyAvailable:     odoo.Float(rec["qty_available"]),
		HasImage:         odoo.String(rec["image"]) != "",
		VariantID:        variantID,
		UomID:            uomID,
		PurchaseUomID:    purchaseUomID,
		SaleTaxIDs:       odoo.IDList(rec["taxes_id"]),
		StandardPrice:    odoo.Float(rec["standard_price"]),
		IncomeAccountID:  incomeID,
		ExpenseAccountID: expenseID,
		Raw:              rec,
	}
}

// IsNew reports whether the product still awaits first-time initialization.
func (p Product) IsNew() bool {
	return p.Name == NewProductName
}
