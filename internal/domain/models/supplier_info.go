package models

import "github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"

// SupplierInfoFields is the field list read for supplier price links.
var SupplierInfoFields = []string{"name", "product_name", "product_code", "product_tmpl_id", "price"}

// SupplierInfo is the product.supplierinfo link between a product template
// and one supplier's article number and price. At most one link per
// (supplier, product) is assumed.
type SupplierInfo struct {
	ID            int64
	ProductTmplID int64
	Price         float64

	Raw odoo.Record
}

// SupplierInfoFromRecord decodes a search_read row into a SupplierInfo.
func SupplierInfoFromRecord(rec odoo.Record) SupplierInfo {
	id, _ := odoo.ID(rec["id"])
	tmplID, _ := odoo.ID(rec["product_tmpl_id"])

	return SupplierInfo{
		ID:            id,
		ProductTmplID: tmplID,
		Price:         odoo.Float(rec["price"]),
		Raw:           rec,
	}
}
