package models

import "github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"

// OrderpointFields is the field list read for reordering rules.
var OrderpointFields = []string{"product_min_qty", "product_max_qty", "product_id"}

// Orderpoint is a stock.warehouse.orderpoint reordering rule, keyed by the
// product variant. This bot only ever creates them, never updates.
type Orderpoint struct {
	ID        int64
	ProductID int64
	MinQty    float64
	MaxQty    float64
}

// OrderpointFromRecord decodes a search_read row into an Orderpoint.
func OrderpointFromRecord(rec odoo.Record) Orderpoint {
	id, _ := odoo.ID(rec["id"])
	productID, _ := odoo.ID(rec["product_id"])

	return Orderpoint{
		ID:        id,
		ProductID: productID,
		MinQty:    odoo.Float(rec["product_min_qty"]),
		MaxQty:    odoo.Float(rec["product_max_qty"]),
	}
}
