package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/domain/models"
	"github.com/MILA-Wien/odoo-product-updater-bot/internal/refdata"
	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
)

// agidraDeliveryCostPerKg is the flat freight surcharge Agidra adds per kg
// of gross weight.
var agidraDeliveryCostPerKg = decimal.RequireFromString("0.25")

// ImageFetcher is the slice of the image client the normalizer needs.
type ImageFetcher interface {
	FetchBase64(ctx context.Context, url string) (string, error)
}

// Target is the complete desired field-set for one product derived from a
// supplier record, ready for the diff engine.
type Target struct {
	ProductFields      map[string]any
	SupplierInfoFields map[string]any
	// ReorderMinQty and CaseQuantity parameterize the reordering rule
	// created for in-stock products without one.
	ReorderMinQty float64
	CaseQuantity  int
}

// Normalizer derives target field-sets from supplier records. All reference
// lookups go through the injected tables; unit-of-measure resolution and the
// optional image fetch are its only ERP/network touchpoints.
type Normalizer struct {
	tables *refdata.Tables
	uoms   *UoMResolver
	images ImageFetcher
	logger *zap.Logger
}

// NewNormalizer wires a normalizer instance.
func NewNormalizer(tables *refdata.Tables, uoms *UoMResolver, images ImageFetcher, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{tables: tables, uoms: uoms, images: images, logger: logger}
}

// TerraTarget builds the target field-set for a product carried by Terra.
func (n *Normalizer) TerraTarget(ctx context.Context, rec models.SupplierRecord, p models.Product, supplier refdata.Supplier) (*Target, error) {
	caseQty := rec.CaseQuantity

	purchaseUomID, err := n.purchaseUomID(ctx, p, caseQty)
	if err != nil {
		return nil, err
	}

	// Normalize the listed price back to one full sale unit.
	cost := rec.UnitCost.Div(rec.UnitPriceFactor)

	// The sale-unit deposit code wins over the order-unit one.
	deposit := rec.DepositCodeSaleUnit
	if deposit == "" {
		deposit = rec.DepositCodeOrderUnit
	}

	// Terra delivers some names with a stray "> " prefix.
	name := strings.TrimPrefix(rec.DisplayName, "> ")
	name += fmt.Sprintf(" (%s)", n.tables.ProducerName(rec.ProducerName))

	saleTax, purchaseTax, err := n.tables.TaxesForRate(rec.TaxRateCode)
	if err != nil {
		return nil, err
	}
	income, expense, err := n.tables.AccountsForRate(rec.TaxRateCode)
	if err != nil {
		return nil, err
	}

	taxIDs := []int64{saleTax}
	if deposit != "" {
		name += " (inkl. Pfand)"
		feeTax, known := n.tables.ClassifyDeposit(deposit)
		if !known {
			// Deliberately quiet: unknown codes are frequent and the
			// high-fee default is the safe side.
			n.logger.Debug("deposit code not classified, defaulting to high fee tier",
				zap.String("deposit_code", deposit), zap.String("barcode", rec.Barcode))
		}
		taxIDs = append(taxIDs, feeTax)
	}

	fields := map[string]any{
		"property_account_income_id":  income,
		"property_account_expense_id": expense,
		"taxes_id":                    taxIDs,
		"supplier_taxes_id":           []int64{purchaseTax},
		"uom_po_id":                   purchaseUomID,
		// Deposit goes into cost (it feeds the sales price) but not into the
		// supplier price.
		"standard_price": cost.Round(2),
		"type":           "product",
	}

	if p.IsNew() {
		fields["name"] = name
		fields["available_in_pos"] = true
		fields["print_category_id"] = refdata.PrintCategoryPricetags
		if rec.SourceFeed == "frisch" {
			fields["margin_classification_id"] = refdata.MarginClassFresh
		} else {
			fields["margin_classification_id"] = refdata.MarginClassGeneral
		}
	}

	n.addImage(ctx, fields, p, supplier.ImageURL(rec.Barcode))

	if rec.BasePriceUnit != "" {
		unit := strings.ToLower(rec.BasePriceUnit)
		if unit == "lt" {
			unit = "l"
		}
		fields["base_price_unit"] = unit
		fields["base_price_factor"] = rec.BasePriceFactor.Round(3)
	}

	return &Target{
		ProductFields: fields,
		SupplierInfoFields: map[string]any{
			"name":            supplier.PartnerID,
			"product_code":    rec.SupplierCode,
			"product_name":    rec.DisplayName,
			"product_tmpl_id": p.ID,
			"price":           cost.Mul(decimal.NewFromInt(int64(caseQty))),
		},
		ReorderMinQty: supplier.ReorderMinQty,
		CaseQuantity:  caseQty,
	}, nil
}

// AgidraTarget builds the target field-set for a product carried by Agidra.
func (n *Normalizer) AgidraTarget(ctx context.Context, rec models.SupplierRecord, p models.Product, supplier refdata.Supplier) (*Target, error) {
	caseQty := rec.CaseQuantity

	purchaseUomID, err := n.purchaseUomID(ctx, p, caseQty)
	if err != nil {
		return nil, err
	}

	cost := rec.UnitCost.Div(rec.UnitPriceFactor)

	deliveryCost := decimal.Zero
	switch rec.BasePriceUnit {
	case "LIT", "KG":
		deliveryCost = agidraDeliveryCostPerKg.Mul(rec.UnitWeight)
	default:
		n.logger.Warn("unknown weight unit for agidra product",
			zap.String("unit", rec.BasePriceUnit), zap.String("barcode", rec.Barcode))
	}

	saleTax, purchaseTax, err := n.tables.TaxesForRate(rec.TaxRateCode)
	if err != nil {
		return nil, err
	}
	income, expense, err := n.tables.AccountsForRate(rec.TaxRateCode)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"property_account_income_id":  income,
		"property_account_expense_id": expense,
		"taxes_id":                    []int64{saleTax},
		"supplier_taxes_id":           []int64{purchaseTax},
		"uom_po_id":                   purchaseUomID,
		"standard_price":              cost.Add(deliveryCost).Round(2),
		"type":                        "product",
	}

	if p.IsNew() {
		fields["name"] = rec.DisplayName
		fields["available_in_pos"] = true
		fields["print_category_id"] = refdata.PrintCategoryPricetags
		fields["margin_classification_id"] = refdata.MarginClassGeneral
	}

	n.addImage(ctx, fields, p, supplier.ImageURL(rec.SupplierCode))

	if rec.BasePriceUnit != "" {
		if rec.UnitWeight.IsZero() {
			return nil, fmt.Errorf("agidra product %s has zero gross weight", rec.Barcode)
		}
		unit := strings.ToLower(rec.BasePriceUnit)
		if unit == "lit" {
			unit = "l"
		}
		fields["base_price_unit"] = unit
		fields["base_price_factor"] = decimal.NewFromInt(1).Div(rec.UnitWeight).Round(3)
	}

	return &Target{
		ProductFields: fields,
		SupplierInfoFields: map[string]any{
			"name":            supplier.PartnerID,
			"product_code":    rec.SupplierCode,
			"product_name":    rec.DisplayName,
			"product_tmpl_id": p.ID,
			"price":           rec.UnitCost,
		},
		ReorderMinQty: supplier.ReorderMinQty,
		CaseQuantity:  caseQty,
	}, nil
}

// purchaseUomID resolves the purchase unit representing one order unit,
// matched in the category of the product's current sale unit so that e.g.
// weight-based products stay in the kg category.
func (n *Normalizer) purchaseUomID(ctx context.Context, p models.Product, caseQty int) (int64, error) {
	saleUom, err := n.uoms.ByID(ctx, p.UomID)
	if err != nil {
		return 0, err
	}
	categoryID, ok := odoo.ID(saleUom["category_id"])
	if !ok {
		return 0, fmt.Errorf("uom %d has no category", p.UomID)
	}
	return n.uoms.GetOrCreate(ctx, caseQty, categoryID)
}

// addImage fetches the supplier product image when the product has none.
// A fetch failure is logged and the image field is simply left out; it never
// aborts the surrounding update.
func (n *Normalizer) addImage(ctx context.Context, fields map[string]any, p models.Product, url string) {
	if p.HasImage {
		return
	}

	img, err := n.images.FetchBase64(ctx, url)
	if err != nil {
		n.logger.Warn("product image fetch failed, continuing without image",
			zap.Int64("product_id", p.ID), zap.String("url", url), zap.Error(err))
		return
	}

	fields["image"] = img
}
