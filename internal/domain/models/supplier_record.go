package models

import "github.com/shopspring/decimal"

// SupplierRecord is one normalized row of a supplier price feed, keyed by
// barcode. Records are created fresh on every parse and never mutated.
type SupplierRecord struct {
	Barcode      string
	SupplierCode string // the supplier's own article number
	DisplayName  string
	ProducerName string // raw producer code from the feed; aliased later

	// CaseQuantity is the number of sale units per order unit.
	CaseQuantity int
	// UnitCost is the listed price as delivered by the feed. For Terra it
	// refers to UnitPriceFactor of one sale unit; for Agidra it is the price
	// of a whole order unit, so UnitPriceFactor equals CaseQuantity there.
	UnitCost decimal.Decimal
	// UnitPriceFactor is the fraction of a sale unit the listed price refers
	// to. Cost per sale unit is always UnitCost / UnitPriceFactor.
	UnitPriceFactor decimal.Decimal

	// TaxRateCode is the VAT rate in percent; only the reduced (7) and
	// standard (19) rates occur.
	TaxRateCode int

	DepositCodeSaleUnit  string
	DepositCodeOrderUnit string

	// Base price reference for per-unit price display. Terra delivers unit
	// and factor directly; Agidra delivers the weight unit plus the gross
	// weight per sale unit, from which the factor is derived.
	BasePriceUnit   string
	BasePriceFactor decimal.Decimal
	UnitWeight      decimal.Decimal

	// SourceFeed tags which feed file the record came from.
	SourceFeed string
}
