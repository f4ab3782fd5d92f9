package feed

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/domain/models"
)

// Agidra catalog column headers.
const (
	agidraColBarcode   = "Code EAN"
	agidraColName      = "Désignation produit"
	agidraColCaseQty   = "Colisage"
	agidraColCasePrice = "P. Conditionement"
	agidraColWeight    = "Poids brut"
	agidraColWeightUom = "Unité de poids"
	agidraColVAT       = "TVA"
	agidraColRef       = "REF"
)

// agidraReducedVATRate is the French reduced rate that maps onto the
// domestic reduced rate code.
var agidraReducedVATRate = decimal.RequireFromString("5.5")

// ParseAgidraCSV reads an Agidra catalog export (header-keyed, comma
// delimited) into records keyed by barcode. A missing required column or an
// unparseable numeric field fails the whole parse.
func ParseAgidraCSV(r io.Reader) (map[string]models.SupplierRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read agidra header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range []string{
		agidraColBarcode, agidraColName, agidraColCaseQty, agidraColCasePrice,
		agidraColWeight, agidraColWeightUom, agidraColVAT, agidraColRef,
	} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("agidra catalog missing column %q", name)
		}
	}

	field := func(row []string, name string) (string, error) {
		i := index[name]
		if i >= len(row) {
			return "", fmt.Errorf("row has no column %q", name)
		}
		return row[i], nil
	}

	records := make(map[string]models.SupplierRecord)

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read agidra row: %w", err)
		}
		line++

		rec := models.SupplierRecord{SourceFeed: "agidra"}
		for name, dst := range map[string]*string{
			agidraColBarcode: &rec.Barcode,
			agidraColName:    &rec.DisplayName,
			agidraColRef:     &rec.SupplierCode,
		} {
			value, err := field(row, name)
			if err != nil {
				return nil, fmt.Errorf("agidra row %d: %w", line, err)
			}
			*dst = value
		}

		caseQtyRaw, err := field(row, agidraColCaseQty)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d: %w", line, err)
		}
		caseQty, err := decimal.NewFromString(caseQtyRaw)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d case quantity: %w", line, err)
		}

		casePriceRaw, err := field(row, agidraColCasePrice)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d: %w", line, err)
		}
		casePrice, err := decimal.NewFromString(casePriceRaw)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d case price: %w", line, err)
		}

		weightRaw, err := field(row, agidraColWeight)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d: %w", line, err)
		}
		weight, err := decimal.NewFromString(weightRaw)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d gross weight: %w", line, err)
		}

		vatRaw, err := field(row, agidraColVAT)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d: %w", line, err)
		}
		vat, err := decimal.NewFromString(vatRaw)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d vat: %w", line, err)
		}

		uom, err := field(row, agidraColWeightUom)
		if err != nil {
			return nil, fmt.Errorf("agidra row %d: %w", line, err)
		}
		// Sometimes the weight unit column is empty.
		if uom == "" {
			uom = "KG"
		}

		rate := 19
		if vat.Equal(agidraReducedVATRate) {
			rate = 7
		}

		// The listed price covers a whole order unit, so the price factor is
		// the case quantity itself: cost per sale unit = case price / case qty.
		rec.CaseQuantity = int(caseQty.IntPart())
		rec.UnitCost = casePrice
		rec.UnitPriceFactor = caseQty
		rec.TaxRateCode = rate
		rec.UnitWeight = weight
		rec.BasePriceUnit = uom

		records[rec.Barcode] = rec
	}

	return records, nil
}
