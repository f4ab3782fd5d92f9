package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/domain/models"
)

// BNN column positions, 1-based as in the format specification.
const (
	bnnColArticleNumber   = 1
	bnnColStatus          = 2
	bnnColBarcode         = 5
	bnnColName1           = 7
	bnnColName2           = 8
	bnnColName3           = 9
	bnnColProducer        = 11
	bnnColCaseQuantity    = 23
	bnnColPriceFactor     = 25
	bnnColDepositSale     = 27
	bnnColDepositOrder    = 28
	bnnColVATFlag         = 34
	bnnColUnitPrice       = 38
	bnnColBasePriceUnit   = 66
	bnnColBasePriceFactor = 67
)

// bnnStatusDelisted marks articles removed from the assortment.
const bnnStatusDelisted = "X"

// ParseBNN reads a Terra BNN price list (semicolon-delimited, CP850 encoded,
// one header line, three-column trailer) into records keyed by barcode.
// Delisted rows are skipped; any malformed row fails the whole parse, feed
// integrity is all-or-nothing.
func ParseBNN(r io.Reader, sourceTag string) (map[string]models.SupplierRecord, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.CodePage850.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records := make(map[string]models.SupplierRecord)

	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bnn row: %w", err)
		}
		line++

		// First line carries format version info only.
		if line == 1 {
			continue
		}
		// The trailer row has exactly three columns.
		if len(row) == 3 {
			break
		}
		if len(row) < bnnColBasePriceFactor {
			return nil, fmt.Errorf("bnn row %d has %d columns, want at least %d", line, len(row), bnnColBasePriceFactor)
		}

		if col(row, bnnColStatus) == bnnStatusDelisted {
			continue
		}

		caseQty, err := parseCommaDecimal(col(row, bnnColCaseQuantity))
		if err != nil {
			return nil, fmt.Errorf("bnn row %d case quantity: %w", line, err)
		}
		priceFactor, err := parseCommaDecimal(col(row, bnnColPriceFactor))
		if err != nil {
			return nil, fmt.Errorf("bnn row %d price factor: %w", line, err)
		}
		unitPrice, err := parseCommaDecimal(col(row, bnnColUnitPrice))
		if err != nil {
			return nil, fmt.Errorf("bnn row %d unit price: %w", line, err)
		}
		basePriceFactor, err := parseCommaDecimal(col(row, bnnColBasePriceFactor))
		if err != nil {
			return nil, fmt.Errorf("bnn row %d base price factor: %w", line, err)
		}

		rate := 19
		if col(row, bnnColVATFlag) == "1" {
			rate = 7
		}

		barcode := col(row, bnnColBarcode)
		records[barcode] = models.SupplierRecord{
			Barcode:              barcode,
			SupplierCode:         col(row, bnnColArticleNumber),
			DisplayName:          col(row, bnnColName1) + col(row, bnnColName2) + col(row, bnnColName3),
			ProducerName:         col(row, bnnColProducer),
			CaseQuantity:         int(caseQty.IntPart()),
			UnitCost:             unitPrice,
			UnitPriceFactor:      priceFactor,
			TaxRateCode:          rate,
			DepositCodeSaleUnit:  col(row, bnnColDepositSale),
			DepositCodeOrderUnit: col(row, bnnColDepositOrder),
			BasePriceUnit:        col(row, bnnColBasePriceUnit),
			BasePriceFactor:      basePriceFactor,
			SourceFeed:           sourceTag,
		}
	}

	return records, nil
}

// col returns a field by its 1-based BNN column number.
func col(row []string, n int) string {
	return row[n-1]
}

// parseCommaDecimal parses a numeric field using the feed's decimal comma as
// an exact decimal.
func parseCommaDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}
