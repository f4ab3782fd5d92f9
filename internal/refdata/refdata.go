package refdata

import (
	"fmt"
	"strings"
)

// Fixed ids of auxiliary classifications in the ERP.
const (
	// MarginClassGeneral is the default margin classification (23% markup).
	MarginClassGeneral int64 = 1
	// MarginClassFresh applies to fresh produce (26% markup).
	MarginClassFresh int64 = 2
	// PrintCategoryPricetags marks products for supermarket price tag printing.
	PrintCategoryPricetags int64 = 1
)

// Tables holds the closed reference mappings between VAT rates, tax records,
// accounts and deposit fee tiers. A Tables value is built once at startup and
// passed explicitly wherever lookups are needed; it is never mutated.
type Tables struct {
	saleTaxByRate        map[int]int64
	purchaseTaxByRate    map[int]int64
	incomeAccountByRate  map[int]int64
	expenseAccountByRate map[int]int64

	depositLowFee     map[string]struct{}
	depositHighFee    map[string]struct{}
	depositLowFeeTax  int64
	depositHighFeeTax int64

	producers map[string]string
}

// Default builds the reference tables with the ids of the production ERP.
// Only the reduced (7%) and standard (19%) VAT rates exist.
func Default() *Tables {
	return &Tables{
		saleTaxByRate:     map[int]int64{7: 109, 19: 108},
		purchaseTaxByRate: map[int]int64{7: 118, 19: 117},
		// 4300 / 4400
		incomeAccountByRate: map[int]int64{7: 1864, 19: 1874},
		// 5300 / 5400
		expenseAccountByRate: map[int]int64{7: 2025, 19: 2027},

		depositLowFeeTax:  176,
		depositHighFeeTax: 175,
		depositLowFee: setOf(
			"998810", "998790", "998730", "998840",
		),
		depositHighFee: setOf(
			"998405", "998040", "998310", "998320", "998402", "998340",
			"998393", "998060", "998450", "998352", "998417", "998427",
			"998366", "998370", "998360", "998420", "998790", "999020",
			"998398", "999010", "900067", "998408",
		),

		producers: map[string]string{},
	}
}

// WithProducers returns a copy of the tables carrying the given
// producer-code → display-name aliases.
func (t *Tables) WithProducers(producers map[string]string) *Tables {
	copied := *t
	copied.producers = make(map[string]string, len(producers))
	for code, name := range producers {
		copied.producers[code] = name
	}
	return &copied
}

// TaxesForRate maps a VAT rate code to its (sale tax, purchase tax) pair.
// Unknown rates are a hard error: tax mapping is mandatory.
func (t *Tables) TaxesForRate(rate int) (saleTax, purchaseTax int64, err error) {
	saleTax, ok := t.saleTaxByRate[rate]
	if !ok {
		return 0, 0, fmt.Errorf("no tax mapping for VAT rate %d", rate)
	}
	purchaseTax, ok = t.purchaseTaxByRate[rate]
	if !ok {
		return 0, 0, fmt.Errorf("no purchase tax mapping for VAT rate %d", rate)
	}
	return saleTax, purchaseTax, nil
}

// AccountsForRate maps a VAT rate code to its (income, expense) account pair.
func (t *Tables) AccountsForRate(rate int) (income, expense int64, err error) {
	income, ok := t.incomeAccountByRate[rate]
	if !ok {
		return 0, 0, fmt.Errorf("no income account mapping for VAT rate %d", rate)
	}
	expense, ok = t.expenseAccountByRate[rate]
	if !ok {
		return 0, 0, fmt.Errorf("no expense account mapping for VAT rate %d", rate)
	}
	return income, expense, nil
}

// ClassifyDeposit maps a deposit code to its fee tax id. Codes outside both
// tiers fall back to the high-fee tier; known reports whether the code was
// classified rather than defaulted.
func (t *Tables) ClassifyDeposit(code string) (taxID int64, known bool) {
	if _, ok := t.depositLowFee[code]; ok {
		return t.depositLowFeeTax, true
	}
	if _, ok := t.depositHighFee[code]; ok {
		return t.depositHighFeeTax, true
	}
	return t.depositHighFeeTax, false
}

// RateForSaleTaxes detects the VAT rate of a product from its assigned sale
// tax ids. Zero when no known sale tax is present.
func (t *Tables) RateForSaleTaxes(taxIDs []int64) int {
	for _, rate := range []int{7, 19} {
		want := t.saleTaxByRate[rate]
		for _, id := range taxIDs {
			if id == want {
				return rate
			}
		}
	}
	return 0
}

// ProducerName resolves a producer code to its display name, falling back to
// the raw code when no alias exists.
func (t *Tables) ProducerName(code string) string {
	if name, ok := t.producers[code]; ok {
		return name
	}
	return code
}

// Supplier is the per-supplier configuration: the ERP partner record, the
// reorder minimum and the product image location.
type Supplier struct {
	Name          string
	PartnerID     int64
	ReorderMinQty float64
	// imageURLTemplate contains {code} placeholders for the supplier's
	// product code.
	imageURLTemplate string
}

// ImageURL builds the predictable product image URL for a supplier code.
func (s Supplier) ImageURL(code string) string {
	return strings.ReplaceAll(s.imageURLTemplate, "{code}", code)
}

// Terra is the profile of the Terra Naturkost wholesale supplier.
func Terra() Supplier {
	return Supplier{
		Name:             "terra",
		PartnerID:        11, // Terra Naturkost Handels KG
		ReorderMinQty:    2.0,
		imageURLTemplate: "https://www.terra-natur.com/_artikelbilder_/{code}/{code}_medium.jpg",
	}
}

// Agidra is the profile of the Agidra supplier.
func Agidra() Supplier {
	return Supplier{
		Name:             "agidra",
		PartnerID:        362,
		ReorderMinQty:    8.0,
		imageURLTemplate: "https://www.agidra.com/images/vignettes/{code}_Z1.jpg",
	}
}

func setOf(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
