package refdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxesForRate(t *testing.T) {
	tables := Default()

	sale, purchase, err := tables.TaxesForRate(7)
	require.NoError(t, err)
	assert.Equal(t, int64(109), sale)
	assert.Equal(t, int64(118), purchase)

	sale, purchase, err = tables.TaxesForRate(19)
	require.NoError(t, err)
	assert.Equal(t, int64(108), sale)
	assert.Equal(t, int64(117), purchase)
}

func TestTaxesForRateUnknown(t *testing.T) {
	_, _, err := Default().TaxesForRate(16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tax mapping")
}

func TestAccountsForRate(t *testing.T) {
	tables := Default()

	income, expense, err := tables.AccountsForRate(7)
	require.NoError(t, err)
	assert.Equal(t, int64(1864), income)
	assert.Equal(t, int64(2025), expense)

	income, expense, err = tables.AccountsForRate(19)
	require.NoError(t, err)
	assert.Equal(t, int64(1874), income)
	assert.Equal(t, int64(2027), expense)

	_, _, err = tables.AccountsForRate(0)
	assert.Error(t, err)
}

func TestClassifyDeposit(t *testing.T) {
	tables := Default()

	taxID, known := tables.ClassifyDeposit("998810")
	assert.Equal(t, int64(176), taxID)
	assert.True(t, known)

	taxID, known = tables.ClassifyDeposit("998405")
	assert.Equal(t, int64(175), taxID)
	assert.True(t, known)

	// Listed in both tiers; the low fee wins.
	taxID, known = tables.ClassifyDeposit("998790")
	assert.Equal(t, int64(176), taxID)
	assert.True(t, known)

	taxID, known = tables.ClassifyDeposit("123456")
	assert.Equal(t, int64(175), taxID)
	assert.False(t, known)
}

func TestRateForSaleTaxes(t *testing.T) {
	tables := Default()

	assert.Equal(t, 7, tables.RateForSaleTaxes([]int64{109}))
	assert.Equal(t, 19, tables.RateForSaleTaxes([]int64{42, 108}))
	// The reduced rate takes precedence when both are assigned.
	assert.Equal(t, 7, tables.RateForSaleTaxes([]int64{108, 109}))
	assert.Equal(t, 0, tables.RateForSaleTaxes([]int64{42}))
	assert.Equal(t, 0, tables.RateForSaleTaxes(nil))
}

func TestProducerName(t *testing.T) {
	tables := Default().WithProducers(map[string]string{"SPI": "Spielberger Mühle"})

	assert.Equal(t, "Spielberger Mühle", tables.ProducerName("SPI"))
	assert.Equal(t, "XYZ", tables.ProducerName("XYZ"))
}

func TestWithProducersCopies(t *testing.T) {
	source := map[string]string{"SPI": "Spielberger Mühle"}
	tables := Default().WithProducers(source)

	source["SPI"] = "changed"
	assert.Equal(t, "Spielberger Mühle", tables.ProducerName("SPI"))
}

func TestSupplierImageURL(t *testing.T) {
	assert.Equal(t,
		"https://www.terra-natur.com/_artikelbilder_/55501/55501_medium.jpg",
		Terra().ImageURL("55501"))
	assert.Equal(t,
		"https://www.agidra.com/images/vignettes/A77_Z1.jpg",
		Agidra().ImageURL("A77"))
}

func TestSupplierProfiles(t *testing.T) {
	terra := Terra()
	assert.Equal(t, int64(11), terra.PartnerID)
	assert.Equal(t, 2.0, terra.ReorderMinQty)

	agidra := Agidra()
	assert.Equal(t, int64(362), agidra.PartnerID)
	assert.Equal(t, 8.0, agidra.ReorderMinQty)
}

func TestReadProducers(t *testing.T) {
	producers, err := ReadProducers(strings.NewReader("SPI,Spielberger Mühle\nDAV,Davert\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"SPI": "Spielberger Mühle",
		"DAV": "Davert",
	}, producers)
}

func TestReadProducersShortRow(t *testing.T) {
	_, err := ReadProducers(strings.NewReader("SPI\n"))
	assert.Error(t, err)
}
