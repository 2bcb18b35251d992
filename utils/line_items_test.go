package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-ocr/dto"
)

// tableRow builds one item row at the given y using the header's column
// positions from headerDetections.
func tableRow(y float64, item, qty, price, total string) []dto.Detection {
	var dets []dto.Detection
	if item != "" {
		dets = append(dets, det(40, y, 40, 10, item))
	}
	if qty != "" {
		dets = append(dets, det(190, y, 30, 10, qty))
	}
	if price != "" {
		dets = append(dets, det(290, y, 40, 10, price))
	}
	if total != "" {
		dets = append(dets, det(390, y, 40, 10, total))
	}
	return dets
}

func TestAnchoredExtractionWithQtyColumn(t *testing.T) {
	dets := append(headerDetections(), tableRow(40, "Widget", "3", "12.50", "")...)

	items := ExtractLineItemsFromDetections(dets)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Item)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 12.5, items[0].Price)
	assert.Nil(t, items[0].UnitPrice)
}

func TestAnchoredExtractionNoSwapWhenTotalLarger(t *testing.T) {
	dets := append(headerDetections(), tableRow(40, "Widget", "", "5.00", "50.00")...)

	items := ExtractLineItemsFromDetections(dets)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 50.0, items[0].Price)
	require.NotNil(t, items[0].UnitPrice)
	assert.Equal(t, 5.0, *items[0].UnitPrice)
}

func TestAnchoredExtractionSwapsInvertedColumns(t *testing.T) {
	dets := append(headerDetections(), tableRow(40, "Widget", "", "50.00", "5.00")...)

	items := ExtractLineItemsFromDetections(dets)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 50.0, items[0].Price)
	require.NotNil(t, items[0].UnitPrice)
	assert.Equal(t, 5.0, *items[0].UnitPrice)
}

func TestAnchoredExtractionSkipsRowWithoutNumbers(t *testing.T) {
	dets := append(headerDetections(), tableRow(40, "Widget", "", "", "")...)
	assert.Empty(t, ExtractLineItemsFromDetections(dets))
}

func TestExcludedBandNeverBecomesItem(t *testing.T) {
	dets := append(headerDetections(),
		det(40, 40, 80, 10, "SUBTOTAL"),
		det(390, 40, 40, 10, "12.00"),
	)
	assert.Empty(t, ExtractLineItemsFromDetections(dets))
	assert.Empty(t, ExtractLineItems("SUBTOTAL 12.00"))
	assert.Empty(t, ExtractLineItemsLoose("SUBTOTAL 12.00"))
}

func TestExcludedTruncatedPrefix(t *testing.T) {
	// OCR-clipped "TOT" for "TOTAL" still excludes the line.
	dets := append(headerDetections(),
		det(40, 40, 40, 10, "TOT"),
		det(390, 40, 40, 10, "45.00"),
	)
	assert.Empty(t, ExtractLineItemsFromDetections(dets))
}

func TestTokenPathWithoutHeader(t *testing.T) {
	dets := []dto.Detection{
		det(10, 10, 60, 10, "Coffee"),
		det(200, 10, 20, 10, "2"),
		det(300, 10, 40, 10, "7.00"),
	}

	items := ExtractLineItemsFromDetections(dets)
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee", items[0].Item)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 7.0, items[0].Price)
	require.NotNil(t, items[0].UnitPrice)
	assert.Equal(t, 2.0, *items[0].UnitPrice)
}

func TestTokenPathPendingItemCarryover(t *testing.T) {
	// Description band followed by a numeric-only band: common when the
	// price wraps to its own line on narrow receipts.
	dets := []dto.Detection{
		det(10, 10, 60, 10, "Deluxe"),
		det(80, 10, 60, 10, "Burger"),
		det(300, 40, 40, 10, "12.50"),
	}

	items := ExtractLineItemsFromDetections(dets)
	require.Len(t, items, 1)
	assert.Equal(t, "Deluxe Burger", items[0].Item)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 12.5, items[0].Price)
}

func TestPlainTextWideSpacingSplit(t *testing.T) {
	items := ExtractLineItems("Widget  2  22.75")
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Item)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 22.75, items[0].Price)
}

func TestPlainTextTokenPath(t *testing.T) {
	items := ExtractLineItems("Blue Pen 4 1.25 5.00")
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Pen", items[0].Item)
	assert.Equal(t, 4, items[0].Quantity)
	// Last decimal-bearing token wins as the price.
	assert.Equal(t, 5.0, items[0].Price)
}

func TestPlainTextQuantityFromUnitKeyword(t *testing.T) {
	items := ExtractLineItems("Notebook pcs 12 150 175.00")
	require.Len(t, items, 1)
	assert.Equal(t, 12, items[0].Quantity)
	assert.Equal(t, 175.0, items[0].Price)
}

func TestPlainTextQuantityFromMultiplier(t *testing.T) {
	items := ExtractLineItems("Soda 500 x3 9.00")
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 9.0, items[0].Price)
}

func TestPlainTextSkipsLineStartingWithNumber(t *testing.T) {
	assert.Empty(t, ExtractLineItems("12 34 56.00"))
}

func TestLooseExtraction(t *testing.T) {
	items := ExtractLineItemsLoose("Coffee beans 250 17.50")
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee beans 250", items[0].Item)
	assert.Equal(t, 250, items[0].Quantity)
	assert.Equal(t, 17.5, items[0].Price)
}

func TestLooseExtractionStripsTrailingNumber(t *testing.T) {
	items := ExtractLineItemsLoose("House Blend 4.50")
	require.Len(t, items, 1)
	assert.Equal(t, "House Blend", items[0].Item)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 4.5, items[0].Price)
}

func TestCascadeFallsBackToPlainText(t *testing.T) {
	items := ExtractLineItemsCascade("Coffee 2 3.50", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee", items[0].Item)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCascadeFallsBackToLoose(t *testing.T) {
	// Two tokens: too few for the plain-text strategy, enough for loose.
	items := ExtractLineItemsCascade("Espresso 3.00", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "Espresso", items[0].Item)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 3.0, items[0].Price)
}

func TestCascadeExhaustionYieldsNothing(t *testing.T) {
	assert.Empty(t, ExtractLineItemsCascade("just some words here", nil))
}
