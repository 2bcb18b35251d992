package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"invoice-ocr/dto"
)

// Words marking a table header or summary line rather than a purchasable row.
var tableHeaderWords = []string{
	"description", "qty", "quantity",
	"price", "total", "subtotal",
	"tax", "amount",
}

var excludedLineWords = []string{
	"total", "subtotal", "tax", "vat", "gst", "amount due",
	"balance due", "grand total", "change", "cash", "card",
	"thank you", "paid", "payment", "tender", "invoice",
	"date", "time", "table", "server",
}

// Truncated prefixes guard against OCR-clipped footers ("TOT" for "TOTAL").
var excludedPrefixes = []string{"tot", "tax", "vat", "gst", "amt", "due", "bal", "sub"}

// Common OCR garbles of "tax" and "total".
var excludedGarbles = map[string]bool{"tex": true, "totd": true, "tota": true, "totl": true}

var (
	nonLetters     = regexp.MustCompile(`[^a-z]`)
	letterPattern  = regexp.MustCompile(`[A-Za-z]`)
	digitsPattern  = regexp.MustCompile(`\d+`)
	priceFinder    = regexp.MustCompile(`\d+\.?\d*`)
	looseNumber    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	trailingNumber = regexp.MustCompile(`\d+(?:\.\d+)?\s*$`)
	multiSpace     = regexp.MustCompile(`\s{2,}`)
	qtyTimesSuffix = regexp.MustCompile(`^(\d+)\s*x$`)
	qtyTimesPrefix = regexp.MustCompile(`^x\s*(\d+)$`)
)

// Unit keywords whose following number is the quantity.
var quantityUnits = map[string]bool{"qty": true, "quantity": true, "pcs": true, "pc": true, "ea": true}

func containsTableHeaderWord(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range tableHeaderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// isExcludedLine reports whether a line belongs to the receipt chrome
// (totals, payment, footer) rather than the purchased items.
func isExcludedLine(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range excludedLineWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	lettersOnly := nonLetters.ReplaceAllString(lower, "")
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(lettersOnly, p) {
			return true
		}
	}
	return excludedGarbles[lettersOnly]
}

func skipLineItemRow(line string) bool {
	return len(line) < 5 || containsTableHeaderWord(line) || isExcludedLine(line)
}

// ExtractLineItemsFromDetections is the box-aware strategy. Detections are
// clustered into table rows; when a header row was found each cell is
// assigned to its nearest column anchor, otherwise tokens are classified
// within the row, carrying a description-only row over to a following
// numeric-only row.
func ExtractLineItemsFromDetections(dets []dto.Detection) []dto.LineItem {
	var items []dto.LineItem
	if len(dets) == 0 {
		return items
	}

	bands := ClusterBands(dets, rowBucketMin)
	cols := InferColumns(bands)

	pendingItem := ""
	for _, band := range bands {
		if skipLineItemRow(band.Text()) {
			continue
		}

		if len(cols) > 0 {
			if item, ok := extractAnchoredRow(band, cols); ok {
				items = append(items, item)
			}
			continue
		}

		var alphaTokens []string
		var numericValues []float64
		for _, f := range band.Fragments {
			if letterPattern.MatchString(f.Text) {
				alphaTokens = append(alphaTokens, f.Text)
			}
			if v, _, ok := ParseNumericToken(f.Text); ok {
				numericValues = append(numericValues, v)
			}
		}

		switch {
		case len(alphaTokens) > 0 && len(numericValues) > 0:
			price := numericValues[len(numericValues)-1]
			qty := 1
			smallest := math.MaxFloat64
			for _, v := range numericValues {
				if v == math.Trunc(v) && v >= 1 && v <= 100 && v < smallest {
					smallest = v
				}
			}
			if smallest != math.MaxFloat64 {
				qty = int(smallest)
			}

			item := dto.LineItem{
				Item:     strings.TrimSpace(strings.Join(alphaTokens, " ")),
				Quantity: qty,
				Price:    price,
			}
			if len(numericValues) >= 2 {
				unit := numericValues[len(numericValues)-2]
				if unit != price {
					item.UnitPrice = &unit
				}
			}
			items = append(items, item)
			pendingItem = ""

		case len(numericValues) > 0 && len(alphaTokens) == 0 && pendingItem != "":
			items = append(items, dto.LineItem{
				Item:     pendingItem,
				Quantity: 1,
				Price:    numericValues[len(numericValues)-1],
			})
			pendingItem = ""

		case len(alphaTokens) > 0:
			pendingItem = strings.TrimSpace(strings.Join(alphaTokens, " "))
		}
	}
	return items
}

// extractAnchoredRow classifies each cell of a row by its nearest column
// anchor. The row qualifies only if the item cell is non-empty and at least
// one of qty/price/total parsed.
func extractAnchoredRow(band Band, cols ColumnMap) (dto.LineItem, bool) {
	var itemParts []string
	var qty, unit, total *float64

	for _, f := range band.Fragments {
		role := cols.Nearest(f.X)
		if role == colItem {
			itemParts = append(itemParts, f.Text)
			continue
		}
		v, _, ok := ParseNumericToken(f.Text)
		if !ok {
			continue
		}
		switch role {
		case colQty:
			qty = &v
		case colPrice:
			unit = &v
		case colTotal:
			total = &v
		}
	}

	item := strings.TrimSpace(strings.Join(itemParts, " "))
	if item == "" || (qty == nil && unit == nil && total == nil) {
		return dto.LineItem{}, false
	}

	quantity := 1
	if qty != nil {
		quantity = int(math.Round(*qty))
	}

	// With only two numeric cells the price/total roles may be inverted by
	// a misplaced anchor; when the quantity resolved to exactly 1, total
	// below unit price is impossible, so swap them back.
	if unit != nil && total != nil && quantity == 1 && *total < *unit {
		unit, total = total, unit
	}

	price := 0.0
	switch {
	case total != nil:
		price = *total
	case unit != nil:
		price = *unit
	}

	li := dto.LineItem{Item: item, Quantity: quantity, Price: price}
	if unit != nil && *unit != price {
		li.UnitPrice = unit
	}
	return li, true
}

// ExtractLineItems is the plain-text strategy, used when no detection
// geometry is available or the box-aware pass produced nothing. It first
// tries a columns-by-wide-spacing split, then whitespace tokenization with
// numeric-token classification.
func ExtractLineItems(text string) []dto.LineItem {
	var items []dto.LineItem

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if skipLineItemRow(line) {
			continue
		}

		// Runs of 2+ spaces usually survive OCR as column gaps.
		parts := multiSpace.Split(line, -1)
		if len(parts) >= 3 {
			qtyMatch := digitsPattern.FindString(parts[1])
			priceMatch := priceFinder.FindString(parts[len(parts)-1])
			if qtyMatch == "" || priceMatch == "" {
				continue
			}
			qty, err := strconv.Atoi(qtyMatch)
			if err != nil {
				continue
			}
			price, err := strconv.ParseFloat(priceMatch, 64)
			if err != nil {
				continue
			}
			items = append(items, dto.LineItem{
				Item:     strings.TrimSpace(parts[0]),
				Quantity: qty,
				Price:    price,
			})
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) < 3 {
			continue
		}

		type numTok struct {
			index      int
			value      float64
			hasDecimal bool
		}
		var numToks []numTok
		for i, t := range tokens {
			if v, cleaned, ok := ParseNumericToken(t); ok {
				numToks = append(numToks, numTok{index: i, value: v, hasDecimal: strings.Contains(cleaned, ".")})
			}
		}
		if len(numToks) < 2 {
			continue
		}
		// No item text available when the line starts with a number.
		if numToks[0].index == 0 {
			continue
		}

		item := strings.TrimSpace(strings.Join(tokens[:numToks[0].index], " "))

		// Quantity, most to least explicit: number after a unit keyword,
		// multiplier notation, smallest small integer, first number.
		qty := -1.0
		for i, t := range tokens {
			if !quantityUnits[strings.ToLower(t)] {
				continue
			}
			for _, n := range numToks {
				if n.index > i {
					qty = n.value
					break
				}
			}
			if qty >= 0 {
				break
			}
		}
		if qty < 0 {
			for _, t := range tokens {
				lower := strings.ToLower(t)
				if m := qtyTimesSuffix.FindStringSubmatch(lower); m != nil {
					if v, err := strconv.ParseFloat(m[1], 64); err == nil {
						qty = v
						break
					}
				}
				if m := qtyTimesPrefix.FindStringSubmatch(lower); m != nil {
					if v, err := strconv.ParseFloat(m[1], 64); err == nil {
						qty = v
						break
					}
				}
			}
		}
		if qty < 0 {
			smallest := math.MaxFloat64
			for _, n := range numToks {
				if n.value == math.Trunc(n.value) && n.value >= 1 && n.value <= 100 && n.value < smallest {
					smallest = n.value
				}
			}
			if smallest != math.MaxFloat64 {
				qty = smallest
			}
		}
		if qty < 0 {
			qty = numToks[0].value
		}

		// Decimal-bearing tokens are trusted as prices; bare integers are
		// more likely quantities or item codes, so fall back to the
		// largest value on the line.
		price := 0.0
		hasDecimalPrice := false
		for _, n := range numToks {
			if n.hasDecimal {
				price = n.value
				hasDecimalPrice = true
			}
		}
		if !hasDecimalPrice {
			for _, n := range numToks {
				if n.value > price {
					price = n.value
				}
			}
		}

		items = append(items, dto.LineItem{
			Item:     item,
			Quantity: int(math.Round(qty)),
			Price:    price,
		})
	}
	return items
}

// ExtractLineItemsLoose is the last-resort strategy: any line with a letter
// and at least one number becomes an item, last number as price.
func ExtractLineItemsLoose(text string) []dto.LineItem {
	var items []dto.LineItem

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if len(line) < 5 {
			continue
		}
		if containsTableHeaderWord(line) {
			continue
		}
		if !letterPattern.MatchString(line) {
			continue
		}

		numbers := looseNumber.FindAllString(strings.ReplaceAll(line, ",", ""), -1)
		if len(numbers) == 0 {
			continue
		}

		price, err := strconv.ParseFloat(numbers[len(numbers)-1], 64)
		if err != nil {
			continue
		}
		qty := 1
		if len(numbers) >= 2 {
			if v, err := strconv.ParseFloat(numbers[0], 64); err == nil {
				qty = int(v)
			}
		}

		item := strings.Trim(trailingNumber.ReplaceAllString(line, ""), " -|:")
		if item == "" {
			item = line
		}

		items = append(items, dto.LineItem{
			Item:     item,
			Quantity: qty,
			Price:    price,
		})
	}
	return items
}

// ExtractLineItemsCascade tries strategies from most to least structured,
// stopping at the first that yields items. Exhaustion is not an error: the
// result is simply empty.
func ExtractLineItemsCascade(text string, dets []dto.Detection) []dto.LineItem {
	items := ExtractLineItemsFromDetections(dets)
	if len(items) == 0 {
		items = ExtractLineItems(text)
	}
	if len(items) == 0 {
		items = ExtractLineItemsLoose(text)
	}
	return items
}
