package utils

import (
	"math"
	"strings"
)

// Table column roles.
const (
	colItem  = "item"
	colQty   = "qty"
	colPrice = "price"
	colTotal = "total"
)

// Fixed role order; equidistant anchors resolve to the earlier role.
var columnRoles = [...]string{colItem, colQty, colPrice, colTotal}

// ColumnMap maps a column role to the x anchor of its header cell. Roles
// without a matched header cell are simply absent.
type ColumnMap map[string]float64

// Header synonyms per role, matched as substrings of the whole row text.
var (
	itemHeaderWords  = []string{"item", "description"}
	qtyHeaderWords   = []string{"qty", "quantity"}
	priceHeaderWords = []string{"price", "rate", "unit", "total", "amount"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// InferColumns scans bands in reading order for the first row that looks
// like a table header: its joined text must mention an item column, a qty
// column, and a price or total column. Each matched cell's x-center becomes
// that role's anchor. Only one header per document is assumed, so scanning
// stops at the first match.
func InferColumns(bands []Band) ColumnMap {
	for _, b := range bands {
		header := strings.ToLower(b.Text())
		if !containsAny(header, itemHeaderWords) || !containsAny(header, qtyHeaderWords) {
			continue
		}
		if !containsAny(header, priceHeaderWords) {
			continue
		}

		cols := ColumnMap{}
		for _, f := range b.Fragments {
			switch strings.ToLower(f.Text) {
			case "item", "items", "description":
				cols[colItem] = f.X
			case "qty", "quantity":
				cols[colQty] = f.X
			case "price", "rate", "unit":
				cols[colPrice] = f.X
			case "total", "amount":
				cols[colTotal] = f.X
			}
		}
		return cols
	}
	return nil
}

// Nearest returns the role whose anchor is horizontally closest to x.
// Linear scan: there are at most four anchors.
func (m ColumnMap) Nearest(x float64) string {
	best := ""
	bestDist := math.MaxFloat64
	for _, role := range columnRoles {
		anchor, ok := m[role]
		if !ok {
			continue
		}
		if d := math.Abs(x - anchor); d < bestDist {
			best = role
			bestDist = d
		}
	}
	return best
}
