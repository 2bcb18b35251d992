package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-ocr/dto"
)

func headerDetections() []dto.Detection {
	return []dto.Detection{
		det(40, 10, 40, 10, "Item"),
		det(190, 10, 30, 10, "Qty"),
		det(290, 10, 40, 10, "Price"),
		det(390, 10, 40, 10, "Total"),
	}
}

func TestInferColumnsFindsHeader(t *testing.T) {
	bands := ClusterBands(headerDetections(), rowBucketMin)
	cols := InferColumns(bands)

	require.NotNil(t, cols)
	assert.Len(t, cols, 4)
	assert.Equal(t, 60.0, cols[colItem])
	assert.Equal(t, 205.0, cols[colQty])
	assert.Equal(t, 310.0, cols[colPrice])
	assert.Equal(t, 410.0, cols[colTotal])
}

func TestInferColumnsCaseInsensitive(t *testing.T) {
	dets := []dto.Detection{
		det(40, 10, 80, 10, "DESCRIPTION"),
		det(190, 10, 30, 10, "QTY"),
		det(290, 10, 50, 10, "AMOUNT"),
	}
	cols := InferColumns(ClusterBands(dets, rowBucketMin))

	require.NotNil(t, cols)
	assert.Contains(t, cols, colItem)
	assert.Contains(t, cols, colQty)
	assert.Contains(t, cols, colTotal)
	assert.NotContains(t, cols, colPrice)
}

func TestInferColumnsNoHeader(t *testing.T) {
	dets := []dto.Detection{
		det(10, 10, 60, 10, "Coffee"),
		det(200, 10, 40, 10, "3.50"),
	}
	assert.Nil(t, InferColumns(ClusterBands(dets, rowBucketMin)))
}

func TestInferColumnsStopsAtFirstHeader(t *testing.T) {
	dets := append(headerDetections(),
		det(40, 200, 40, 10, "Item"),
		det(500, 200, 30, 10, "Qty"),
		det(600, 200, 40, 10, "Price"),
	)
	cols := InferColumns(ClusterBands(dets, rowBucketMin))

	require.NotNil(t, cols)
	assert.Equal(t, 205.0, cols[colQty])
}

func TestNearestAnchor(t *testing.T) {
	cols := ColumnMap{colItem: 50, colQty: 200, colPrice: 300, colTotal: 400}

	assert.Equal(t, colItem, cols.Nearest(10))
	assert.Equal(t, colQty, cols.Nearest(210))
	assert.Equal(t, colPrice, cols.Nearest(320))
	assert.Equal(t, colTotal, cols.Nearest(1000))
}

func TestNearestAnchorTiePrefersEarlierRole(t *testing.T) {
	cols := ColumnMap{colQty: 100, colPrice: 200}
	// 150 is equidistant; qty comes first in role order.
	assert.Equal(t, colQty, cols.Nearest(150))
}
