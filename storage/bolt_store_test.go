package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-ocr/dto"
)

func testStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "invoices.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(id string) *dto.StoredInvoice {
	merchant := "Corner Cafe"
	total := 9.5
	return &dto.StoredInvoice{
		ID:          id,
		SourceFile:  "scan.png",
		ProcessedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Record: dto.InvoiceRecord{
			MerchantName: &merchant,
			TotalAmount:  &total,
			LineItems:    []dto.LineItem{},
		},
	}
}

func TestBoltStoreRoundtrip(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Save(sampleEntry("inv-1")))

	got, err := store.Get("inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.ID)
	assert.Equal(t, "scan.png", got.SourceFile)
	require.NotNil(t, got.Record.MerchantName)
	assert.Equal(t, "Corner Cafe", *got.Record.MerchantName)
	require.NotNil(t, got.Record.TotalAmount)
	assert.Equal(t, 9.5, *got.Record.TotalAmount)
}

func TestBoltStoreGetMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.Get("nope")
	assert.ErrorContains(t, err, "record not found")
}

func TestBoltStoreList(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Save(sampleEntry("b")))
	require.NoError(t, store.Save(sampleEntry("a")))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Bolt iterates keys in byte order.
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestBoltStoreListEmpty(t *testing.T) {
	entries, err := testStore(t).List()
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
