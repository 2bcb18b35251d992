package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"invoice-ocr/dto"
)

const invoiceBucket = "invoices"

// BoltStore persists parsed invoice records for the HTTP surface.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(invoiceBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save stores a parsed record under its ID.
func (s *BoltStore) Save(entry *dto.StoredInvoice) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return bucket.Put([]byte(entry.ID), data)
	})
}

// Get retrieves a record by ID.
func (s *BoltStore) Get(id string) (*dto.StoredInvoice, error) {
	var entry *dto.StoredInvoice
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("record not found: %s", id)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all stored records in key order.
func (s *BoltStore) List() ([]*dto.StoredInvoice, error) {
	entries := make([]*dto.StoredInvoice, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var entry dto.StoredInvoice
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshaling record: %w", err)
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
