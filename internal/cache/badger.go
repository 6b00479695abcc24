package cache

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

var (
	errNotFound      = errors.New("key not found")
	errTransactionRO = errors.New("transaction is read-only")
)

// table namespaces keys within the single BadgerDB instance backing a
// DecodeCache. The cache only ever needs two: the content-addressed
// forest entries and a one-row schema guard, so there is no Table type
// or registry here, just two fixed prefixes.
type table byte

const (
	tableForest table = iota
	tableMeta
)

func prefixKey(t table, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = byte(t)
	copy(out[1:], key)
	return out
}

// badgerStorage is a thin BadgerDB wrapper trimmed to the transactional
// Get/Set surface a two-table cache needs; it carries no range-scan or
// delete path since DecodeCache never looks up anything but a single
// key at a time.
type badgerStorage struct {
	db *badger.DB
}

func openBadgerStorage(path string) (*badgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &badgerStorage{db: db}, nil
}

func (s *badgerStorage) begin(writable bool) *badgerTxn {
	return &badgerTxn{txn: s.db.NewTransaction(writable), writable: writable}
}

func (s *badgerStorage) close() error {
	return s.db.Close()
}

type badgerTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTxn) get(tbl table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(prefixKey(tbl, key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, errNotFound
		}
		return nil, err
	}

	var value []byte
	err = item.Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (t *badgerTxn) set(tbl table, key, value []byte) error {
	if !t.writable {
		return errTransactionRO
	}
	return t.txn.Set(prefixKey(tbl, key), value)
}

func (t *badgerTxn) commit() error {
	return t.txn.Commit()
}

func (t *badgerTxn) rollback() {
	t.txn.Discard()
}
