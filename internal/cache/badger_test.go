package cache

import (
	"bytes"
	"testing"
)

func TestBadgerSetGetAcrossTables(t *testing.T) {
	s, err := openBadgerStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.close()

	txn := s.begin(true)
	if err := txn.set(tableForest, []byte("hash-a"), []byte("blob-a")); err != nil {
		t.Fatalf("failed to set forest entry: %v", err)
	}
	if err := txn.set(tableMeta, []byte("version"), []byte("1")); err != nil {
		t.Fatalf("failed to set meta entry: %v", err)
	}
	if err := txn.commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	readTxn := s.begin(false)
	defer readTxn.rollback()

	v, err := readTxn.get(tableForest, []byte("hash-a"))
	if err != nil {
		t.Fatalf("failed to get forest entry: %v", err)
	}
	if !bytes.Equal(v, []byte("blob-a")) {
		t.Errorf("expected blob-a, got %q", v)
	}

	// A key present in one table must not leak into another sharing the
	// same raw bytes, since the table byte namespaces keys independently.
	if _, err := readTxn.get(tableMeta, []byte("hash-a")); err != errNotFound {
		t.Errorf("expected errNotFound for hash-a in meta table, got %v", err)
	}

	meta, err := readTxn.get(tableMeta, []byte("version"))
	if err != nil {
		t.Fatalf("failed to get meta entry: %v", err)
	}
	if string(meta) != "1" {
		t.Errorf("expected version 1, got %q", meta)
	}
}

func TestBadgerGetMissingKey(t *testing.T) {
	s, err := openBadgerStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.close()

	txn := s.begin(false)
	defer txn.rollback()

	if _, err := txn.get(tableForest, []byte("missing")); err != errNotFound {
		t.Errorf("expected errNotFound, got %v", err)
	}
}

func TestBadgerReadOnlyTransactionRejectsWrites(t *testing.T) {
	s, err := openBadgerStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer s.close()

	txn := s.begin(false)
	defer txn.rollback()

	if err := txn.set(tableForest, []byte("k"), []byte("v")); err != errTransactionRO {
		t.Errorf("expected errTransactionRO, got %v", err)
	}
}
