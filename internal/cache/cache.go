// Package cache implements the content-addressed decode cache: a
// BadgerDB-backed side table keyed by the xxh3-128 hash of a raw BLT
// file's bytes, letting a caller skip re-reading an already-seen source
// without skipping the decode algorithm itself.
package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/aleksaelezovic/bltree/internal/blt"
	"github.com/zeebo/xxh3"
)

// schemaVersion guards the cache's own on-disk layout, independent of
// the BLT file format version gate in internal/blt.
const schemaVersion = "1"

var metaVersionKey = []byte("version")

// DecodeCache is a BadgerDB-backed content-addressed cache of raw BLT
// bytes, verified by a decode-then-reencode round trip before storage.
type DecodeCache struct {
	storage *badgerStorage
}

// Open opens (or creates) a decode cache at path.
func Open(path string) (*DecodeCache, error) {
	bs, err := openBadgerStorage(path)
	if err != nil {
		return nil, fmt.Errorf("open decode cache: %w", err)
	}
	c := &DecodeCache{storage: bs}
	if err := c.checkSchema(); err != nil {
		bs.close()
		return nil, err
	}
	return c, nil
}

func (c *DecodeCache) checkSchema() error {
	txn := c.storage.begin(true)
	defer txn.rollback()

	v, err := txn.get(tableMeta, metaVersionKey)
	if err == errNotFound {
		if err := txn.set(tableMeta, metaVersionKey, []byte(schemaVersion)); err != nil {
			return err
		}
		return txn.commit()
	}
	if err != nil {
		return err
	}
	if string(v) != schemaVersion {
		return fmt.Errorf("decode cache: incompatible schema %q, expected %q", v, schemaVersion)
	}
	return nil
}

// Hash computes the cache key for raw BLT file bytes.
func Hash(raw []byte) [16]byte {
	h := xxh3.Hash128(raw)
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], h.Hi)
	binary.BigEndian.PutUint64(out[8:16], h.Lo)
	return out
}

// Lookup returns the cached bytes for hash, if present.
func (c *DecodeCache) Lookup(hash [16]byte) ([]byte, bool, error) {
	txn := c.storage.begin(false)
	defer txn.rollback()

	v, err := txn.get(tableForest, hash[:])
	if err == errNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Store verifies raw by decoding it and re-encoding the result, then
// caches the re-encoded bytes under hash. A corrupt or truncated entry
// therefore can never enter the cache, since it fails the round trip
// before the transaction is opened.
func (c *DecodeCache) Store(hash [16]byte, raw []byte) error {
	nodes, err := blt.Decode(bytes.NewReader(raw), "", nil)
	if err != nil {
		return fmt.Errorf("decode cache: verify round trip: %w", err)
	}
	var buf bytes.Buffer
	if err := blt.Encode(&buf, nodes, nil); err != nil {
		return fmt.Errorf("decode cache: re-encode for verification: %w", err)
	}

	txn := c.storage.begin(true)
	defer txn.rollback()

	if err := txn.set(tableForest, hash[:], buf.Bytes()); err != nil {
		return err
	}
	return txn.commit()
}

// Close releases the underlying database.
func (c *DecodeCache) Close() error {
	return c.storage.close()
}
