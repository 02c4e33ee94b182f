package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	bolt "go.etcd.io/bbolt"
)

const (
	runsBktName    = "runs"
	recordsBktName = "records"
)

// Bolt is an archive of runs that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "runs.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{runsBktName, recordsBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put puts the run to storage, records are kept in a nested bucket
// in the order they were collected.
func (b *Bolt) Put(_ context.Context, r Run) error {
	records := r.Records
	r.Records = nil
	r.Total = len(records)

	err := b.db.Update(func(tx *bolt.Tx) error {
		bts, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}

		if err = tx.Bucket([]byte(runsBktName)).Put([]byte(r.ID), bts); err != nil {
			return fmt.Errorf("put run to storage: %w", err)
		}

		parent := tx.Bucket([]byte(recordsBktName))
		if parent.Bucket([]byte(r.ID)) != nil {
			if err = parent.DeleteBucket([]byte(r.ID)); err != nil {
				return fmt.Errorf("drop previous records: %w", err)
			}
		}

		bkt, err := parent.CreateBucket([]byte(r.ID))
		if err != nil {
			return fmt.Errorf("create records bucket: %w", err)
		}

		for i, rec := range records {
			bts, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal record %d: %w", i, err)
			}

			if err = bkt.Put(itob(uint64(i)), bts); err != nil {
				return fmt.Errorf("put record %d: %w", i, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Get returns the run with all its records.
func (b *Bolt) Get(_ context.Context, id string) (r Run, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bts := tx.Bucket([]byte(runsBktName)).Get([]byte(id))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &r); err != nil {
			return fmt.Errorf("unmarshal run: %w", err)
		}

		if r.Records, err = loadRecords(tx, id); err != nil {
			return fmt.Errorf("load records: %w", err)
		}

		return nil
	})
	if err != nil {
		return Run{}, fmt.Errorf("view storage: %w", err)
	}

	return r, nil
}

// List returns all runs from storage, oldest first.
func (b *Bolt) List(_ context.Context, req ListRequest) ([]Run, error) {
	var result []Run
	err := b.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(runsBktName)).ForEach(func(k, v []byte) error {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal run %s: %w", k, err)
			}

			if req.WithRecords {
				var err error
				if r.Records, err = loadRecords(tx, r.ID); err != nil {
					return fmt.Errorf("load records of %s: %w", k, err)
				}
			}

			result = append(result, r)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})

	return result, nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }

func loadRecords(tx *bolt.Tx, id string) ([]ArticleRecord, error) {
	bkt := tx.Bucket([]byte(recordsBktName)).Bucket([]byte(id))
	if bkt == nil {
		return nil, nil
	}

	var res []ArticleRecord
	err := bkt.ForEach(func(k, v []byte) error {
		var rec ArticleRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("unmarshal record %d: %w", binary.BigEndian.Uint64(k), err)
		}
		res = append(res, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("foreach: %w", err)
	}

	return res, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
