package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// BoltRepository stores one JSON snapshot per chat in a bbolt file.
type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(path string) (*BoltRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) LoadAll() ([]Session, error) {
	var out []Session
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(k, v []byte) error {
			var s Session
			if err := json.Unmarshal(v, &s); err != nil {
				// skip malformed entries instead of failing the whole load
				return nil
			}
			out = append(out, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return out, nil
}

func (r *BoltRepository) Upsert(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(chatKey(s.ChatID), data)
	})
}

func (r *BoltRepository) Remove(chatID int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(chatKey(chatID))
	})
}

func (r *BoltRepository) Close() error { return r.db.Close() }

func chatKey(chatID int64) []byte {
	return []byte(strconv.FormatInt(chatID, 10))
}
