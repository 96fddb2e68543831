// Package boltstore implements the OAuth2 repositories on an embedded bbolt file.
//
// Records are JSON values in one top-level bucket per record type. Secondary
// lookups live in index buckets whose keys are indexValue+"\x00"+recordID with
// empty values, scanned by prefix. Index entries are written in the same
// transaction as the record they point to.
package boltstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	apperrors "github.com/manorfm/tokenstore/internal/domain/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	// top level buckets
	clientsBucketName             = "clients"
	codesBucketName               = "codes"
	accessTokensBucketName        = "access_tokens"
	accessByAuthBucketName        = "access_by_auth"
	accessByClientBucketName      = "access_by_client"
	accessByClientUserBucketName  = "access_by_client_user"
	accessByRefreshBucketName     = "access_by_refresh"
	refreshTokensBucketName       = "refresh_tokens"
	partnerTokensBucketName       = "partner_tokens"
	partnerTokensByAuthBucketName = "partner_tokens_by_auth"
	partnersBucketName            = "partners"
)

const sep = "\x00"

// Store is an open bbolt database holding every repository's buckets
type Store struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open opens or creates the database file at path and makes the top level buckets
func Open(path string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	topBuckets := []string{clientsBucketName, codesBucketName, accessTokensBucketName, accessByAuthBucketName,
		accessByClientBucketName, accessByClientUserBucketName, accessByRefreshBucketName, refreshTokensBucketName,
		partnerTokensBucketName, partnerTokensByAuthBucketName, partnersBucketName}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bktName := range topBuckets {
			if _, e := tx.CreateBucketIfNotExists([]byte(bktName)); e != nil {
				return fmt.Errorf("failed to create top level bucket %s: %w", bktName, e)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("bolt store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Repositories returns every repository backed by this store
func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{
		Clients:       &ClientRepository{s},
		Codes:         &AuthorizationCodeRepository{s},
		AccessTokens:  &AccessTokenRepository{s},
		RefreshTokens: &RefreshTokenRepository{s},
		PartnerTokens: &PartnerTokenRepository{s},
		Partners:      &PartnerRepository{s},
	}
}

// Close closes the database file
func (s *Store) Close() error {
	return s.db.Close()
}

// update runs fn in a read-write transaction, classifying unexpected failures as internal
func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	return classify(s.db.Update(fn))
}

// view runs fn in a read-only transaction, classifying unexpected failures as internal
func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	return classify(s.db.View(fn))
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.WrapInternal(err)
}

// save serializes value to json and puts it under key
func save(bkt *bolt.Bucket, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return domain.WrapInternal(err)
	}
	if err := bkt.Put([]byte(key), data); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

// load reads key and decodes it into res, reporting false when the key is absent
func load(bkt *bolt.Bucket, key string, res interface{}) (bool, error) {
	value := bkt.Get([]byte(key))
	if value == nil {
		return false, nil
	}
	if err := json.Unmarshal(value, res); err != nil {
		return false, domain.WrapInternal(err)
	}
	return true, nil
}

func indexKey(id string, values ...string) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		buf.WriteString(v)
		buf.WriteString(sep)
	}
	buf.WriteString(id)
	return buf.Bytes()
}

func indexPrefix(values ...string) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		buf.WriteString(v)
		buf.WriteString(sep)
	}
	return buf.Bytes()
}

// scanIndex returns the record ids listed under prefix
func scanIndex(bkt *bolt.Bucket, prefix []byte) []string {
	var ids []string
	c := bkt.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		ids = append(ids, string(k[len(prefix):]))
	}
	return ids
}
