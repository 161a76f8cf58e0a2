package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"jotjot/internal/domain"
)

// gcDiscardRatio is the value log rewrite threshold recommended by Badger.
const gcDiscardRatio = 0.7

// BadgerStore implements ContentStore using an embedded BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerStore opens the database at the specified path.
func NewBadgerStore(dbPath string, logger logrus.FieldLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened")

	return &BadgerStore{
		db:  db,
		log: logger.WithField("component", "store"),
	}, nil
}

// Close closes the BadgerDB database.
func (s *BadgerStore) Close() error {
	s.log.Info("Closing BadgerDB...")
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	s.log.Info("BadgerDB closed.")
	return nil
}

// Create stores content under jot:{id} unless a live entry already exists.
// The existence check and the write share one transaction, so two racing
// writers for the same key cannot both succeed.
func (s *BadgerStore) Create(ctx context.Context, id string, content string, ttl time.Duration) error {
	log := s.log.WithField("id", id)
	key := []byte(domain.ShareKey(id))

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return domain.ErrConflict
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, []byte(content)).WithTTL(ttl))
	})
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, badger.ErrConflict) {
		log.Warn("Share key already taken")
		return fmt.Errorf("create share %s: %w", id, domain.ErrConflict)
	}
	if err != nil {
		log.WithError(err).Error("Failed to write share to BadgerDB")
		return fmt.Errorf("failed to save share %s: %w", id, err)
	}

	log.WithField("ttl", ttl.String()).Debug("Share saved")
	return nil
}

// Get retrieves the content stored under jot:{id}.
func (s *BadgerStore) Get(ctx context.Context, id string) (string, error) {
	var content []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(domain.ShareKey(id)))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("get share %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Failed to read share from BadgerDB")
		return "", fmt.Errorf("failed to get share %s: %w", id, err)
	}

	return string(content), nil
}

// RunGC reclaims value log space every interval until ctx is cancelled.
// Expired shares are dropped by compaction; this only rewrites the value log.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := s.db.RunValueLogGC(gcDiscardRatio)
			switch {
			case err == nil:
				s.log.Info("BadgerDB GC completed")
			case errors.Is(err, badger.ErrNoRewrite):
				s.log.Debug("BadgerDB GC: no rewrite needed")
			case errors.Is(err, badger.ErrRejected):
				s.log.Info("Stopping BadgerDB GC routine, database closed")
				return
			default:
				s.log.WithError(err).Error("BadgerDB GC failed")
			}
		case <-ctx.Done():
			s.log.Info("Stopping BadgerDB GC routine")
			return
		}
	}
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
