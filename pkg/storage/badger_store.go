package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/log"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

const (
	runKeyPrefix     = "run:"     // run:<runID> -> RunRecord JSON
	contactKeyPrefix = "contact:" // contact:<runID>:<seq> -> Contact JSON
	runsDBDir        = "runs_db"  // Subdirectory within stateDir for Badger files
)

// BadgerStore implements ContactStore on BadgerDB. One store holds every
// run; runs from different sites share the database.
type BadgerStore struct {
	db       *badger.DB
	log      *logrus.Entry
	keyCount atomic.Int64 // Cached key count, maintained on writes
}

// NewBadgerStore opens (or creates) the run database under stateDir.
func NewBadgerStore(stateDir string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(stateDir, runsDBDir)
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %w", utils.ErrFilesystem, dbPath, err)
	}

	logger.Infof("Initializing run database at: %s", dbPath)

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %s: %w", utils.ErrDatabase, dbPath, err)
	}

	store := &BadgerStore{db: db, log: logger}
	if count, err := store.countKeys(); err != nil {
		logger.Warnf("Failed to count existing keys: %v", err)
	} else {
		store.keyCount.Store(int64(count))
	}

	logger.Info("Run database initialized")
	return store, nil
}

// countKeys performs a one-time full key scan during initialization.
func (s *BadgerStore) countKeys() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for transaction conflicts.
// Concurrent MVCC transactions on overlapping keys can return
// badger.ErrConflict; these resolve in microseconds, so a tight retry loop
// is sufficient.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// SaveRun implements ContactStore.
func (s *BadgerStore) SaveRun(record *models.RunRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("%w: run record requires an ID", utils.ErrDatabase)
	}
	record.UpdatedAt = time.Now().UTC()

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: marshaling run '%s': %w", utils.ErrParsing, record.ID, err)
	}

	key := []byte(runKeyPrefix + record.ID)
	isNew := false
	err = s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			isNew = true
		}
		return txn.SetEntry(badger.NewEntry(key, value))
	})
	if err != nil {
		return fmt.Errorf("%w: saving run '%s': %w", utils.ErrDatabase, record.ID, err)
	}
	if isNew {
		s.keyCount.Add(1)
	}
	s.log.WithFields(logrus.Fields{"run_id": record.ID, "status": record.Status}).Debug("Run record saved")
	return nil
}

// UpdateRunStatus implements ContactStore.
func (s *BadgerStore) UpdateRunStatus(runID string, status models.RunStatus) error {
	record, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: unknown run '%s'", utils.ErrDatabase, runID)
	}
	record.Status = status
	return s.SaveRun(record)
}

// GetRun implements ContactStore.
func (s *BadgerStore) GetRun(runID string) (*models.RunRecord, error) {
	key := []byte(runKeyPrefix + runID)
	var record *models.RunRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return errGet
		}
		return item.Value(func(val []byte) error {
			var decoded models.RunRecord
			if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
				return fmt.Errorf("unmarshaling run '%s': %w", runID, errJSON)
			}
			record = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getting run '%s': %w", utils.ErrDatabase, runID, err)
	}
	return record, nil
}

// ListRuns implements ContactStore.
func (s *BadgerStore) ListRuns() ([]models.RunRecord, error) {
	var runs []models.RunRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			errVal := it.Item().Value(func(val []byte) error {
				var decoded models.RunRecord
				if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
					s.log.Warnf("Skipping undecodable run record '%s': %v", string(it.Item().Key()), errJSON)
					return nil
				}
				runs = append(runs, decoded)
				return nil
			})
			if errVal != nil {
				return errVal
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing runs: %w", utils.ErrDatabase, err)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].UpdatedAt.After(runs[j].UpdatedAt) })
	return runs, nil
}

// AppendContacts implements ContactStore. Sequence numbers continue from the
// run's current contact count so repeated appends preserve order.
func (s *BadgerStore) AppendContacts(runID string, contacts []models.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	existing, err := s.contactCount(runID)
	if err != nil {
		return err
	}

	err = s.dbUpdate(func(txn *badger.Txn) error {
		for i, contact := range contacts {
			value, errJSON := json.Marshal(contact)
			if errJSON != nil {
				return fmt.Errorf("marshaling contact '%s': %w", contact.Email, errJSON)
			}
			key := []byte(fmt.Sprintf("%s%s:%08d", contactKeyPrefix, runID, existing+i))
			if errSet := txn.SetEntry(badger.NewEntry(key, value)); errSet != nil {
				return errSet
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: appending %d contacts to run '%s': %w", utils.ErrDatabase, len(contacts), runID, err)
	}

	s.keyCount.Add(int64(len(contacts)))
	s.log.WithFields(logrus.Fields{"run_id": runID, "count": len(contacts)}).Debug("Contacts appended")
	return nil
}

// GetRunContacts implements ContactStore.
func (s *BadgerStore) GetRunContacts(runID string) ([]models.Contact, error) {
	var contacts []models.Contact

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contactKeyPrefix + runID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			errVal := it.Item().Value(func(val []byte) error {
				var decoded models.Contact
				if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
					s.log.Warnf("Skipping undecodable contact '%s': %v", string(it.Item().Key()), errJSON)
					return nil
				}
				contacts = append(contacts, decoded)
				return nil
			})
			if errVal != nil {
				return errVal
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getting contacts for run '%s': %w", utils.ErrDatabase, runID, err)
	}
	return contacts, nil
}

// contactCount counts a run's stored contacts without fetching values.
func (s *BadgerStore) contactCount(runID string) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contactKeyPrefix + runID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting contacts for run '%s': %w", utils.ErrDatabase, runID, err)
	}
	return count, nil
}

// KeyCount returns the cached total key count (O(1)).
func (s *BadgerStore) KeyCount() int {
	return int(s.keyCount.Load())
}

// RunGC runs BadgerDB's value-log garbage collection periodically.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("BadgerDB GC goroutine started")

	for {
		select {
		case <-ticker.C:
			if s.db == nil || s.db.IsClosed() {
				continue
			}
			var err error
			for {
				// Collect when at least 50% of a value log is reclaimable
				err = s.db.RunValueLogGC(0.5)
				if err != nil {
					break
				}
			}
			if errors.Is(err, badger.ErrNoRewrite) {
				s.log.Debug("BadgerDB GC finished (no rewrite needed)")
			} else {
				s.log.Errorf("BadgerDB GC error: %v", err)
			}

		case <-ctx.Done():
			s.log.Infof("Stopping BadgerDB garbage collection: %v", ctx.Err())
			return
		}
	}
}

// Close implements ContactStore.
func (s *BadgerStore) Close() error {
	if s.db != nil && !s.db.IsClosed() {
		s.log.Info("Closing run database...")
		if err := s.db.Close(); err != nil {
			s.log.Errorf("Error closing run database: %v", err)
			return err
		}
		s.log.Info("Run database closed")
		return nil
	}
	return nil
}
