package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/studiopipe/studiopipe/internal/domain"
	"github.com/studiopipe/studiopipe/internal/ports"
	"github.com/studiopipe/studiopipe/internal/xjson"
)

const (
	resultPrefix     = "result:"
	comparisonPrefix = "abtest:"
)

// BadgerArchive is a local, single-writer index of terminal workflow values.
// The engine's history remains the source of truth; this exists so operators
// can inspect results without replaying workflows.
type BadgerArchive struct {
	db     *badger.DB
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ ports.ResultArchive = (*BadgerArchive)(nil)

func Open(dir string, logger *slog.Logger) (*BadgerArchive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening archive at %s: %w", dir, err)
	}
	return &BadgerArchive{
		db:     db,
		logger: logger.With("component", "result-archive"),
	}, nil
}

func (a *BadgerArchive) PutResult(workflowID string, res domain.PipelineResult) error {
	rec := ports.ArchivedResult{
		WorkflowID: workflowID,
		Result:     res,
		ArchivedAt: time.Now().UTC(),
	}
	return a.put(resultPrefix+workflowID, rec)
}

func (a *BadgerArchive) GetResult(workflowID string) (*ports.ArchivedResult, bool, error) {
	var rec ports.ArchivedResult
	found, err := a.get(resultPrefix+workflowID, &rec)
	if err != nil || !found {
		return nil, false, err
	}
	return &rec, true, nil
}

func (a *BadgerArchive) ListResults() ([]ports.ArchivedResult, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	var out []ports.ArchivedResult
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(resultPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec ports.ArchivedResult
			err := it.Item().Value(func(val []byte) error {
				return xjson.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (a *BadgerArchive) PutComparison(testID string, cmp domain.Comparison) error {
	rec := ports.ArchivedComparison{
		TestID:     testID,
		Comparison: cmp,
		ArchivedAt: time.Now().UTC(),
	}
	return a.put(comparisonPrefix+testID, rec)
}

func (a *BadgerArchive) GetComparison(testID string) (*ports.ArchivedComparison, bool, error) {
	var rec ports.ArchivedComparison
	found, err := a.get(comparisonPrefix+testID, &rec)
	if err != nil || !found {
		return nil, false, err
	}
	return &rec, true, nil
}

func (a *BadgerArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

func (a *BadgerArchive) put(key string, rec any) error {
	if err := a.ensureOpen(); err != nil {
		return err
	}
	data, err := xjson.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding archive record %s: %w", key, err)
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (a *BadgerArchive) get(key string, rec any) (bool, error) {
	if err := a.ensureOpen(); err != nil {
		return false, err
	}
	found := false
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return xjson.Unmarshal(val, rec)
		})
	})
	return found, err
}

func (a *BadgerArchive) ensureOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return domain.ErrClosed
	}
	return nil
}
