package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/nutridex/storage"
)

// Sequence lease size for catalog ID allocation.
const sequenceBandwidth = 100

// Backend wraps a BadgerDB instance shared by the catalog and cache
// repositories.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
	closed atomic.Bool
}

// slogBadgerLogger routes badger's internal logging through slog.
type slogBadgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogBadgerLogger)(nil)

func (l *slogBadgerLogger) Errorf(msg string, items ...any)   { l.logger.Error(fmt.Sprintf(msg, items...)) }
func (l *slogBadgerLogger) Warningf(msg string, items ...any) { l.logger.Warn(fmt.Sprintf(msg, items...)) }
func (l *slogBadgerLogger) Infof(msg string, items ...any)    { l.logger.Info(fmt.Sprintf(msg, items...)) }
func (l *slogBadgerLogger) Debugf(msg string, items ...any)   { l.logger.Debug(fmt.Sprintf(msg, items...)) }

// OpenBackend opens the catalog database at filePath, creating the
// directory when missing. With inMemory set the path is ignored and
// nothing touches disk.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &slogBadgerLogger{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, logger: slog.Default()}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the underlying database. Further transactions fail with
// storage.ErrStorageClosed. Closing twice is a no-op.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

// WithTx runs fn inside a badger transaction. The transaction is
// discarded when fn returns an error; committing is fn's job.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.closed.Load() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns a named badger sequence for ID allocation.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	if b.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	return b.db.GetSequence([]byte(name), sequenceBandwidth)
}

// WithTransaction satisfies the storage.Repository transaction contract.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
