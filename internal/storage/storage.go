// FILE: internal/storage/storage.go
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	writeQueueSize = 1000
	drainTimeout   = 2 * time.Second
)

// writeJob is one queued transactional write
type writeJob struct {
	what  string
	apply func(*sql.Tx) error
}

// Store persists game history in SQLite. Writes are queued and applied in
// order by a single writer goroutine; reads go straight to the pool. The
// first failed write marks the store degraded and later writes are dropped.
type Store struct {
	db      *sql.DB
	path    string
	jobs    chan writeJob
	done    chan struct{}
	healthy atomic.Bool
	dropped atomic.Int64

	mu     sync.RWMutex // guards closed against enqueue
	closed bool
	once   sync.Once
	err    error
}

// dsn adds connection parameters so every pooled connection enforces
// foreign keys, and WAL journaling in development
func dsn(path string, devMode bool) string {
	params := []string{"_foreign_keys=on", "_busy_timeout=5000"}
	if devMode {
		params = append(params, "_journal_mode=WAL")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// NewStore opens the database at path and starts the writer
func NewStore(path string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path, devMode))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	s := &Store{
		db:   db,
		path: path,
		jobs: make(chan writeJob, writeQueueSize),
		done: make(chan struct{}),
	}
	s.healthy.Store(true)

	go s.writer()
	return s, nil
}

// IsHealthy reports whether every write so far has committed
func (s *Store) IsHealthy() bool {
	return s.healthy.Load()
}

// Dropped returns the number of writes discarded because the store was
// degraded, closed or its queue was full
func (s *Store) Dropped() int64 {
	return s.dropped.Load()
}

// enqueue hands a write to the writer. It never blocks and never fails:
// persistence problems surface through IsHealthy.
func (s *Store) enqueue(what string, apply func(*sql.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || !s.healthy.Load() {
		s.dropped.Add(1)
		return nil
	}

	select {
	case s.jobs <- writeJob{what: what, apply: apply}:
	default:
		s.dropped.Add(1)
		log.Printf("Storage write queue full, dropping %s", what)
	}
	return nil
}

func (s *Store) writer() {
	defer close(s.done)

	for job := range s.jobs {
		if !s.healthy.Load() {
			s.dropped.Add(1)
			continue
		}
		if err := s.commit(job.apply); err != nil {
			log.Printf("Storage degraded: %s failed: %v", job.what, err)
			s.healthy.Store(false)
		}
	}
}

func (s *Store) commit(apply func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := apply(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close stops accepting writes, applies what is queued and closes the
// database. Safe to call more than once.
func (s *Store) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.jobs)
		s.mu.Unlock()

		var errs []error
		select {
		case <-s.done:
		case <-time.After(drainTimeout):
			errs = append(errs, fmt.Errorf("write queue not drained within %v", drainTimeout))
		}
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

// InitDB creates the tables and indexes when missing
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return tx.Commit()
}

// DeleteDB closes the store and removes the database file with its WAL
// side files
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete database file: %w", err)
		}
	}
	return nil
}
