// Package backup produces PostgreSQL dumps and ships them to object storage.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ObjectStore stores and lists backup artifacts
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]StoredObject, error)
}

// StoredObject describes one artifact in the object store
type StoredObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Service orchestrates a database dump and its upload
type Service struct {
	cfg      config.BackupConfig
	database config.DatabaseConfig
	store    ObjectStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new backup service
func NewService(cfg config.BackupConfig, database config.DatabaseConfig, store ObjectStore, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		database: database,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the reference clock, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run dumps the database with pg_dump and uploads the artifact.
// Returns the object key of the stored backup.
func (s *Service) Run(ctx context.Context) (string, error) {
	if !s.cfg.Enabled {
		return "", fmt.Errorf("backups are disabled")
	}

	key := path.Join(s.cfg.Prefix, fmt.Sprintf("%s-%s.sql", s.database.DBName, s.now().UTC().Format("20060102T150405Z")))

	dump, err := s.dump(ctx)
	if err != nil {
		return "", err
	}

	if err := s.store.Upload(ctx, key, bytes.NewReader(dump)); err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	s.logger.Info("database backup stored",
		zap.String("key", key),
		zap.Int("bytes", len(dump)),
	)

	return key, nil
}

// List returns the stored backup artifacts under the configured prefix.
func (s *Service) List(ctx context.Context) ([]StoredObject, error) {
	objects, err := s.store.List(ctx, s.cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return objects, nil
}

func (s *Service) dump(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.cfg.PgDumpPath,
		"--dbname="+s.database.DSN(),
		"--no-owner",
		"--no-privileges",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pg_dump failed: %w: %s", err, stderr.String())
	}

	return stdout.Bytes(), nil
}
