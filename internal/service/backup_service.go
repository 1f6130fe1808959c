package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tazhate/couplebot/internal/logger"
	"github.com/tazhate/couplebot/internal/storage"
)

// BackupFileName is the single backup copy kept in the backup dir
const BackupFileName = "couplebot-backup.db"

type BackupService struct {
	storage *storage.Storage
	dir     string
	logger  *logger.Logger
}

func NewBackupService(s *storage.Storage, dir string, log *logger.Logger) *BackupService {
	if log == nil {
		log = logger.Nop()
	}
	return &BackupService{storage: s, dir: dir, logger: log.WithComponent("backup")}
}

// Path returns where the backup is written
func (s *BackupService) Path() string {
	return filepath.Join(s.dir, BackupFileName)
}

// Backup overwrites the backup with a consistent copy of the live database
func (s *BackupService) Backup() (string, error) {
	dst := s.Path()
	if err := s.storage.BackupTo(dst); err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}
	s.logger.Infow("Database backed up", "path", dst)
	return dst, nil
}

// RestoreIfNeeded copies the backup into place when the database file is
// missing. It must run before the database is opened.
func RestoreIfNeeded(dbPath, backupDir string) (bool, error) {
	if _, err := os.Stat(dbPath); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat database: %w", err)
	}

	src, err := os.Open(filepath.Join(backupDir, BackupFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open backup: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return false, fmt.Errorf("create db dir: %w", err)
	}
	tmp := dbPath + ".restore"
	dst, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Errorf("create database: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return false, fmt.Errorf("copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return false, err
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		return false, fmt.Errorf("move restored database: %w", err)
	}
	return true, nil
}
