package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// Document is one named JSON document.
type Document struct {
	Name      string         `gorm:"primaryKey;size:128" json:"name"`
	Body      datatypes.JSON `gorm:"not null" json:"body"`
	Version   int64          `gorm:"not null;default:1" json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

type GormStore struct {
	db   *gorm.DB
	log  *logger.Logger
	opts Options
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, log *logger.Logger, opts Options) *GormStore {
	if log == nil {
		log = logger.Nop()
	}
	return &GormStore{db: db, log: log.With("component", "GormDocStore"), opts: opts.withDefaults()}
}

func (s *GormStore) Snapshot(ctx context.Context, names ...string) (*Snapshot, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}
	var rows []Document
	// a single statement sees one committed state
	if err := s.db.WithContext(ctx).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	snap := newSnapshot()
	for _, r := range rows {
		snap.set(r.Name, []byte(r.Body), r.Version)
	}
	return snap, nil
}

func (s *GormStore) Update(ctx context.Context, names []string, fn func(tx *Txn) error) error {
	if err := validateNames(names); err != nil {
		return err
	}
	return s.opts.retry(ctx, func() error {
		err := s.attempt(ctx, names, fn)
		if errors.Is(err, ErrConflict) {
			s.log.Debug("document conflict, retrying", "documents", names)
		}
		return err
	})
}

func (s *GormStore) attempt(ctx context.Context, names []string, fn func(tx *Txn) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var rows []Document
		if err := db.Where("name IN ?", names).Find(&rows).Error; err != nil {
			return err
		}
		txn := newTxn(names)
		for _, r := range rows {
			txn.load(r.Name, []byte(r.Body), r.Version)
		}
		if err := fn(txn); err != nil {
			return err
		}
		if !txn.dirty() {
			return nil
		}
		now := time.Now().UTC()
		for _, c := range txn.changes() {
			if err := s.commitOne(db, c, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) commitOne(db *gorm.DB, c change, now time.Time) error {
	switch {
	case c.dirty && !c.exists:
		err := db.Create(&Document{Name: c.name, Body: datatypes.JSON(c.body), Version: 1, UpdatedAt: now}).Error
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s created concurrently", ErrConflict, c.name)
		}
		return err
	case c.dirty:
		res := db.Model(&Document{}).
			Where("name = ? AND version = ?", c.name, c.version).
			Updates(map[string]any{
				"body":       datatypes.JSON(c.body),
				"version":    c.version + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s moved past version %d", ErrConflict, c.name, c.version)
		}
		return nil
	case c.exists:
		// read-only member: lock it at the version we saw
		res := db.Model(&Document{}).
			Where("name = ? AND version = ?", c.name, c.version).
			UpdateColumn("version", gorm.Expr("version"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s moved past version %d", ErrConflict, c.name, c.version)
		}
		return nil
	default:
		var n int64
		if err := db.Model(&Document{}).Where("name = ?", c.name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s created concurrently", ErrConflict, c.name)
		}
		return nil
	}
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
