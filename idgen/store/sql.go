package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/connector"
	"github.com/ceyewan/blockseq/xerrors"
)

// seedRecord 每个 scope 一行，version 列作为版本令牌
type seedRecord struct {
	Scope     string `gorm:"column:scope;primaryKey;size:191"`
	Seed      string `gorm:"column:seed;size:32;not null"`
	Version   int64  `gorm:"column:version;not null"`
	UpdatedAt time.Time
}

// sqlStore 基于 GORM，兼容 MySQL / PostgreSQL / SQLite
type sqlStore struct {
	db     connector.DBConnector
	cfg    *Config
	logger clog.Logger
	known  *knownScopes

	mu       sync.Mutex
	migrated bool
}

func newSQLStore(cfg *Config, conn connector.DBConnector, logger clog.Logger) (Store, error) {
	known, err := newKnownScopes(cfg.CacheSize)
	if err != nil {
		return nil, xerrors.Wrap(err, "create scope cache")
	}
	return &sqlStore{db: conn, cfg: cfg, logger: logger, known: known}, nil
}

// table 首次使用时执行 AutoMigrate
func (s *sqlStore) table(ctx context.Context) (*gorm.DB, error) {
	db := s.db.GetClient()
	if db == nil {
		return nil, xerrors.Wrap(connector.ErrNotConnected, "sql store")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.migrated {
		if err := db.WithContext(ctx).Table(s.cfg.Table).AutoMigrate(&seedRecord{}); err != nil {
			return nil, xerrors.Wrapf(err, "migrate table %s", s.cfg.Table)
		}
		s.migrated = true
		s.logger.Info("seed table ready", clog.String("table", s.cfg.Table))
	}
	return db.WithContext(ctx).Table(s.cfg.Table), nil
}

func (s *sqlStore) Read(ctx context.Context, scope string) (string, Version, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	tx, err := s.table(ctx)
	if err != nil {
		return "", NoVersion, err
	}

	if !s.known.has(scope) {
		if err := s.create(tx.Session(&gorm.Session{}), scope); err != nil {
			return "", NoVersion, err
		}
	}

	var rec seedRecord
	err = tx.Session(&gorm.Session{}).Where("scope = ?", scope).Take(&rec).Error
	if xerrors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.create(tx.Session(&gorm.Session{}), scope); err != nil {
			return "", NoVersion, err
		}
		err = tx.Session(&gorm.Session{}).Where("scope = ?", scope).Take(&rec).Error
	}
	if err != nil {
		return "", NoVersion, err
	}
	return rec.Seed, Version(strconv.FormatInt(rec.Version, 10)), nil
}

// create 插入初始种子，主键冲突视为创建竞争失败，同样返回成功
func (s *sqlStore) create(tx *gorm.DB, scope string) error {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedRecord{
		Scope:     scope,
		Seed:      InitialSeed,
		Version:   1,
		UpdatedAt: time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		s.logger.Debug("scope created", clog.String("scope", scope))
	}
	s.known.add(scope)
	return nil
}

func (s *sqlStore) ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	tx, err := s.table(ctx)
	if err != nil {
		return false, err
	}

	if expected == NoVersion {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedRecord{
			Scope:     scope,
			Seed:      value,
			Version:   1,
			UpdatedAt: time.Now(),
		})
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected == 1, nil
	}

	version, err := parseRevision(expected)
	if err != nil {
		return false, err
	}
	res := tx.Where("scope = ? AND version = ?", scope, version).Updates(map[string]any{
		"seed":       value,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
