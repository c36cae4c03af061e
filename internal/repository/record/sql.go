package record

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/ncruces/go-sqlite3"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"

	// Embed the SQLite WebAssembly build used by gormlite.
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLRepository keeps the Version Record and update history in a SQL database.
type SQLRepository struct {
	// db is the gorm handle bound to the configured dialect.
	db *gorm.DB
}

// errUnknownDriver is returned for an unsupported SQL driver.
var errUnknownDriver = errors.New("unknown sql driver")

// OpenSQL connects to the configured database and migrates the schema.
func OpenSQL(ctx context.Context, cfg *config.StoreConfig) (*SQLRepository, error) {
	dialector, err := newDialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	sqlLevel, _ := logger.ParseLogLevel(cfg.SQLLogLevel)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(logger.GormConfig{
			Level:                     sqlLevel,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, release.NewStoreError(release.ErrConnection, "connect to "+cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer; one connection avoids "database is locked".
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, release.NewStoreError(release.ErrConnection, "open sqlite pool", dbErr)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	repo := NewSQLRepository(db)
	if err = repo.Migrate(ctx); err != nil {
		_ = repo.Close()

		return nil, err
	}

	logger.DebugKV(ctx, "Version store ready", "driver", cfg.Driver)

	return repo, nil
}

// NewSQLRepository wraps an existing gorm handle.
func NewSQLRepository(db *gorm.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Migrate creates or updates the tables used by the repository.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&SystemSetting{}, &UpdateHistory{}); err != nil {
		return classify("migrate schema", err)
	}

	return nil
}

// Current returns the installed version.
func (r *SQLRepository) Current(ctx context.Context) (*release.Record, error) {
	var setting SystemSetting

	err := r.db.WithContext(ctx).
		Where(&SystemSetting{Name: release.SettingKey}).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, classify("get setting", err)
	}

	return setting.ToRecord(), nil
}

// SetCurrent gets or creates the setting row and overwrites its value in one transaction.
func (r *SQLRepository) SetCurrent(ctx context.Context, version string) (*release.Record, error) {
	var setting SystemSetting

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&SystemSetting{Name: release.SettingKey}).FirstOrCreate(&setting).Error; err != nil {
			return classify("get or create setting", err)
		}

		setting.Value = version

		if err := tx.Save(&setting).Error; err != nil {
			return classify("save setting", err)
		}

		return nil
	})
	if err != nil {
		if release.KindOf(err) == nil {
			return nil, classify("commit setting", err)
		}

		return nil, err
	}

	return setting.ToRecord(), nil
}

// AppendHistory stores the outcome of one step.
func (r *SQLRepository) AppendHistory(ctx context.Context, entry *release.HistoryEntry) error {
	if err := r.db.WithContext(ctx).Create(NewUpdateHistory(entry)).Error; err != nil {
		return classify("append history", err)
	}

	return nil
}

// History returns up to limit entries, newest first.
func (r *SQLRepository) History(ctx context.Context, limit int) ([]*release.HistoryEntry, error) {
	var rows []UpdateHistory

	query := r.db.WithContext(ctx).Order("applied_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, classify("list history", err)
	}

	entries := make([]*release.HistoryEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToEntry())
	}

	return entries, nil
}

// Close releases the connection pool.
func (r *SQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// newDialector selects the gorm dialect for the configured driver.
//
//nolint:ireturn // gorm.Open takes the interface.
func newDialector(driverName, dsn string) (gorm.Dialector, error) {
	switch driverName {
	case "sqlite":
		return gormlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, driverName)
	}
}

// classify wraps err into a StoreError of the matching kind.
func classify(op string, err error) error {
	return release.NewStoreError(errorKind(err), op, err)
}

// errorKind maps driver errors to the closed set of store error kinds.
func errorKind(err error) error {
	var netErr net.Error

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, sqlite3.CONSTRAINT):
		return release.ErrConstraint
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, sqlite3.CANTOPEN),
		errors.As(err, &netErr):
		return release.ErrConnection
	default:
		return release.ErrPersistence
	}
}
