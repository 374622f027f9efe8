package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/pkg/logger"
	"github.com/okian/dfspersona/pkg/metrics"
)

// profileRow is the relational shape of a UserProfile. Structured parts are
// JSON columns holding the model's own JSON encoding.
type profileRow struct {
	ID             string          `gorm:"column:id;type:varchar(36);primaryKey"`
	CreatedAt      time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;not null;index"`
	TotalEntries   int             `gorm:"column:total_entries;not null"`
	DateRangeStart time.Time       `gorm:"column:date_range_start"`
	DateRangeEnd   time.Time       `gorm:"column:date_range_end"`
	Platforms      datatypes.JSON  `gorm:"column:platforms"`
	Metrics        datatypes.JSON  `gorm:"column:behavioral_metrics"`
	Personas       datatypes.JSON  `gorm:"column:persona_scores"`
	Weights        datatypes.JSON  `gorm:"column:pattern_weights"`
	LastUpload     time.Time       `gorm:"column:last_csv_upload"`
	Confidence     decimal.Decimal `gorm:"column:confidence_score;type:varchar(16)"`
}

func (profileRow) TableName() string { return "user_profiles" }

// upsertColumns are rewritten when a profile id already exists.
var upsertColumns = []string{ //nolint:gochecknoglobals // column list
	"updated_at",
	"total_entries",
	"date_range_start",
	"date_range_end",
	"platforms",
	"behavioral_metrics",
	"persona_scores",
	"pattern_weights",
	"last_csv_upload",
	"confidence_score",
}

// GormStore persists profiles in SQLite or PostgreSQL.
type GormStore struct {
	db     *gorm.DB
	opts   storeOptions
	closed atomic.Bool
}

var _ Store = (*GormStore)(nil)

// NewGormStore connects to driver ("sqlite" or "postgres") at dsn.
// Call Init before use, or use Open.
func NewGormStore(driver, dsn string, opts ...Option) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return NewGormStoreFromDB(db, opts...), nil
}

// NewGormStoreFromDB wraps an existing connection.
func NewGormStoreFromDB(db *gorm.DB, opts ...Option) *GormStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &GormStore{db: db, opts: o}
}

func (s *GormStore) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&profileRow{}); err != nil {
		return fmt.Errorf("migrate user_profiles: %w", err)
	}
	s.opts.log.Info(ctx, "profile schema ready", logger.String("dialect", s.db.Name()))
	return nil
}

func (s *GormStore) Save(ctx context.Context, p *model.UserProfile) (err error) {
	defer func(start time.Time) { observe("save", start, err) }(time.Now())
	if s.closed.Load() {
		return ErrStoreClosed
	}

	var created time.Time
	if p.ID != uuid.Nil {
		var existing profileRow
		res := s.db.WithContext(ctx).Select("created_at").Limit(1).Find(&existing, "id = ?", p.ID.String())
		if res.Error != nil {
			return fmt.Errorf("lookup profile %s: %w", p.ID, res.Error)
		}
		if res.RowsAffected > 0 {
			created = existing.CreatedAt
		}
	}
	stamp(p, s.opts.now(), created)

	row, err := toRow(p)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	s.refreshCount(ctx)
	return nil
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (p model.UserProfile, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())
	if s.closed.Load() {
		return model.UserProfile{}, ErrStoreClosed
	}

	var row profileRow
	err = s.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return fromRow(row)
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) (existed bool, err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())
	if s.closed.Load() {
		return false, ErrStoreClosed
	}

	res := s.db.WithContext(ctx).Delete(&profileRow{}, "id = ?", id.String())
	if res.Error != nil {
		return false, fmt.Errorf("delete profile %s: %w", id, res.Error)
	}
	s.refreshCount(ctx)
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&profileRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

func (s *GormStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return sqlDB.Close()
}

func (s *GormStore) refreshCount(ctx context.Context) {
	n, err := s.Count(ctx)
	if err != nil {
		s.opts.log.Warn(ctx, "count profiles failed", logger.Error(err))
		return
	}
	metrics.UpdateStoredProfiles(n)
}

func toRow(p *model.UserProfile) (profileRow, error) {
	row := profileRow{
		ID:             p.ID.String(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		TotalEntries:   p.TotalEntries,
		DateRangeStart: p.DateRangeStart,
		DateRangeEnd:   p.DateRangeEnd,
		LastUpload:     p.LastUpload,
		Confidence:     p.Confidence,
	}
	for _, part := range []struct {
		name string
		dst  *datatypes.JSON
		src  any
	}{
		{"platforms", &row.Platforms, p.Platforms},
		{"metrics", &row.Metrics, p.Metrics},
		{"personas", &row.Personas, p.Personas},
		{"weights", &row.Weights, p.Weights},
	} {
		b, err := json.Marshal(part.src)
		if err != nil {
			return profileRow{}, fmt.Errorf("encode %s: %w", part.name, err)
		}
		*part.dst = b
	}
	return row, nil
}

func fromRow(row profileRow) (model.UserProfile, error) { //nolint:gocritic // rows are read once
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("decode id %q: %w", row.ID, err)
	}
	p := model.UserProfile{
		ID:             id,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		TotalEntries:   row.TotalEntries,
		DateRangeStart: row.DateRangeStart,
		DateRangeEnd:   row.DateRangeEnd,
		LastUpload:     row.LastUpload,
		Confidence:     row.Confidence,
	}
	for _, part := range []struct {
		name string
		src  datatypes.JSON
		dst  any
	}{
		{"platforms", row.Platforms, &p.Platforms},
		{"metrics", row.Metrics, &p.Metrics},
		{"personas", row.Personas, &p.Personas},
		{"weights", row.Weights, &p.Weights},
	} {
		if err := json.Unmarshal(part.src, part.dst); err != nil {
			return model.UserProfile{}, fmt.Errorf("decode %s of %s: %w", part.name, row.ID, err)
		}
	}
	return p, nil
}
