// Package gormstore реализует репозиторий заметок поверх реляционной БД через GORM.
// Поддерживаются PostgreSQL и SQLite; SQL-диалект один для обоих драйверов.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"notes-api/internal/model"
	"notes-api/internal/query"
	"notes-api/internal/repository"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// sqliteDriverName драйвер database/sql с Unicode-версией lower()
	sqliteDriverName = "sqlite3_unicode"
)

var registerSQLite sync.Once

// registerSQLiteDriver регистрирует драйвер go-sqlite3, в котором встроенная
// lower() заменена на strings.ToLower. Встроенная функция SQLite приводит
// к нижнему регистру только ASCII.
func registerSQLiteDriver() {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", unicodeLower, true)
			},
		})
	})
}

// unicodeLower lower() для SQLite; NULL остается NULL
func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// Options параметры подключения к БД
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

var _ repository.NoteRepository = (*Store)(nil)

// Store репозиторий заметок на GORM
type Store struct {
	db *gorm.DB
}

// noteRecord строка таблицы notes. Поля временных меток названы иначе, чем
// CreatedAt/UpdatedAt, чтобы GORM не подменял значения, выставленные сервисом.
type noteRecord struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Title        string    `gorm:"column:title;size:120;not null"`
	Content      *string   `gorm:"column:content;size:5000"`
	CreatedAtUTC time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAtUTC time.Time `gorm:"column:updated_at;not null;index"`
}

func (noteRecord) TableName() string {
	return "notes"
}

// Open открывает подключение к БД по параметрам
func Open(opts Options, log zerolog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(opts.Driver) {
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite, "sqlite3":
		registerSQLiteDriver()
		dialector = sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: opts.DSN})
		if opts.MaxOpenConns == 0 {
			// SQLite не допускает параллельных писателей
			opts.MaxOpenConns = 1
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, opts.Debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return &Store{db: db}, nil
}

// Migrate создает или дополняет схему таблицы notes
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&noteRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close закрывает подключение к БД
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping проверяет доступность БД
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Create сохраняет новую заметку
func (s *Store) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	rec := toRecord(note)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	return toModel(rec), nil
}

// GetByID возвращает заметку по её ID
func (s *Store) GetByID(ctx context.Context, id string) (model.Note, error) {
	var rec noteRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Note{}, model.ErrNoteNotFound
		}
		return model.Note{}, fmt.Errorf("get note %s: %w", id, err)
	}
	return toModel(rec), nil
}

// List возвращает все заметки по дате обновления, новые первыми
func (s *Store) List(ctx context.Context) ([]model.Note, error) {
	notes, _, err := s.Query(ctx, query.All())
	return notes, err
}

// Query выполняет план: COUNT по отфильтрованной выборке, затем выборку страницы
func (s *Store) Query(ctx context.Context, plan query.Plan) ([]model.Note, int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&noteRecord{}).
		Scopes(filterScope(plan)).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	var recs []noteRecord
	err = s.db.WithContext(ctx).
		Scopes(filterScope(plan), orderScope(plan), pageScope(plan)).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query notes: %w", err)
	}

	notes := make([]model.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, toModel(rec))
	}
	return notes, int(total), nil
}

// Update заменяет заголовок, содержимое и дату обновления одним UPDATE
func (s *Store) Update(ctx context.Context, note model.Note) (model.Note, error) {
	res := s.db.WithContext(ctx).
		Model(&noteRecord{}).
		Where("id = ?", note.ID).
		Updates(map[string]any{
			"title":      note.Title,
			"content":    note.Content,
			"updated_at": note.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return model.Note{}, fmt.Errorf("update note %s: %w", note.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Note{}, model.ErrNoteNotFound
	}
	return note, nil
}

// Delete удаляет заметку по ID
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&noteRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete note %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNoteNotFound
	}
	return nil
}

// filterScope переводит предикаты плана в условия WHERE
func filterScope(plan query.Plan) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, f := range plan.Filters {
			switch f.Kind {
			case query.TextSearch:
				pattern := likePattern(f.Term)
				db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, pattern, pattern)
			case query.TitleContains:
				db = db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, likePattern(f.Term))
			case query.ContentContains:
				db = db.Where(`LOWER(content) LIKE ? ESCAPE '\'`, likePattern(f.Term))
			case query.CreatedFrom:
				db = db.Where("created_at >= ?", f.Bound.UTC())
			case query.CreatedUntil:
				db = db.Where("created_at <= ?", f.Bound.UTC())
			}
		}
		return db
	}
}

// orderScope сортирует по ключу плана и дополнительно по id.
// NULL в content сортируется как пустая строка в обоих диалектах.
func orderScope(plan query.Plan) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		order := plan.Order
		if order.Column == "" {
			order = query.DefaultOrder
		}
		column := clause.Column{Name: order.Column}
		if order.Column == "content" {
			column = clause.Column{Name: "COALESCE(content, '')", Raw: true}
		}
		return db.
			Order(clause.OrderByColumn{Column: column, Desc: order.Descending}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}

func pageScope(plan query.Plan) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !plan.Paged() {
			return db
		}
		return db.Offset(plan.Offset).Limit(plan.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern экранирует спецсимволы LIKE и оборачивает терм в %...%
func likePattern(lowerTerm string) string {
	return "%" + likeEscaper.Replace(lowerTerm) + "%"
}

func toRecord(n model.Note) noteRecord {
	return noteRecord{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		CreatedAtUTC: n.CreatedAt.UTC(),
		UpdatedAtUTC: n.UpdatedAt.UTC(),
	}
}

func toModel(r noteRecord) model.Note {
	return model.Note{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAtUTC.UTC(),
		UpdatedAt: r.UpdatedAtUTC.UTC(),
	}
}
