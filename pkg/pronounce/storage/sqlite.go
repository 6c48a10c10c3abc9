//go:build !js && !wasm
// +build !js,!wasm

// Package storage keeps the history of scored attempts in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/utils"
)

const DefaultDBFile = "openpronounce.sqlite3"
const errDBClientNil = "db client is nil"

// ErrAttemptNotFound is returned for unknown attempt IDs.
var ErrAttemptNotFound = errors.New("attempt not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Attempt struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	ExpectedText    string `gorm:"not null"`
	Transcript      string
	Score           float64 `gorm:"index:idx_attempt_score"`
	DTWDistance     float64
	PhonemeDistance float64
	WordDistance    float64
	WER             float64
	CER             float64
	CreatedAt       time.Time          `gorm:"index:idx_attempt_created"`
	Errors          []AttemptWordError `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

type AttemptWordError struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	AttemptID        string `gorm:"type:varchar(36);index:idx_attempt_word_error"`
	Position         int
	ExpectedWord     string
	ExpectedPhonemes string
	ActualWord       string
	ActualPhonemes   string
}

// NewDBClient opens the database named by OPENPRONOUNCE_DB_PATH, or
// DefaultDBFile in the working directory.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("OPENPRONOUNCE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := utils.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Attempt{}, &AttemptWordError{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveAttempt stores an attempt and its word errors, assigning an ID when
// the attempt has none. It returns the ID.
func (c *DBClient) SaveAttempt(ctx context.Context, a models.AttemptDetail) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	if a.ID == "" {
		a.ID = utils.GenerateUUID()
	}
	created := time.Now()
	if a.CreatedAtMs > 0 {
		created = time.UnixMilli(a.CreatedAtMs)
	}

	row := Attempt{
		ID:              a.ID,
		ExpectedText:    a.ExpectedText,
		Transcript:      a.Transcript,
		Score:           a.Score,
		DTWDistance:     a.Breakdown.DTWDistance,
		PhonemeDistance: a.Breakdown.PhonemeDistance,
		WordDistance:    a.Breakdown.WordDistance,
		WER:             a.WER,
		CER:             a.CER,
		CreatedAt:       created,
		Errors:          make([]AttemptWordError, 0, len(a.Errors)),
	}
	for _, e := range a.Errors {
		row.Errors = append(row.Errors, AttemptWordError{
			AttemptID:        a.ID,
			Position:         e.Position,
			ExpectedWord:     e.ExpectedWord,
			ExpectedPhonemes: e.ExpectedPhonemes,
			ActualWord:       e.ActualWord,
			ActualPhonemes:   e.ActualPhonemes,
		})
	}

	if err := c.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("creating attempt: %w", err)
	}
	return a.ID, nil
}

func (c *DBClient) GetAttempt(ctx context.Context, id string) (*models.AttemptDetail, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Attempt
	err := c.DB.WithContext(ctx).
		Preload("Errors", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying attempt: %w", err)
	}

	detail := &models.AttemptDetail{
		AttemptSummary: toSummary(row),
		Breakdown: models.ScoreBreakdown{
			DTWDistance:     row.DTWDistance,
			PhonemeDistance: row.PhonemeDistance,
			WordDistance:    row.WordDistance,
			FinalScore:      row.Score,
		},
		Errors: make([]models.WordError, 0, len(row.Errors)),
	}
	for _, e := range row.Errors {
		detail.Errors = append(detail.Errors, models.WordError{
			Position:         e.Position,
			ExpectedWord:     e.ExpectedWord,
			ExpectedPhonemes: e.ExpectedPhonemes,
			ActualWord:       e.ActualWord,
			ActualPhonemes:   e.ActualPhonemes,
		})
	}
	return detail, nil
}

// ListAttempts returns the newest attempts first. limit <= 0 returns all.
func (c *DBClient) ListAttempts(ctx context.Context, limit int) ([]models.AttemptSummary, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	q := c.DB.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []Attempt
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	out := make([]models.AttemptSummary, len(rows))
	for i, r := range rows {
		out[i] = toSummary(r)
	}
	return out, nil
}

func (c *DBClient) DeleteAttempt(ctx context.Context, id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", id).Delete(&AttemptWordError{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Attempt{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		return nil
	})
}

func (c *DBClient) Stats(ctx context.Context) (models.AttemptStats, error) {
	if c == nil || c.DB == nil {
		return models.AttemptStats{}, errors.New(errDBClientNil)
	}

	var res struct {
		Count        int64
		AverageScore float64
	}
	err := c.DB.WithContext(ctx).Model(&Attempt{}).
		Select("COUNT(*) AS count, COALESCE(AVG(score), 0) AS average_score").
		Scan(&res).Error
	if err != nil {
		return models.AttemptStats{}, fmt.Errorf("attempt stats: %w", err)
	}
	return models.AttemptStats{Count: res.Count, AverageScore: res.AverageScore}, nil
}

func toSummary(r Attempt) models.AttemptSummary {
	return models.AttemptSummary{
		ID:           r.ID,
		ExpectedText: r.ExpectedText,
		Transcript:   r.Transcript,
		Score:        r.Score,
		WER:          r.WER,
		CER:          r.CER,
		CreatedAtMs:  r.CreatedAt.UnixMilli(),
	}
}
