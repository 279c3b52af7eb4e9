package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/exercise-service/internal/repositories"
)

// Document is one stored JSON document keyed by its path.
type Document struct {
	Path      string         `gorm:"primaryKey;size:512"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Document) TableName() string {
	return "documents"
}

type DocumentPostgreSQL struct {
	db *gorm.DB
}

func NewDocumentPostgreSQL(db *gorm.DB) repositories.DataRepository {
	return &DocumentPostgreSQL{db: db}
}

// Migrate creates or updates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Document{})
}

func (d DocumentPostgreSQL) Read(ctx context.Context, path string) ([]byte, error) {
	var doc Document
	if err := d.db.WithContext(ctx).Where("path = ?", path).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return []byte(doc.Data), nil
}

// Write upserts the document so resubmitting the same result id overwrites
// rather than duplicates.
func (d DocumentPostgreSQL) Write(ctx context.Context, path string, data []byte) error {
	doc := Document{Path: path, Data: datatypes.JSON(data)}
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&doc).Error
}

// ListPaths returns stored paths under prefix, for exports and tooling.
func (d DocumentPostgreSQL) ListPaths(ctx context.Context, prefix string, limit int) ([]string, error) {
	var paths []string
	query := d.db.WithContext(ctx).Model(&Document{}).
		Where("path LIKE ?", escapeLike(prefix)+"%").
		Order("path ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("path", &paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
