package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/farmledger/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores documents as rows of the documents table created by the goose migrations.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQL(db *gorm.DB) (*SQL, error) {
	if db == nil {
		return nil, errors.New("gorm connection required")
	}
	return &SQL{db: db, now: time.Now}, nil
}

func (s *SQL) Load(ctx context.Context, key string) ([]byte, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).Where("doc_key = ?", key).Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select document %s: %w", key, err)
	}
	return []byte(doc.Body), nil
}

func (s *SQL) Save(ctx context.Context, key string, body []byte) error {
	doc := models.Document{Key: key, Body: string(body), UpdatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", key, err)
	}
	return nil
}
