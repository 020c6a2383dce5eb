package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bookrag-io/bookrag/internal/model"
	dbopts "github.com/bookrag-io/bookrag/pkg/options/database"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// NewDB opens the sqlite database and optionally migrates the schema.
func NewDB(opts *dbopts.Options) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.AutoMigrate {
		if err := db.AutoMigrate(&model.Chapter{}, &model.QueryLog{}); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return db, nil
}

// ChapterStore persists the chapter catalog and the query log.
type ChapterStore struct {
	db *gorm.DB
}

// NewChapterStore creates a ChapterStore.
func NewChapterStore(db *gorm.DB) *ChapterStore {
	return &ChapterStore{db: db}
}

// List returns the chapters of a book ordered by chapter number.
func (s *ChapterStore) List(ctx context.Context, bookID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := s.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("number asc").
		Find(&chapters).Error
	if err != nil {
		return nil, apierrors.ErrDatabase.WithCause(err)
	}
	return chapters, nil
}

// Get returns a chapter by id.
func (s *ChapterStore) Get(ctx context.Context, id uint) (*model.Chapter, error) {
	var chapter model.Chapter
	err := s.db.WithContext(ctx).First(&chapter, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.ErrChapterNotFound
	}
	if err != nil {
		return nil, apierrors.ErrDatabase.WithCause(err)
	}
	return &chapter, nil
}

// Create inserts a chapter.
func (s *ChapterStore) Create(ctx context.Context, chapter *model.Chapter) error {
	if err := s.db.WithContext(ctx).Create(chapter).Error; err != nil {
		return apierrors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update saves changes to a chapter.
func (s *ChapterStore) Update(ctx context.Context, chapter *model.Chapter) error {
	if err := s.db.WithContext(ctx).Save(chapter).Error; err != nil {
		return apierrors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete soft-deletes a chapter by id.
func (s *ChapterStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Chapter{}, id)
	if result.Error != nil {
		return apierrors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return apierrors.ErrChapterNotFound
	}
	return nil
}

// RecordQuery appends an entry to the query log.
func (s *ChapterStore) RecordQuery(ctx context.Context, entry *model.QueryLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apierrors.ErrDatabase.WithCause(err)
	}
	return nil
}

// QueryCount returns the number of logged queries.
func (s *ChapterStore) QueryCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.QueryLog{}).Count(&count).Error; err != nil {
		return 0, apierrors.ErrDatabase.WithCause(err)
	}
	return count, nil
}
