// Package model defines persistent models and API result types.
package model

import (
	"time"

	"gorm.io/gorm"
)

// Chapter is a book chapter record.
type Chapter struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	BookID    string         `gorm:"size:64;index;not null" json:"book_id"`
	Number    int            `gorm:"not null" json:"number"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Summary   string         `gorm:"type:text" json:"summary,omitempty"`
	FilePath  string         `gorm:"size:512" json:"file_path,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for Chapter.
func (Chapter) TableName() string {
	return "chapters"
}

// QueryLog records one answered question for analytics.
type QueryLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SessionID  string    `gorm:"size:64;index" json:"session_id"`
	BookID     string    `gorm:"size:64;index" json:"book_id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	IsFallback bool      `json:"is_fallback"`
	LatencyMS  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the table name for QueryLog.
func (QueryLog) TableName() string {
	return "query_logs"
}
