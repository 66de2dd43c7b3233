package models

import "time"

// Document stores one whole JSON document per logical key (ledger, payments, credits...).
type Document struct {
	Key       string    `gorm:"column:doc_key;primaryKey;size:191"`
	Body      string    `gorm:"column:body;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Document) TableName() string { return "documents" }
