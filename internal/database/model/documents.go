package model

import (
	"time"
)

const TableNameDocument = "documents"

// Document mapped from table <documents>
type Document struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	UserID           int64      `gorm:"column:user_id;not null;index:idx_documents_user_id,priority:1" json:"user_id"`
	OriginalFilename *string    `gorm:"column:original_filename;size:512" json:"original_filename"`
	FilePath         *string    `gorm:"column:file_path;size:1024" json:"file_path"`
	Sha256           *string    `gorm:"column:sha256;size:64;index:idx_documents_sha256,priority:1" json:"sha256"`
	Status           string     `gorm:"column:status;not null;size:32;default:uploaded" json:"status"`
	PageCount        *int32     `gorm:"column:page_count" json:"page_count"`
	ChunkCount       *int32     `gorm:"column:chunk_count" json:"chunk_count"`
	TsvPath          *string    `gorm:"column:tsv_path;size:1024" json:"tsv_path"`
	LastError        *string    `gorm:"column:last_error;type:text" json:"last_error"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName Document's table name
func (*Document) TableName() string {
	return TableNameDocument
}
