package model

import (
	"time"
)

const TableNameChunk = "chunks"

// Chunk mapped from table <chunks>
type Chunk struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	DocumentID       int64      `gorm:"column:document_id;not null;uniqueIndex:uk_chunks_doc_page_idx,priority:1" json:"document_id"`
	PageIndex        int32      `gorm:"column:page_index;not null;uniqueIndex:uk_chunks_doc_page_idx,priority:2" json:"page_index"`
	ChunkIndex       int32      `gorm:"column:chunk_index;not null;uniqueIndex:uk_chunks_doc_page_idx,priority:3" json:"chunk_index"`
	Content          string     `gorm:"column:content;not null;type:mediumtext" json:"content"`
	ContentPreview   *string    `gorm:"column:content_preview;size:2048" json:"content_preview"`
	Links            *string    `gorm:"column:links;type:json" json:"links"`
	MilvusCollection string     `gorm:"column:milvus_collection;not null;size:128" json:"milvus_collection"`
	ContentHash      string     `gorm:"column:content_hash;not null;size:64" json:"content_hash"`
	CreatedAt        *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName Chunk's table name
func (*Chunk) TableName() string {
	return TableNameChunk
}
