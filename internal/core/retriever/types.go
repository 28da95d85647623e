package retriever

// Filters narrows a search. Empty fields do not constrain it.
type Filters struct {
	DocIDs []int64
	// Pages are 1-based page numbers.
	Pages []int32
}

// Hit is one indexed chunk returned by a search. ChunkID is the ID written
// to the chunk's TSV line; Content keeps its link annotations.
type Hit struct {
	ChunkID    int64   `json:"chunk_id"`
	Score      float32 `json:"score"`
	DocID      int64   `json:"doc_id"`
	PageIndex  int32   `json:"page_index"`
	ChunkIndex int32   `json:"chunk_index"`
	Content    string  `json:"content"`
}
