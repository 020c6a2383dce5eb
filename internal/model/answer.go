package model

// Citation points at the book excerpt that supports an answer.
type Citation struct {
	ChunkID    string  `json:"chunk_id"`
	BookID     string  `json:"book_id"`
	ChapterID  string  `json:"chapter_id,omitempty"`
	Title      string  `json:"title"`
	SourcePath string  `json:"source_path"`
	Snippet    string  `json:"snippet"`
	Score      float32 `json:"score"`
}

// Answer is the result of one question against the book.
type Answer struct {
	Text       string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	IsFallback bool       `json:"is_fallback_response"`
	SessionID  string     `json:"session_id,omitempty"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	BookID         string      `json:"book_id"`
	FilesProcessed int         `json:"files_processed"`
	ChunksWritten  int         `json:"chunks_written"`
	Failed         []FileError `json:"failed,omitempty"`
}

// FileError names a source file that failed during ingestion.
type FileError struct {
	SourcePath string `json:"source_path"`
	Reason     string `json:"reason"`
}

// Stats is a snapshot of service counters.
type Stats struct {
	Collection   string `json:"collection"`
	ChunkCount   int64  `json:"chunk_count"`
	QueryCount   int64  `json:"query_count"`
	LiveSessions int    `json:"live_sessions"`
}
