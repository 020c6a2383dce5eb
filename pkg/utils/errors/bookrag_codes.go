package errors

// Common errors (service 00).
var (
	ErrInternal = Register(New(MakeCode(ServiceCommon, CategoryInternal, 1), 500, "Internal server error"))
)

// bookrag service errors (service 20).
var (
	// Request errors (category 01).
	ErrInvalidRequest = Register(New(MakeCode(ServiceBookRAG, CategoryRequest, 1), 400, "Invalid request parameters"))
	ErrInvalidChunk   = Register(New(MakeCode(ServiceBookRAG, CategoryRequest, 2), 400, "Invalid chunk parameters"))

	// Auth errors (category 02).
	ErrUnauthorized = Register(New(MakeCode(ServiceBookRAG, CategoryAuth, 1), 401, "Authentication required"))
	ErrTokenInvalid = Register(New(MakeCode(ServiceBookRAG, CategoryAuth, 2), 401, "Invalid or expired token"))

	// Resource errors (category 04).
	ErrChapterNotFound = Register(New(MakeCode(ServiceBookRAG, CategoryResource, 1), 404, "Chapter not found"))
	ErrSessionNotFound = Register(New(MakeCode(ServiceBookRAG, CategoryResource, 2), 404, "Session not found"))

	// Internal errors (category 07).
	ErrIngestFailed = Register(New(MakeCode(ServiceBookRAG, CategoryInternal, 1), 500, "Document ingestion failed"))
	ErrVectorStore  = Register(New(MakeCode(ServiceBookRAG, CategoryInternal, 2), 500, "Vector store operation failed"))
	ErrQueryFailed  = Register(New(MakeCode(ServiceBookRAG, CategoryInternal, 3), 500, "Query failed"))

	// Database errors (category 08).
	ErrDatabase = Register(New(MakeCode(ServiceBookRAG, CategoryDatabase, 1), 500, "Database operation failed"))

	// Upstream provider errors (category 10).
	ErrProvider = Register(New(MakeCode(ServiceBookRAG, CategoryNetwork, 1), 502, "Upstream model provider failed"))

	// Timeout errors (category 11).
	ErrQueryTimeout = Register(New(MakeCode(ServiceBookRAG, CategoryTimeout, 1), 408, "Query timeout"))
)
