package errors

// Service codes (AA).
const (
	// ServiceCommon is for errors shared by all services.
	ServiceCommon = 0

	// ServiceBookRAG is for the bookrag service.
	ServiceBookRAG = 20
)

// Category codes (BB).
const (
	CategorySuccess  = 0
	CategoryRequest  = 1  // 400
	CategoryAuth     = 2  // 401
	CategoryResource = 4  // 404
	CategoryConflict = 5  // 409
	CategoryInternal = 7  // 500
	CategoryDatabase = 8  // 500
	CategoryNetwork  = 10 // 502/503
	CategoryTimeout  = 11 // 504
	CategoryConfig   = 12 // 500
)

// MakeCode builds an AABBCCC error code from service, category and sequence.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}
