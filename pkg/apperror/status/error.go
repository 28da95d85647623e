package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges:
//   0-999:     client errors
//   1000-1999: internal errors
const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// Client/validation errors
const (
	FileUploadInvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	FileUploadMissingParams                                        // 1
	ConvertMissingFile                                             // 2
	ConvertInvalidParams                                           // 3
	ConvertUnreadablePDF                                           // 4
	IngestInvalidDocID                                             // 5
	IngestDocumentNotFound                                         // 6
	RetrieverInvalidQuery                                          // 7
)

// Internal errors
const (
	FileUploadInternal    ErrorCode = InternalErrorBase + iota // 1000
	FileUploadStoreFailed                                      // 1001
	ConvertFailed                                              // 1002
	IngestEnqueueFailed                                        // 1003
	RetrieverSearchFailed                                      // 1004
)

const (
	ErrorCodeInternal ErrorCode = 9000
)

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}
