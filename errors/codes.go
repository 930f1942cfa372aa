package errors

// ErrorCode identifies an application error class.
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED
	ErrorCode_CONFLICT
	ErrorCode_HTTP_OK

	// Meeting lifecycle
	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_MEETING_INVALID_STATE
	ErrorCode_MEETING_DELETED

	// Extraction pipeline
	ErrorCode_EXTRACTION_CONTRACT_VIOLATION
	ErrorCode_EXTRACTION_PROVIDERS_EXHAUSTED
	ErrorCode_EXTRACTION_FAILED

	// Review / change set
	ErrorCode_CHANGESET_NOT_FOUND
	ErrorCode_CHANGESET_LOCKED
	ErrorCode_CHANGESET_VERSION_CONFLICT
	ErrorCode_CHANGESET_CONSUMED
	ErrorCode_MERGE_PARTIAL_FAILURE
	ErrorCode_OWNER_UNRESOLVED

	// Database / integration
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                         "UNKNOWN",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_CONFLICT:                        "CONFLICT",
	ErrorCode_HTTP_OK:                         "OK",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_STATE:           "MEETING_INVALID_STATE",
	ErrorCode_MEETING_DELETED:                 "MEETING_DELETED",
	ErrorCode_EXTRACTION_CONTRACT_VIOLATION:   "EXTRACTION_CONTRACT_VIOLATION",
	ErrorCode_EXTRACTION_PROVIDERS_EXHAUSTED:  "EXTRACTION_PROVIDERS_EXHAUSTED",
	ErrorCode_EXTRACTION_FAILED:               "EXTRACTION_FAILED",
	ErrorCode_CHANGESET_NOT_FOUND:             "CHANGESET_NOT_FOUND",
	ErrorCode_CHANGESET_LOCKED:                "CHANGESET_LOCKED",
	ErrorCode_CHANGESET_VERSION_CONFLICT:      "CHANGESET_VERSION_CONFLICT",
	ErrorCode_CHANGESET_CONSUMED:              "CHANGESET_CONSUMED",
	ErrorCode_MERGE_PARTIAL_FAILURE:           "MERGE_PARTIAL_FAILURE",
	ErrorCode_OWNER_UNRESOLVED:                "OWNER_UNRESOLVED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:           "DB_TRANSACTION_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
}

// String returns the symbolic name of the error code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
