package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Project errors.
const (
	CodeProjectNotFound     Code = "PROJECT_NOT_FOUND"
	CodeProjectCreateFailed Code = "PROJECT_CREATE_FAILED"
	CodeProjectUpdateFailed Code = "PROJECT_UPDATE_FAILED"
	CodeProjectDeleteFailed Code = "PROJECT_DELETE_FAILED"
	CodeProjectListFailed   Code = "PROJECT_LIST_FAILED"
)

// Source errors.
const (
	CodeSourceNotFound     Code = "SOURCE_NOT_FOUND"
	CodeInvalidSourceID    Code = "INVALID_SOURCE_ID"
	CodeSourceCreateFailed Code = "SOURCE_CREATE_FAILED"
	CodeSourceDeleteFailed Code = "SOURCE_DELETE_FAILED"
	CodeSourceListFailed   Code = "SOURCE_LIST_FAILED"
	CodeSourceNotReady     Code = "SOURCE_NOT_READY"
	CodeSourceBusy         Code = "SOURCE_BUSY"
	CodeSourceParseFailed  Code = "SOURCE_PARSE_FAILED"
)

// Configuration errors.
const (
	CodeMappingNotFound      Code = "MAPPING_NOT_FOUND"
	CodeUnknownSourceColumn  Code = "UNKNOWN_SOURCE_COLUMN"
	CodeNoMappingsConfigured Code = "NO_MAPPINGS_CONFIGURED"
	CodeDeidentNotFound      Code = "DEIDENTIFICATION_NOT_FOUND"
	CodeInvalidPattern       Code = "INVALID_PATTERN"
	CodeUnknownScanColumn    Code = "UNKNOWN_SCAN_COLUMN"
	CodeNoScanColumns        Code = "NO_SCAN_COLUMNS"
	CodeScanNotPerformed     Code = "SCAN_NOT_PERFORMED"
	CodeFilterNotFound       Code = "FILTER_NOT_FOUND"
	CodeInvalidDateRange     Code = "INVALID_DATE_RANGE"
	CodeConfigSaveFailed     Code = "CONFIG_SAVE_FAILED"
)

// Processing run errors.
const (
	CodeRunNotFound       Code = "RUN_NOT_FOUND"
	CodeInvalidRunID      Code = "INVALID_RUN_ID"
	CodeRunConflict       Code = "RUN_CONFLICT"
	CodeRunNotActive      Code = "RUN_NOT_ACTIVE"
	CodeRunStartFailed    Code = "RUN_START_FAILED"
	CodeRunListFailed     Code = "RUN_LIST_FAILED"
	CodeUnsupportedFormat Code = "UNSUPPORTED_OUTPUT_FORMAT"
)

// Output errors.
const (
	CodeOutputNotFound     Code = "OUTPUT_NOT_FOUND"
	CodeOutputListFailed   Code = "OUTPUT_LIST_FAILED"
	CodeOutputDeleteFailed Code = "OUTPUT_DELETE_FAILED"
	CodeOutputFetchFailed  Code = "OUTPUT_FETCH_FAILED"
)

// Validation errors.
const (
	CodeNameRequired Code = "NAME_REQUIRED"
	CodeNameTooLong  Code = "NAME_TOO_LONG"
	CodeSlugRequired Code = "SLUG_REQUIRED"
	CodeSlugInvalid  Code = "SLUG_INVALID"
)

// Upload and storage errors.
const (
	CodeFileRequired       Code = "FILE_REQUIRED"
	CodeUploadFailed       Code = "UPLOAD_FAILED"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
