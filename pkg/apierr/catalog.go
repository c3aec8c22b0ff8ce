package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Project ---

func ProjectNotFound() *Error {
	return New(CodeProjectNotFound, http.StatusNotFound, "Project not found")
}

func ProjectCreateFailed(cause error) *Error {
	return Wrap(CodeProjectCreateFailed, http.StatusInternalServerError, "Failed to create project", cause)
}

func ProjectUpdateFailed(cause error) *Error {
	return Wrap(CodeProjectUpdateFailed, http.StatusInternalServerError, "Failed to update project", cause)
}

func ProjectDeleteFailed(cause error) *Error {
	return Wrap(CodeProjectDeleteFailed, http.StatusInternalServerError, "Failed to delete project", cause)
}

func ProjectListFailed(cause error) *Error {
	return Wrap(CodeProjectListFailed, http.StatusInternalServerError, "Failed to list projects", cause)
}

// --- Source ---

func SourceNotFound() *Error {
	return New(CodeSourceNotFound, http.StatusNotFound, "Source not found")
}

func InvalidSourceID() *Error {
	return New(CodeInvalidSourceID, http.StatusBadRequest, "Invalid source ID")
}

func SourceCreateFailed(cause error) *Error {
	return Wrap(CodeSourceCreateFailed, http.StatusInternalServerError, "Failed to create source", cause)
}

func SourceDeleteFailed(cause error) *Error {
	return Wrap(CodeSourceDeleteFailed, http.StatusInternalServerError, "Failed to delete source", cause)
}

func SourceListFailed(cause error) *Error {
	return Wrap(CodeSourceListFailed, http.StatusInternalServerError, "Failed to list sources", cause)
}

func SourceNotReady() *Error {
	return New(CodeSourceNotReady, http.StatusBadRequest, "Source is not ready for processing")
}

func SourceBusy() *Error {
	return New(CodeSourceBusy, http.StatusConflict, "Source has an active processing run")
}

func SourceParseFailed(cause error) *Error {
	return Wrap(CodeSourceParseFailed, http.StatusUnprocessableEntity, "Failed to parse source file", cause)
}

// --- Mapping ---

func MappingNotFound() *Error {
	return New(CodeMappingNotFound, http.StatusNotFound, "Mapping configuration not found")
}

func UnknownSourceColumn(column string) *Error {
	return New(CodeUnknownSourceColumn, http.StatusBadRequest, "Source column \""+column+"\" does not exist")
}

func NoMappingsConfigured() *Error {
	return New(CodeNoMappingsConfigured, http.StatusBadRequest, "No mappings configured")
}

// --- De-identification ---

func DeidentificationNotFound() *Error {
	return New(CodeDeidentNotFound, http.StatusNotFound, "De-identification configuration not found")
}

func InvalidPattern(ruleID string, cause error) *Error {
	return Wrap(CodeInvalidPattern, http.StatusUnprocessableEntity, "Invalid regex pattern in rule \""+ruleID+"\"", cause)
}

func UnknownScanColumn(column string) *Error {
	return New(CodeUnknownScanColumn, http.StatusBadRequest, "Column \""+column+"\" does not exist in source")
}

func NoScanColumns() *Error {
	return New(CodeNoScanColumns, http.StatusBadRequest, "No columns configured for scanning")
}

func ScanNotPerformed() *Error {
	return New(CodeScanNotPerformed, http.StatusNotFound, "PII scan has not been performed yet")
}

// --- Filters ---

func FilterNotFound() *Error {
	return New(CodeFilterNotFound, http.StatusNotFound, "Filter configuration not found")
}

func InvalidDateRange() *Error {
	return New(CodeInvalidDateRange, http.StatusUnprocessableEntity, "End date must be after start date")
}

func ConfigSaveFailed(cause error) *Error {
	return Wrap(CodeConfigSaveFailed, http.StatusInternalServerError, "Failed to save configuration", cause)
}

// --- Processing runs ---

func RunNotFound() *Error {
	return New(CodeRunNotFound, http.StatusNotFound, "Processing run not found")
}

func InvalidRunID() *Error {
	return New(CodeInvalidRunID, http.StatusBadRequest, "Invalid run ID")
}

func RunConflict() *Error {
	return New(CodeRunConflict, http.StatusConflict, "Processing is already in progress for this source")
}

func RunNotActive() *Error {
	return New(CodeRunNotActive, http.StatusBadRequest, "Cannot cancel a run that is not in progress")
}

func RunStartFailed(cause error) *Error {
	return Wrap(CodeRunStartFailed, http.StatusInternalServerError, "Failed to start processing run", cause)
}

func RunListFailed(cause error) *Error {
	return Wrap(CodeRunListFailed, http.StatusInternalServerError, "Failed to list processing runs", cause)
}

func UnsupportedOutputFormat(format string) *Error {
	return New(CodeUnsupportedFormat, http.StatusBadRequest, "Unsupported output format: "+format)
}

// --- Outputs ---

func OutputNotFound() *Error {
	return New(CodeOutputNotFound, http.StatusNotFound, "Output not found")
}

func OutputListFailed(cause error) *Error {
	return Wrap(CodeOutputListFailed, http.StatusInternalServerError, "Failed to list outputs", cause)
}

func OutputDeleteFailed(cause error) *Error {
	return Wrap(CodeOutputDeleteFailed, http.StatusInternalServerError, "Failed to delete output", cause)
}

func OutputFetchFailed(cause error) *Error {
	return Wrap(CodeOutputFetchFailed, http.StatusInternalServerError, "Failed to fetch output content", cause)
}

// --- Validation ---

func NameRequired() *Error {
	return New(CodeNameRequired, http.StatusBadRequest, "Name is required")
}

func NameTooLong() *Error {
	return New(CodeNameTooLong, http.StatusBadRequest, "Name must be 255 characters or fewer")
}

func SlugRequired() *Error {
	return New(CodeSlugRequired, http.StatusBadRequest, "Slug is required")
}

func SlugInvalid() *Error {
	return New(CodeSlugInvalid, http.StatusBadRequest, "Slug must be 3-63 chars, lowercase alphanumeric and hyphens, must start/end with alphanumeric")
}

// --- Upload ---

func FileRequired() *Error {
	return New(CodeFileRequired, http.StatusBadRequest, "File is required (multipart field 'file')")
}

func UploadFailed(cause error) *Error {
	return Wrap(CodeUploadFailed, http.StatusInternalServerError, "Failed to upload file", cause)
}

func StorageUnavailable() *Error {
	return New(CodeStorageUnavailable, http.StatusServiceUnavailable, "Object storage is not available")
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
