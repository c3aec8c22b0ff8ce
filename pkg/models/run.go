package models

// RunStatus is the lifecycle state of a processing run.
// pending → processing → {completed, failed, cancelled}.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
	RunCancelled  RunStatus = "cancelled"
)

// Terminal reports whether the run can no longer change state.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunCancelled
}

// OutputFormat selects the target encoding of a run's artifact.
type OutputFormat string

const (
	FormatConversationalJSONL OutputFormat = "conversational_jsonl"
	FormatQAPairsJSONL        OutputFormat = "qa_pairs_jsonl"
	FormatRawJSON             OutputFormat = "raw_json"
)

// Valid reports whether f is a supported output format.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatConversationalJSONL, FormatQAPairsJSONL, FormatRawJSON:
		return true
	}
	return false
}

// Extension returns the artifact file extension for the format.
func (f OutputFormat) Extension() string {
	if f == FormatRawJSON {
		return "json"
	}
	return "jsonl"
}

// ContentType returns the MIME type served on artifact download.
func (f OutputFormat) ContentType() string {
	if f == FormatRawJSON {
		return "application/json"
	}
	return "application/x-ndjson"
}
