package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType tags records so downstream tooling can filter by event class.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step when something fails.
	FieldErrorHint = "error_hint"
	// FieldFile identifies the source file a record refers to.
	FieldFile = "file"
	// FieldSourceFormat is the detected format of the input file.
	FieldSourceFormat = "source_format"
	// FieldTargetFormat is the requested output format.
	FieldTargetFormat = "target_format"
	// FieldCommand holds the literal resolved command string for reproduction.
	FieldCommand = "command"
	// FieldBatchID correlates records belonging to one batch run.
	FieldBatchID = "batch_id"
)
