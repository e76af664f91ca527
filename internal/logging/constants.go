package logging

// Field names shared by every component so log output stays filterable.
const (
	FieldFile       = "file_path"
	FieldDocument   = "document"
	FieldFamily     = "family"
	FieldLine       = "line"
	FieldStrategy   = "strategy"
	FieldAccount    = "account"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldCount      = "count"
	FieldYear       = "year"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldReport     = "report"
)
