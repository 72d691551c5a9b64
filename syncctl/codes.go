package syncctl

// Error codes carried by HandleSyncFailed. The class decides the recovery
// strategy: DATA errors keep the offending side dirty and editable so the
// user can fix their input; SYSTEM errors roll the whole system back to the
// last fully-synced snapshot.
const (
	CodeSyncTimeout        = "SYNC_TIMEOUT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeResourceExhausted  = "RESOURCE_EXHAUSTED"
	CodeRuntimeError       = "RUNTIME_ERROR"

	CodeFormatError     = "FORMAT_ERROR"
	CodeParseError      = "PARSE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeSchemaError     = "SCHEMA_ERROR"
)

// Class is the recovery category of a failure code.
type Class int

const (
	// ClassUnknown failures are treated as SYSTEM after one retry allowance
	ClassUnknown Class = iota
	// ClassData failures are the user's input; return to the dirty state
	ClassData
	// ClassSystem failures roll back to the last synced snapshot
	ClassSystem
)

func (c Class) String() string {
	switch c {
	case ClassData:
		return "DATA"
	case ClassSystem:
		return "SYSTEM"
	}
	return "UNKNOWN"
}

// Classify maps an error code to its recovery class.
func Classify(code string) Class {
	switch code {
	case CodeSyncTimeout, CodeServiceUnavailable, CodeResourceExhausted, CodeRuntimeError:
		return ClassSystem
	case CodeFormatError, CodeParseError, CodeValidationError, CodeSchemaError:
		return ClassData
	}
	return ClassUnknown
}
