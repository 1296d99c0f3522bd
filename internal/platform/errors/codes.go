// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionAlreadyBound     Code = "SESSION_ALREADY_BOUND"
	CodeSessionUnknownCode      Code = "SESSION_UNKNOWN_CODE"
	CodeSessionNotBound         Code = "SESSION_NOT_BOUND"
	CodeSessionPermissionDenied Code = "SESSION_PERMISSION_DENIED"

	// Collaborator errors
	CodeScreenshotPublishFailed Code = "SCREENSHOT_PUBLISH_FAILED"
	CodeEngineFailure           Code = "ENGINE_FAILURE"

	// ROM errors
	CodeROMInvalidHeader   Code = "ROM_INVALID_HEADER"
	CodeROMUnknownID       Code = "ROM_UNKNOWN_ID"
	CodeROMUnsupportedKind Code = "ROM_UNSUPPORTED_KIND"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// UserFacing reports whether a code describes a user error that should be
// reported back to the issuing channel rather than swallowed.
func (c Code) UserFacing() bool {
	switch c {
	case CodeSessionAlreadyBound,
		CodeSessionUnknownCode,
		CodeSessionNotBound,
		CodeSessionPermissionDenied,
		CodeROMInvalidHeader,
		CodeROMUnknownID,
		CodeROMUnsupportedKind:
		return true
	default:
		return false
	}
}
