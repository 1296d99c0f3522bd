package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := New(CodeSessionNotBound, "no game active in the channel")
	target := New(CodeSessionNotBound, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with same code to match")
	}
	if stderrors.Is(err, New(CodeSessionAlreadyBound, "other")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeScreenshotPublishFailed, "publish screenshot", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be matchable")
	}
	if err.Error() != "publish screenshot" {
		t.Fatalf("expected internal message, got %q", err.Error())
	}
}

func TestCodeOfTraversesChain(t *testing.T) {
	inner := New(CodeSessionUnknownCode, "invalid session id")
	wrapped := fmt.Errorf("join session: %w", inner)

	if code := CodeOf(wrapped); code != CodeSessionUnknownCode {
		t.Fatalf("expected SESSION_UNKNOWN_CODE, got %s", code)
	}
	if code := CodeOf(stderrors.New("plain")); code != CodeUnknown {
		t.Fatalf("expected UNKNOWN for plain error, got %s", code)
	}
	if code := CodeOf(nil); code != CodeUnknown {
		t.Fatalf("expected UNKNOWN for nil error, got %s", code)
	}
}

func TestUserFacingCodes(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeSessionAlreadyBound, true},
		{CodeSessionUnknownCode, true},
		{CodeSessionNotBound, true},
		{CodeSessionPermissionDenied, true},
		{CodeROMInvalidHeader, true},
		{CodeScreenshotPublishFailed, false},
		{CodeEngineFailure, false},
		{CodeNotFound, false},
		{CodeUnknown, false},
	}
	for _, tt := range tests {
		if got := tt.code.UserFacing(); got != tt.want {
			t.Fatalf("UserFacing(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
