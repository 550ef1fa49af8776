package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "report not found",
			},
			want: "report not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeExchangeFailed,
				Message: "please try signing in again",
				Cause:   errors.New("token rejected"),
			},
			want: "please try signing in again: token rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeLoginFailed, "login failed")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through AppError")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "nothing"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "nothing %d", 1); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "email is required")
	if !IsValidation(err) {
		t.Error("expected validation error")
	}
	if GetField(err) != "email" {
		t.Errorf("GetField() = %q, want email", GetField(err))
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "not found", err: NotFoundf("report %s", "R1"), check: IsNotFound, want: true},
		{name: "unauthenticated", err: Unauthenticated("sign in first"), check: IsUnauthenticated, want: true},
		{name: "exchange failed", err: Wrap(errors.New("x"), ErrCodeExchangeFailed, "exchange"), check: IsExchangeFailed, want: true},
		{name: "job failed", err: Wrap(errors.New("x"), ErrCodeJobFailed, "job"), check: IsJobFailed, want: true},
		{
			name:  "wrapped by fmt",
			err:   fmt.Errorf("outer: %w", Wrap(errors.New("x"), ErrCodeJobFailed, "job")),
			check: IsJobFailed,
			want:  true,
		},
		{name: "plain error", err: errors.New("plain"), check: IsNotFound, want: false},
		{name: "different code", err: Internalf("boom"), check: IsValidation, want: false},
		{name: "nil", err: nil, check: IsExchangeFailed, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Internalf("boom %d", 1)); got != ErrCodeInternal {
		t.Errorf("GetCode() = %q", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}
