package speech

import (
	"errors"
	"testing"
)

func TestEngineErrorFormatting(t *testing.T) {
	cause := errors.New("exit status 1")

	tests := []struct {
		name string
		err  *EngineError
		want string
	}{
		{
			name: "with cause",
			err:  NewEngineError(ErrorCodeEngineFailure, "speech synthesis failed", 3, cause),
			want: "ENGINE_FAILURE: speech synthesis failed: exit status 1",
		},
		{
			name: "without cause",
			err:  NewEngineError(ErrorCodeEngineUnavailable, "espeak-ng not found", 0, nil),
			want: "ENGINE_UNAVAILABLE: espeak-ng not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineErrorUnwrap(t *testing.T) {
	err := error(NewEngineError(ErrorCodeInvalidInput, "text too long", 1, ErrEmptyInput))
	if !errors.Is(err, ErrEmptyInput) {
		t.Error("errors.Is should see through EngineError")
	}

	var ee *EngineError
	if !errors.As(err, &ee) || ee.RequestID != 1 {
		t.Errorf("errors.As() = %v", ee)
	}
}
