package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "body over the size cap",
			err:        &http.MaxBytesError{Limit: 64},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "wrapped max bytes error",
			err:        fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 64}),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "malformed json",
			err:        errors.New("invalid character 'n'"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DecodeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}
