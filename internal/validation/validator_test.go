package validation

import (
	"errors"
	"strings"
	"testing"

	common_models "go-analytics/internal/common/models"
)

type sampleRequest struct {
	Source string `json:"data_source" validate:"required"`
	Limit  int    `json:"limit" validate:"min=1"`
	Start  string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr string
	}{
		{"valid", sampleRequest{Source: "orders", Limit: 5, Start: "2024-01-01"}, ""},
		{"missing source", sampleRequest{Limit: 5}, "data_source is required"},
		{"zero limit", sampleRequest{Source: "orders"}, "limit must be at least 1"},
		{"bad date", sampleRequest{Source: "orders", Limit: 1, Start: "01/02/2024"}, "start_date must be a date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, common_models.ErrInvalidRequest) {
				t.Errorf("expected InvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
