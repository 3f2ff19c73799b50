package cmd

import "testing"

func TestValidateScreening(t *testing.T) {
	tests := []struct {
		name      string
		config    *ScreeningConfig
		expectErr bool
	}{
		{
			name:      "missing section",
			config:    nil,
			expectErr: true,
		},
		{
			name:      "negative retry limit",
			config:    &ScreeningConfig{Threshold: 70, RetryLimit: -1},
			expectErr: true,
		},
		{
			name:      "negative workers",
			config:    &ScreeningConfig{Threshold: 70, Workers: -3},
			expectErr: true,
		},
		{
			name:      "floor above one",
			config:    &ScreeningConfig{Threshold: 70, ExtractionConfidenceFloor: 1.5},
			expectErr: true,
		},
		{
			name:      "unset optional values",
			config:    &ScreeningConfig{Threshold: 70},
			expectErr: false,
		},
		{
			name: "explicit values",
			config: &ScreeningConfig{
				Threshold:                 70,
				RetryLimit:                2,
				Workers:                   4,
				ExtractionConfidenceFloor: 0.3,
			},
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScreening(tt.config)
			if tt.expectErr && err == nil {
				t.Fatalf("expected an error")
			}
			if !tt.expectErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
