package screening

import (
	"testing"
)

func TestRequirementsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     *JobRequirements
		wantErr bool
	}{
		{
			name:    "valid",
			req:     testRequirements(70),
			wantErr: false,
		},
		{
			name:    "nil requirements",
			req:     nil,
			wantErr: true,
		},
		{
			name: "empty title",
			req: &JobRequirements{
				RequiredSkills: []string{"Go"},
				Threshold:      50,
			},
			wantErr: true,
		},
		{
			name: "no required skills",
			req: &JobRequirements{
				Title:     "Backend Engineer",
				Threshold: 50,
			},
			wantErr: true,
		},
		{
			name: "threshold above range",
			req: &JobRequirements{
				Title:          "Backend Engineer",
				RequiredSkills: []string{"Go"},
				Threshold:      101,
			},
			wantErr: true,
		},
		{
			name: "negative threshold",
			req: &JobRequirements{
				Title:          "Backend Engineer",
				RequiredSkills: []string{"Go"},
				Threshold:      -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRequirementsFromMap(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"title":                "React Developer",
		"required-skills":      []any{"React", "JavaScript", "TypeScript"},
		"preferred-skills":     []any{"Node.js"},
		"min-experience-years": 3,
		"threshold":            70,
	}

	req, err := RequirementsFromMap(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Title != "React Developer" {
		t.Fatalf("unexpected title: %s", req.Title)
	}

	if len(req.RequiredSkills) != 3 {
		t.Fatalf("expected 3 required skills, got %d", len(req.RequiredSkills))
	}

	if req.Threshold != 70 {
		t.Fatalf("expected threshold 70, got %v", req.Threshold)
	}

	if err := req.Validate(); err != nil {
		t.Fatalf("decoded requirements should validate: %v", err)
	}
}
