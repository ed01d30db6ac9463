package feeds

import "testing"

func TestRuleSet_Stable(t *testing.T) {
	rs := RuleSetFor("stable")

	tests := []struct {
		name       string
		title      string
		body       string
		wantExcl   bool
		wantReason string
	}{
		{
			name:       "numeric pre-release suffix",
			title:      "0.0.389-0",
			body:       "regular notes",
			wantExcl:   true,
			wantReason: "pre-release suffix",
		},
		{
			name:       "pre-release body marker",
			title:      "0.0.389",
			body:       "This is a Pre-release build for testing",
			wantExcl:   true,
			wantReason: "pre-release marker",
		},
		{
			name:       "marker is case-insensitive",
			title:      "1.2.0",
			body:       "PRE-RELEASE",
			wantExcl:   true,
			wantReason: "pre-release marker",
		},
		{
			name:     "stable release passes",
			title:    "0.0.389",
			body:     "- Added a feature\n- Fixed a bug",
			wantExcl: false,
		},
		{
			name:     "version with dots but no suffix passes",
			title:    "v1.2.3",
			body:     "",
			wantExcl: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, excluded := rs.IsExcluded(tt.title, tt.body)
			if excluded != tt.wantExcl {
				t.Fatalf("IsExcluded(%q, %q) = %v, want %v", tt.title, tt.body, excluded, tt.wantExcl)
			}
			if excluded && reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestRuleSet_Submodule(t *testing.T) {
	rs := RuleSetFor("submodule")

	tests := []struct {
		name     string
		title    string
		body     string
		wantExcl bool
	}{
		{
			name:     "go namespace excluded regardless of body",
			title:    "go/v0.1.16",
			body:     "perfectly stable notes",
			wantExcl: true,
		},
		{
			name:     "namespace match is case-insensitive",
			title:    "Go/v0.1.16",
			wantExcl: true,
		},
		{
			name:     "preview marker excluded",
			title:    "v2.0.0-preview",
			wantExcl: true,
		},
		{
			name:     "generic stable rules still apply",
			title:    "v1.0.0-3",
			wantExcl: true,
		},
		{
			name:     "plain stable release passes",
			title:    "v1.0.0",
			body:     "notes",
			wantExcl: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, excluded := rs.IsExcluded(tt.title, tt.body); excluded != tt.wantExcl {
				t.Errorf("IsExcluded(%q, %q) = %v, want %v", tt.title, tt.body, excluded, tt.wantExcl)
			}
		})
	}
}

func TestRuleSetFor_UnknownFallsBackToStable(t *testing.T) {
	rs := RuleSetFor("bogus")
	if rs.Name() != "stable" {
		t.Errorf("RuleSetFor(bogus).Name() = %q, want stable", rs.Name())
	}
}
