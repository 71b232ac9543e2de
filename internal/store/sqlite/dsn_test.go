package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute path", input: "sqlite:///var/lib/recipes.db", expected: "/var/lib/recipes.db"},
		{name: "explicit relative", input: "sqlite://./recipes.db", expected: "./recipes.db"},
		{name: "bare relative", input: "sqlite://out/recipes.db", expected: "./out/recipes.db"},
		{name: "escaped path", input: "sqlite://my%20recipes.db", expected: "./my recipes.db"},
		{name: "query kept", input: "sqlite://recipes.db?_pragma=foo", expected: "./recipes.db?_pragma=foo"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
