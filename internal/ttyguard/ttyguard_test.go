package ttyguard

import "testing"

func TestSuppress(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		plain bool
		want  bool
	}{
		{"dashboard", []string{"aidscope"}, false, false},
		{"table", []string{"aidscope", "programs", "--partner", "3"}, false, false},
		{"json", []string{"aidscope", "programs", "--json"}, false, true},
		{"csv", []string{"aidscope", "programs", "--csv"}, false, true},
		{"paint", []string{"aidscope", "--region", "KE", "paint"}, false, true},
		{"export", []string{"aidscope", "export", "sqlite", "-o", "x.db"}, false, true},
		{"help", []string{"aidscope", "-h"}, false, true},
		{"env", []string{"aidscope"}, true, true},
		{"binary named like a command", []string{"version"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := suppress(tt.args, tt.plain); got != tt.want {
				t.Errorf("suppress(%v, %v) = %v, want %v", tt.args, tt.plain, got, tt.want)
			}
		})
	}
}
