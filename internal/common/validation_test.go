package common

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	formats := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   bool
	}{
		{name: "known format", format: "markdown", supported: formats},
		{name: "unknown format", format: "yaml", supported: formats, wantErr: true},
		{name: "case sensitive", format: "JSON", supported: formats, wantErr: true},
		{name: "empty format", format: "", supported: formats, wantErr: true},
		{name: "no restriction", format: "anything", supported: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOutputFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputFormatErrorNamesAlternatives(t *testing.T) {
	err := ValidateOutputFormat("xml", []string{"json", "text"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	for _, want := range []string{`"xml"`, "json", "text"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
}
