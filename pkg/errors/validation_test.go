package errors

import (
	"strings"
	"testing"
)

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/diagram.svg", false},
		{"absolute", "/tmp/diagram.png", false},
		{"bare name", "diagram.pdf", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 1100), true},
		{"null byte", "foo\x00.svg", true},
		{"newline", "foo\n.svg", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateOutputPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateUploadName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"json", "classes.json", false},
		{"yaml", "classes.yaml", false},
		{"yml upper", "CLASSES.YML", false},

		{"empty", "", true},
		{"with path /", "dir/classes.json", true},
		{"with path \\", "dir\\classes.json", true},
		{"traversal", "..json", true},
		{"wrong extension", "classes.txt", true},
		{"no extension", "classes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUploadName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUploadName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
