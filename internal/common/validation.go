package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat reports whether format is one of the configured
// output formats. An empty list means no restriction. The comparison is
// case sensitive; formats are registered lowercase.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format %q (supported: %s)",
		format, strings.Join(supportedFormats, ", "))
}
