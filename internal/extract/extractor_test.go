package extract

import (
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		expected    Format
		expectError bool
	}{
		{
			name:        "pdf by content type",
			filename:    "resume.bin",
			contentType: "application/pdf",
			expected:    FormatPDF,
		},
		{
			name:        "docx by content type",
			filename:    "resume.bin",
			contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			expected:    FormatDOCX,
		},
		{
			name:        "json content type is text",
			filename:    "job.bin",
			contentType: "application/json",
			expected:    FormatText,
		},
		{
			name:        "content type wins over extension",
			filename:    "resume.pdf",
			contentType: "text/plain",
			expected:    FormatText,
		},
		{
			name:     "pdf by extension",
			filename: "resume.PDF",
			expected: FormatPDF,
		},
		{
			name:     "docx by extension",
			filename: "resume.docx",
			expected: FormatDOCX,
		},
		{
			name:     "markdown extension is text",
			filename: "resume.md",
			expected: FormatText,
		},
		{
			name:        "unknown extension fails",
			filename:    "resume.odt",
			expectError: true,
		},
		{
			name:        "no extension and no content type fails",
			filename:    "resume",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := DetectFormat(tt.filename, tt.contentType)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got format %q", format)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat returned error: %v", err)
			}
			if format != tt.expected {
				t.Errorf("DetectFormat = %q, want %q", format, tt.expected)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	t.Run("valid utf8 passes through", func(t *testing.T) {
		text, err := DecodeText([]byte("héllo résumé"))
		if err != nil {
			t.Fatalf("DecodeText returned error: %v", err)
		}
		if text != "héllo résumé" {
			t.Errorf("DecodeText = %q, want %q", text, "héllo résumé")
		}
	})

	t.Run("latin1 fallback", func(t *testing.T) {
		// 0xE9 is é in ISO-8859-1 but invalid as a standalone UTF-8 byte
		text, err := DecodeText([]byte{'r', 0xE9, 's', 'u', 'm', 0xE9})
		if err != nil {
			t.Fatalf("DecodeText returned error: %v", err)
		}
		if text != "résumé" {
			t.Errorf("DecodeText = %q, want %q", text, "résumé")
		}
	})
}

func TestTextUnsupportedFormat(t *testing.T) {
	extractor := NewExtractor(nil)
	if _, err := extractor.Text(Format("odt"), []byte("data")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestTextMalformedPDF(t *testing.T) {
	extractor := NewExtractor(nil)
	if _, err := extractor.Text(FormatPDF, []byte("not a pdf")); err == nil {
		t.Error("expected error for malformed PDF data")
	}
}

func TestTextMalformedDOCX(t *testing.T) {
	extractor := NewExtractor(nil)
	if _, err := extractor.Text(FormatDOCX, []byte("not a zip archive")); err == nil {
		t.Error("expected error for malformed DOCX data")
	}
}
