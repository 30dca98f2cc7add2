package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDocumentPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("Go engineer with 3 years of Go"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	fp := NewFileProcessor(nil)
	content, err := fp.ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument returned error: %v", err)
	}
	if content != "Go engineer with 3 years of Go" {
		t.Errorf("content = %q", content)
	}
}

func TestReadDocumentUnknownExtensionFallsBackToText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.unknown")
	if err := os.WriteFile(path, []byte("plain content"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	fp := NewFileProcessor(nil)
	content, err := fp.ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument returned error: %v", err)
	}
	if content != "plain content" {
		t.Errorf("content = %q", content)
	}
}

func TestReadDocumentMissingFile(t *testing.T) {
	fp := NewFileProcessor(nil)
	if _, err := fp.ReadDocument(filepath.Join(t.TempDir(), "does-not-exist.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateAndReadDocuments(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	job := filepath.Join(dir, "job.json")
	if err := os.WriteFile(resume, []byte("resume text"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := os.WriteFile(job, []byte(`{"title": "Role", "description": "Go"}`), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	fp := NewFileProcessor(nil)
	contents, err := fp.ValidateAndReadDocuments(resume, job)
	if err != nil {
		t.Fatalf("ValidateAndReadDocuments returned error: %v", err)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0] != "resume text" {
		t.Errorf("contents[0] = %q", contents[0])
	}
	if contents[1] != `{"title": "Role", "description": "Go"}` {
		t.Errorf("contents[1] = %q", contents[1])
	}
}

func TestValidateAndReadDocumentsRejectsDirectory(t *testing.T) {
	fp := NewFileProcessor(nil)
	if _, err := fp.ValidateAndReadDocuments(t.TempDir()); err == nil {
		t.Error("expected error when input path is a directory")
	}
}

func TestRecognizedExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"resume.txt", true},
		{"resume.md", true},
		{"resume.MARKDOWN", true},
		{"job.json", true},
		{"resume.pdf", true},
		{"resume.PDF", true},
		{"resume.docx", true},
		{"resume.doc", false},
		{"resume", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := recognizedExtension(tt.filename); got != tt.expected {
				t.Errorf("recognizedExtension(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestValidateOutputFile(t *testing.T) {
	fp := NewFileProcessor(nil)

	if err := fp.ValidateOutputFile(""); err != nil {
		t.Errorf("empty path (stdout) should be valid, got %v", err)
	}

	nested := filepath.Join(t.TempDir(), "reports", "out.json")
	if err := fp.ValidateOutputFile(nested); err != nil {
		t.Errorf("ValidateOutputFile(%q) returned error: %v", nested, err)
	}
	if _, err := os.Stat(filepath.Dir(nested)); err != nil {
		t.Errorf("parent directory was not created: %v", err)
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "report.md")

	fp := NewFileProcessor(nil)
	if err := fp.WriteFile(path, "# Report"); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(data) != "# Report" {
		t.Errorf("content = %q", string(data))
	}
}
