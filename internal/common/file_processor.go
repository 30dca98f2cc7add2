package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jobmatcher/internal/errors"
	"jobmatcher/internal/extract"
)

// Extensions the CLI recognizes. Text extensions are read as-is, document
// extensions go through binary extraction; anything else is treated as
// plain text with a warning.
var (
	textExtensions     = map[string]bool{".txt": true, ".md": true, ".markdown": true, ".text": true, ".json": true}
	documentExtensions = map[string]bool{".pdf": true, ".docx": true}
)

func recognizedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return textExtensions[ext] || documentExtensions[ext]
}

// FileProcessor reads input documents and writes command output.
type FileProcessor struct {
	logger    *errors.Logger
	extractor *extract.Extractor
}

func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{
		logger:    logger,
		extractor: extract.NewExtractor(logger),
	}
}

// ReadFileBytes reads a file whole, wrapping failures in coded errors.
func (fp *FileProcessor) ReadFileBytes(filename string) ([]byte, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	return content, nil
}

// ReadDocument reads a file and extracts its plain text. PDF and DOCX files
// go through the document extractor; everything else is decoded as text.
func (fp *FileProcessor) ReadDocument(filename string) (string, error) {
	data, err := fp.ReadFileBytes(filename)
	if err != nil {
		return "", err
	}

	format, err := extract.DetectFormat(filename, "")
	if err != nil {
		format = extract.FormatText
	}
	return fp.extractor.Text(format, data)
}

// WriteFile writes content to filename, creating parent directories.
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateAndReadDocuments reads each input file, extracting plain text
// from binary document formats along the way. The first bad file aborts
// the whole batch.
func (fp *FileProcessor) ValidateAndReadDocuments(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))
	for i, filename := range filenames {
		if err := checkInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		if !recognizedExtension(filename) {
			if fp.logger != nil {
				fp.logger.Warn("File extension not recognized, treating as plain text",
					"filename", filename)
			} else {
				fmt.Fprintf(os.Stderr, "Warning: %s has an unrecognized extension\n", filename)
			}
		}

		content, err := fp.ReadDocument(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}
	return contents, nil
}

// checkInputFile verifies the path names an existing, readable regular file.
func checkInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return file.Close()
}

// ValidateOutputFile accepts an empty path (stdout) and otherwise makes
// sure the parent directory exists, creating it when needed.
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewValidationError("INVALID_OUTPUT_FILE",
				fmt.Sprintf("Invalid output file: %s", filename),
				fmt.Errorf("cannot create directory %s: %w", dir, err))
		}
	}
	return nil
}
