package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter logs raw sample rows to a JSONL file that replay can read back.
// The file is created (or truncated) on the first WriteSamples call, so an
// existing log is left alone when nothing is ever written.
type FileWriter struct {
	path string
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter prepares a writer for path. The parent directory must exist.
func NewFileWriter(path string) (*FileWriter, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &FileWriter{path: path}, nil
}

// WriteSamples appends rows to the log.
func (f *FileWriter) WriteSamples(rows []SampleRow) error {
	if f.file == nil {
		file, err := os.Create(f.path)
		if err != nil {
			return err
		}
		f.file = file
		f.enc = json.NewEncoder(file)
	}
	for _, r := range rows {
		if err := f.enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file, if it was opened.
func (f *FileWriter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}
