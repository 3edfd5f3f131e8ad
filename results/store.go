package results

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// maxLineSize bounds a single record line on read-back.
const maxLineSize = 1 << 20

// Encode writes rec to w as a single JSON line.
func Encode(w io.Writer, rec Record) error {
	line, err := Marshal(rec)
	if err != nil {
		return err
	}

	_, err = w.Write(line)

	return err
}

// Marshal returns rec as one newline-terminated JSON line.
func Marshal(rec Record) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	return buf.Bytes(), nil
}

// Store appends records to a JSON-lines file. Each Append issues one write
// of one complete line, so an interrupted run leaves only whole records.
type Store struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// OpenStore opens path for appending, creating it and its parent directory
// if needed. Existing content is preserved.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create results dir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results %s: %w", path, err)
	}

	return &Store{path: path, file: f}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Append writes rec as one line.
func (s *Store) Append(rec Record) error {
	line, err := Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}

	return nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.file.Close()
}

// Decode reads records from r, one per line. Blank lines are ignored. Lines
// that are not a JSON object, or longer than maxLineSize, are counted in
// skipped and otherwise ignored.
func Decode(r io.Reader) (recs []Record, skipped int, err error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		line    []byte
		tooLong bool
	)

	for {
		chunk, err := br.ReadSlice('\n')

		if errors.Is(err, bufio.ErrBufferFull) {
			if !tooLong && len(line)+len(chunk) <= maxLineSize {
				line = append(line, chunk...)
			} else {
				tooLong = true
				line = line[:0]
			}

			continue
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return recs, skipped, fmt.Errorf("read results: %w", err)
		}

		switch {
		case tooLong || len(line)+len(chunk) > maxLineSize:
			skipped++
		default:
			line = append(line, chunk...)

			if rec, ok, blank := decodeLine(line); ok {
				recs = append(recs, rec)
			} else if !blank {
				skipped++
			}
		}

		line = line[:0]
		tooLong = false

		if err != nil {
			return recs, skipped, nil
		}
	}
}

func decodeLine(line []byte) (rec Record, ok, blank bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return rec, false, true
	}

	if line[0] != '{' {
		return rec, false, false
	}

	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, false, false
	}

	return rec, true, false
}

// ReadFile decodes all records in the file at path.
func ReadFile(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}
