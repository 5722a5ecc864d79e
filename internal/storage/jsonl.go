package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"predictionScope/internal/model"
)

// JsonlStorage appends records to a JSONL file, one JSON object per line.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Path returns the output file path.
func (s *JsonlStorage) Path() string {
	return s.path
}

// PutLogs appends contract logs.
func (s *JsonlStorage) PutLogs(logs []model.ContractLog) error {
	return writeLines(s, logs)
}

// PutActivities appends user activities.
func (s *JsonlStorage) PutActivities(activities []model.UserActivity) error {
	return writeLines(s, activities)
}

// Truncate empties the output file so the next write starts a fresh snapshot.
func (s *JsonlStorage) Truncate() error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("truncate output file: %w", err)
	}
	return file.Close()
}

func (s *JsonlStorage) ensureDir() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}

func writeLines[T any](s *JsonlStorage, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
