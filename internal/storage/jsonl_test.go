package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"predictionScope/internal/model"
)

func readLogs(t *testing.T, path string) []model.ContractLog {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var out []model.ContractLog
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var log model.ContractLog
		if err := json.Unmarshal(scanner.Bytes(), &log); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		out = append(out, log)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestJsonlStorageAppendsAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "logs.jsonl")
	store := NewJsonlStorage(path)

	ts := uint64(1700000000)
	logs := []model.ContractLog{
		{
			Network:         model.CeloMainnet,
			ContractName:    model.ContractMarketCore,
			EventName:       model.EventSharesBought,
			BlockNumber:     10,
			TransactionHash: "0xabc",
			LogIndex:        1,
			Args:            map[string]any{"buyer": "0xbbbb", "side": true, "amount": "10"},
			Timestamp:       &ts,
		},
	}

	if err := store.PutLogs(logs); err != nil {
		t.Fatalf("put logs: %v", err)
	}
	if err := store.PutLogs(logs); err != nil {
		t.Fatalf("put logs again: %v", err)
	}
	got := readLogs(t, path)
	if len(got) != 2 {
		t.Fatalf("expected 2 appended lines, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0], logs[0]) {
		t.Fatalf("line mismatch: %+v != %+v", got[0], logs[0])
	}

	if err := store.Truncate(); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if got := readLogs(t, path); len(got) != 0 {
		t.Fatalf("expected empty file after truncate, got %d", len(got))
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.jsonl")
	if err := NewJsonlStorage(path).PutActivities(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch should not create the file")
	}
}
