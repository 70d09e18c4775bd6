package history

import (
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *DBClient {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_history.sqlite3")
	client, err := NewDBClient(dbPath)
	if err != nil {
		t.Fatalf("Failed to create db client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})
	return client
}

func TestRecordAndRecent(t *testing.T) {
	db := setupTestDB(t)

	records := []*Resolution{
		{Query: "天青色等烟雨", SongID: "186001", SongName: "青花瓷", Artist: "周杰伦",
			MatchedLine: "天青色等烟雨", NextLine: "而我在等你", CacheHit: false},
		{Query: "而我在等你", SongID: "186001", SongName: "青花瓷", Artist: "周杰伦",
			MatchedLine: "而我在等你", NextLine: "炊烟袅袅升起", CacheHit: true},
	}
	for _, r := range records {
		if err := db.Record(r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if r.ID == "" {
			t.Error("Expected Record to assign an ID")
		}
	}

	rows, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
}

func TestRecentLimit(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 5; i++ {
		if err := db.Record(&Resolution{Query: "q", SongID: "1"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	rows, err := db.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Expected 3 rows with limit 3, got %d", len(rows))
	}
}

func TestCounts(t *testing.T) {
	db := setupTestDB(t)

	db.Record(&Resolution{Query: "a", CacheHit: false})
	db.Record(&Resolution{Query: "b", CacheHit: true})
	db.Record(&Resolution{Query: "c", CacheHit: true})

	total, hits, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 total, got %d", total)
	}
	if hits != 2 {
		t.Errorf("Expected 2 cache hits, got %d", hits)
	}
}

func TestNilClient(t *testing.T) {
	var db *DBClient

	if err := db.Record(&Resolution{}); err == nil {
		t.Error("Expected error from nil client Record")
	}
	if _, err := db.Recent(1); err == nil {
		t.Error("Expected error from nil client Recent")
	}
	if _, _, err := db.Counts(); err == nil {
		t.Error("Expected error from nil client Counts")
	}
	if err := db.Close(); err != nil {
		t.Errorf("Nil client Close must be a no-op, got %v", err)
	}
}
