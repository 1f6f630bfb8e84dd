package vector

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteIndex_AddSearch(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	err = idx.Add(ctx, []Record{
		rec("a", "handbook.pdf", 1, 0, 0),
		rec("b", "handbook.pdf", 0, 1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 2 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Record.ID != "b" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Record.Content != "chunk b" {
		t.Errorf("Content=%q", results[0].Record.Content)
	}
}

func TestSQLiteIndex_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	idx, err := NewSQLiteIndex(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	err = idx.Add(ctx, []Record{
		rec("a", "policy.docx", 1, 0),
		rec("b", "policy.docx", 0, 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteIndex(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if reopened.Size() != 2 {
		t.Fatalf("Size after reopen=%d", reopened.Size())
	}
	results, err := reopened.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Record.ID != "a" || results[0].Record.Source != "policy.docx" {
		t.Errorf("unexpected result after reopen: %+v", results[0].Record)
	}
}

func TestSQLiteIndex_EmptyIndex(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	results, err := idx.Search(context.Background(), []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("empty index search should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if idx.Size() != 0 {
		t.Errorf("Size=%d", idx.Size())
	}
}

func TestSQLiteIndex_DuplicateIDRollsBack(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()
	if err := idx.Add(ctx, []Record{rec("a", "x.pdf", 1, 0)}); err != nil {
		t.Fatal(err)
	}
	// Second batch collides on id "a"; the whole batch must be rolled back.
	err = idx.Add(ctx, []Record{rec("fresh", "y.pdf", 0, 1), rec("a", "y.pdf", 1, 1)})
	if err == nil {
		t.Fatal("expected insert error for duplicate id")
	}
	if idx.Size() != 1 {
		t.Errorf("partial batch visible: Size=%d", idx.Size())
	}
	results, _ := idx.Search(ctx, []float32{0, 1}, 5)
	for _, r := range results {
		if r.Record.ID == "fresh" {
			t.Error("rolled-back record is searchable")
		}
	}
}
