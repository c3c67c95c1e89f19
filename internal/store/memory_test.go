package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_CreateAssignsIdentity(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	rec, err := mem.Create(ctx, "flashcards", Record{"word": "cat"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec["id"] == nil || rec["id"] == "" {
		t.Error("expected server-assigned id")
	}
	if rec["created_at"] == nil {
		t.Error("expected server-assigned created_at")
	}
	if mem.Len("flashcards") != 1 {
		t.Errorf("expected 1 stored record, got %d", mem.Len("flashcards"))
	}
}

func TestMemory_FilterConditions(t *testing.T) {
	mem := NewMemory()
	mem.Seed("flashcards",
		Record{"id": "a", "user_id": "u1", "word": "cat"},
		Record{"id": "b", "user_id": "u1", "word": "dog"},
		Record{"id": "c", "user_id": "u2", "word": "cat"},
	)
	ctx := context.Background()

	recs, err := mem.Filter(ctx, "flashcards", []Condition{Eq("user_id", "u1")}, ListOptions{})
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 records for u1, got %d", len(recs))
	}

	recs, err = mem.Filter(ctx, "flashcards", []Condition{Eq("user_id", "u1"), Eq("word", "cat")}, ListOptions{})
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(recs) != 1 || recs[0]["id"] != "a" {
		t.Errorf("expected record a, got %+v", recs)
	}

	recs, err = mem.Filter(ctx, "flashcards", []Condition{In("id", "a", "c")}, ListOptions{})
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 records for id in (a, c), got %d", len(recs))
	}
}

func TestMemory_ListSortAndPagination(t *testing.T) {
	mem := NewMemory()
	mem.Seed("notifications",
		Record{"id": "n2", "rank": 2},
		Record{"id": "n1", "rank": 1},
		Record{"id": "n3", "rank": 3},
	)
	ctx := context.Background()

	recs, err := mem.List(ctx, "notifications", ListOptions{OrderBy: "rank"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if recs[0]["id"] != "n1" || recs[2]["id"] != "n3" {
		t.Errorf("ascending sort broken: %+v", recs)
	}

	recs, err = mem.List(ctx, "notifications", ListOptions{OrderBy: "rank", Descending: true, Limit: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recs) != 1 || recs[0]["id"] != "n3" {
		t.Errorf("descending limit broken: %+v", recs)
	}

	recs, err = mem.List(ctx, "notifications", ListOptions{OrderBy: "rank", Offset: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recs) != 1 || recs[0]["id"] != "n3" {
		t.Errorf("offset broken: %+v", recs)
	}
}

func TestMemory_UpdateMergesPartial(t *testing.T) {
	mem := NewMemory()
	mem.Seed("flashcards", Record{"id": "a", "word": "cat", "interval": 1})
	ctx := context.Background()

	rec, err := mem.Update(ctx, "flashcards", "a", Record{"interval": 6})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if rec["interval"] != 6 || rec["word"] != "cat" {
		t.Errorf("partial update broken: %+v", rec)
	}

	if _, err := mem.Update(ctx, "flashcards", "missing", Record{"interval": 6}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_Delete(t *testing.T) {
	mem := NewMemory()
	mem.Seed("groups", Record{"id": "g1"})
	ctx := context.Background()

	if err := mem.Delete(ctx, "groups", "g1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if mem.Len("groups") != 0 {
		t.Error("record not removed")
	}
	if err := mem.Delete(ctx, "groups", "g1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_ReturnedRecordsAreCopies(t *testing.T) {
	mem := NewMemory()
	mem.Seed("users", Record{"id": "u1", "name": "Ann"})
	ctx := context.Background()

	recs, err := mem.List(ctx, "users", ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	recs[0]["name"] = "mutated"

	recs, err = mem.List(ctx, "users", ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if recs[0]["name"] != "Ann" {
		t.Error("caller mutation leaked into stored state")
	}
}
