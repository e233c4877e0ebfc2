package jsondb

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setupPeople(t *testing.T) *Store {
	t.Helper()
	s, _ := setupStore(t)
	mustInsert(t, s,
		map[string]any{"name": "a", "team": "x", "age": 1},
		map[string]any{"name": "b", "team": "y", "age": 2},
		map[string]any{"name": "c", "team": "x", "age": 3},
	)
	return s
}

func TestUpdate(t *testing.T) {
	t.Run("FindOneAndUpdate", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindOneAndUpdate(Filter{"team": "x"}, map[string]any{"age": 10, "new": true})
		if err != nil {
			t.Fatal(err)
		}
		want := Record{"_id": "id-1", "name": "a", "team": "x", "age": 10.0, "new": true}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FindOneAndUpdate mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, s.FindByID("id-1")); diff != "" {
			t.Errorf("stored mismatch (-want +got):\n%s", diff)
		}
		if s.FindByID("id-3")["age"] != 3.0 {
			t.Error("second match was updated")
		}
		got, err = s.FindOneAndUpdate(Filter{"team": "z"}, map[string]any{"age": 0})
		if err != nil || got != nil {
			t.Errorf("FindOneAndUpdate(miss) = %v, %v; want nil", got, err)
		}
	})

	t.Run("FindManyAndUpdate", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindManyAndUpdate(Filter{"team": "x"}, map[string]any{"team": "w"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID() != "id-1" || got[1].ID() != "id-3" {
			t.Errorf("FindManyAndUpdate = %v", got)
		}
		if n, _ := s.Find(Filter{"team": "w"}); len(n) != 2 {
			t.Errorf("Find(team=w) = %d records, want 2", len(n))
		}
		got, err = s.FindManyAndUpdate(Filter{"team": "z"}, map[string]any{"a": 1})
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("FindManyAndUpdate(miss) = %#v, want empty slice", got)
		}
	})

	t.Run("counts", func(t *testing.T) {
		s := setupPeople(t)
		if n, err := s.UpdateOne(nil, map[string]any{"k": 1}); err != nil || n != 1 {
			t.Errorf("UpdateOne = %d, %v", n, err)
		}
		if n, err := s.UpdateMany(nil, map[string]any{"k": 2}); err != nil || n != 3 {
			t.Errorf("UpdateMany = %d, %v", n, err)
		}
		if n, err := s.UpdateMany(Filter{"k": 3}, map[string]any{"k": 4}); err != nil || n != 0 {
			t.Errorf("UpdateMany(miss) = %d, %v", n, err)
		}
	})

	t.Run("_id is preserved", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindOneAndUpdate(Filter{"name": "b"}, map[string]any{"_id": "hijack", "age": 5})
		if err != nil {
			t.Fatal(err)
		}
		if got.ID() != "id-2" {
			t.Errorf("ID() = %q, want id-2", got.ID())
		}
		if s.FindByID("hijack") != nil {
			t.Error("record reachable under patched _id")
		}
	})

	t.Run("shallow merge", func(t *testing.T) {
		s, _ := setupStore(t)
		mustInsert(t, s, map[string]any{"obj": map[string]any{"a": 1, "b": 2}})
		got, err := s.FindByIDAndUpdate("id-1", map[string]any{"obj": map[string]any{"a": 9}})
		if err != nil {
			t.Fatal(err)
		}
		want := Record{"_id": "id-1", "obj": map[string]any{"a": 9.0}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("nested object not replaced (-want +got):\n%s", diff)
		}
	})

	t.Run("patch values are not shared", func(t *testing.T) {
		s := setupPeople(t)
		if _, err := s.UpdateMany(nil, map[string]any{"list": []any{"v"}}); err != nil {
			t.Fatal(err)
		}
		s.mu.Lock()
		r1, _ := s.docs.Get("id-1")
		r1["list"].([]any)[0] = "changed"
		s.mu.Unlock()
		if got := s.FindByID("id-2")["list"].([]any)[0]; got != "v" {
			t.Errorf("records alias the same patch value: %v", got)
		}
	})

	t.Run("FindByIDAndUpdate missing", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindByIDAndUpdate("nope", map[string]any{"a": 1})
		if err != nil || got != nil {
			t.Errorf("FindByIDAndUpdate(nope) = %v, %v; want nil", got, err)
		}
	})

	t.Run("invalid patch", func(t *testing.T) {
		s := setupPeople(t)
		if _, err := s.UpdateOne(nil, map[string]any{"f": func() {}}); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("UpdateOne error = %v, want ErrInvalidRecord", err)
		}
	})
}

func TestReplace(t *testing.T) {
	t.Run("FindOneAndReplace", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindOneAndReplace(Filter{"name": "b"}, map[string]any{"_id": "ignored", "only": "this"})
		if err != nil {
			t.Fatal(err)
		}
		want := Record{"_id": "id-2", "only": "this"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FindOneAndReplace mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, s.FindByID("id-2")); diff != "" {
			t.Errorf("stored mismatch (-want +got):\n%s", diff)
		}
		if got, err := s.FindOneAndReplace(Filter{"name": "b"}, map[string]any{}); err != nil || got != nil {
			t.Errorf("FindOneAndReplace(miss) = %v, %v; want nil", got, err)
		}
	})

	t.Run("keeps enumeration order", func(t *testing.T) {
		s := setupPeople(t)
		if _, err := s.FindOneAndReplace(Filter{"name": "a"}, map[string]any{"name": "z"}); err != nil {
			t.Fatal(err)
		}
		all, _ := s.Find(nil)
		var ids []string
		for _, r := range all {
			ids = append(ids, r.ID())
		}
		if diff := cmp.Diff([]string{"id-1", "id-2", "id-3"}, ids); diff != "" {
			t.Errorf("order changed (-want +got):\n%s", diff)
		}
	})

	t.Run("FindManyAndReplace", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindManyAndReplace(Filter{"team": "x"}, map[string]any{"list": []any{1}})
		if err != nil {
			t.Fatal(err)
		}
		want := []Record{{"_id": "id-1", "list": []any{1.0}}, {"_id": "id-3", "list": []any{1.0}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FindManyAndReplace mismatch (-want +got):\n%s", diff)
		}
		// Each replaced record owns its values.
		s.mu.Lock()
		r1, _ := s.docs.Get("id-1")
		r1["list"].([]any)[0] = "changed"
		s.mu.Unlock()
		if got := s.FindByID("id-3")["list"].([]any)[0]; got != 1.0 {
			t.Errorf("replaced records alias each other: %v", got)
		}
	})

	t.Run("counts", func(t *testing.T) {
		s := setupPeople(t)
		if n, err := s.ReplaceOne(Filter{"team": "x"}, map[string]any{"r": 1}); err != nil || n != 1 {
			t.Errorf("ReplaceOne = %d, %v", n, err)
		}
		if n, err := s.ReplaceMany(nil, map[string]any{"r": 2}); err != nil || n != 3 {
			t.Errorf("ReplaceMany = %d, %v", n, err)
		}
	})

	t.Run("FindByIDAndReplace", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindByIDAndReplace("id-3", map[string]any{"_id": "other", "v": 1})
		if err != nil {
			t.Fatal(err)
		}
		want := Record{"_id": "id-3", "v": 1.0}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FindByIDAndReplace mismatch (-want +got):\n%s", diff)
		}
		if got, err := s.FindByIDAndReplace("nope", map[string]any{}); err != nil || got != nil {
			t.Errorf("FindByIDAndReplace(nope) = %v, %v; want nil", got, err)
		}
		if s.Count() != 3 {
			t.Errorf("Count() = %d, want 3", s.Count())
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("FindOneAndDelete", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindOneAndDelete(Filter{"team": "x"})
		if err != nil {
			t.Fatal(err)
		}
		if got.ID() != "id-1" {
			t.Errorf("FindOneAndDelete = %v, want id-1", got)
		}
		if s.Count() != 2 {
			t.Errorf("Count() = %d, want 2", s.Count())
		}
		if got, err := s.FindOneAndDelete(Filter{"team": "z"}); err != nil || got != nil {
			t.Errorf("FindOneAndDelete(miss) = %v, %v; want nil", got, err)
		}
	})

	t.Run("FindManyAndDelete", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindManyAndDelete(Filter{"team": "x"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0]["name"] != "a" || got[1]["name"] != "c" {
			t.Errorf("FindManyAndDelete = %v", got)
		}
		if ok, _ := s.Exists(Filter{"team": "x"}); ok {
			t.Error("deleted records still match")
		}
		if s.Count() != 1 {
			t.Errorf("Count() = %d, want 1", s.Count())
		}
	})

	t.Run("counts", func(t *testing.T) {
		s := setupPeople(t)
		if n, err := s.DeleteOne(nil); err != nil || n != 1 {
			t.Errorf("DeleteOne = %d, %v", n, err)
		}
		if n, err := s.DeleteMany(Filter{"team": "z"}); err != nil || n != 0 {
			t.Errorf("DeleteMany(miss) = %d, %v", n, err)
		}
		if n, err := s.DeleteMany(nil); err != nil || n != 2 {
			t.Errorf("DeleteMany = %d, %v", n, err)
		}
		if s.Count() != 0 {
			t.Errorf("Count() = %d, want 0", s.Count())
		}
	})

	t.Run("FindByIDAndDelete", func(t *testing.T) {
		s := setupPeople(t)
		got, err := s.FindByIDAndDelete("id-2")
		if err != nil {
			t.Fatal(err)
		}
		if got["name"] != "b" {
			t.Errorf("FindByIDAndDelete = %v", got)
		}
		if s.FindByID("id-2") != nil {
			t.Error("record still present")
		}
		if got, err := s.FindByIDAndDelete("id-2"); err != nil || got != nil {
			t.Errorf("second FindByIDAndDelete = %v, %v; want nil", got, err)
		}
	})

	t.Run("identifier is not reused", func(t *testing.T) {
		s := setupPeople(t)
		if _, err := s.FindByIDAndDelete("id-3"); err != nil {
			t.Fatal(err)
		}
		rec, err := s.InsertOne(map[string]any{"name": "d"})
		if err != nil {
			t.Fatal(err)
		}
		if rec.ID() != "id-4" {
			t.Errorf("ID() = %q, want id-4", rec.ID())
		}
	})
}
