package local_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"taskr/internal/backend/local"
	"taskr/internal/service"
)

func openStorage(t *testing.T, path string) *local.Storage {
	t.Helper()
	st, err := local.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func newStore(t *testing.T) (*local.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	store := local.NewStore(openStorage(t, path), nil)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_LoadEmpty(t *testing.T) {
	store, _ := newStore(t)

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %+v", tasks)
	}
}

func TestStore_CreateAppendsAndPersists(t *testing.T) {
	store, path := newStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "  first "); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, "second"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks := store.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	first := tasks[0]
	if first.Text != "first" || first.Completed {
		t.Errorf("unexpected first task %+v", first)
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Error("expected equal timestamps on create")
	}
	if tasks[0].ID == tasks[1].ID {
		t.Error("expected unique ids for back-to-back creates")
	}

	// A second handle on the same file sees the persisted list.
	reopened := local.NewStore(openStorage(t, path), nil)
	defer reopened.Close()
	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Text != "second" || loaded[0].ID != first.ID {
		t.Errorf("unexpected persisted list %+v", loaded)
	}
}

func TestStore_CreateRejectsEmpty(t *testing.T) {
	store, _ := newStore(t)

	err := store.Create(context.Background(), "   ")
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["text"] == "" {
		t.Error("expected text field error")
	}
	if len(store.Tasks()) != 0 {
		t.Error("list should be unchanged")
	}
}

func TestStore_Toggle(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	before := store.Tasks()[0]

	if err := store.Toggle(ctx, before.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	after := store.Tasks()[0]
	if !after.Completed {
		t.Error("expected completed")
	}
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Error("updated_at went backwards")
	}
	if after.Text != "A" || after.ID != before.ID {
		t.Errorf("unexpected change %+v", after)
	}

	if err := store.Toggle(ctx, before.ID); err != nil {
		t.Fatal(err)
	}
	if store.Tasks()[0].Completed {
		t.Error("expected second toggle to flip back")
	}
}

func TestStore_ToggleUnknownID(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	before := store.Tasks()

	if err := store.Toggle(ctx, -1); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	after := store.Tasks()
	if len(after) != 1 || after[0] != before[0] {
		t.Errorf("list changed: %+v", after)
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	for _, text := range []string{"A", "B", "C"} {
		if err := store.Create(ctx, text); err != nil {
			t.Fatal(err)
		}
	}
	b := store.Tasks()[1]

	if err := store.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	tasks := store.Tasks()
	if len(tasks) != 2 || tasks[0].Text != "A" || tasks[1].Text != "C" {
		t.Errorf("unexpected list %+v", tasks)
	}

	if err := store.Delete(ctx, b.ID); err != nil {
		t.Errorf("deleting unknown id should be a no-op, got %v", err)
	}
	if len(store.Tasks()) != 2 {
		t.Error("list should be unchanged")
	}
}

func TestStore_LoadCorruptBlobResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	st := openStorage(t, path)
	if err := st.SetItem(context.Background(), local.TasksKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	store := local.NewStore(st, nil)
	defer store.Close()

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected corrupt blob to be swallowed, got %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %+v", tasks)
	}
}

func TestStorage_CookieConsent(t *testing.T) {
	st := openStorage(t, filepath.Join(t.TempDir(), "nested", "local.db"))
	defer st.Close()
	ctx := context.Background()

	ok, err := st.CookieConsent(ctx)
	if err != nil || ok {
		t.Fatalf("expected no consent yet, got %v %v", ok, err)
	}
	if err := st.AcceptCookieConsent(ctx); err != nil {
		t.Fatal(err)
	}
	ok, err = st.CookieConsent(ctx)
	if err != nil || !ok {
		t.Fatalf("expected consent, got %v %v", ok, err)
	}
}

func TestStorage_Items(t *testing.T) {
	st := openStorage(t, filepath.Join(t.TempDir(), "local.db"))
	defer st.Close()
	ctx := context.Background()

	if _, err := st.GetItem(ctx, "missing"); !errors.Is(err, local.ErrNoItem) {
		t.Errorf("expected ErrNoItem, got %v", err)
	}
	if err := st.SetItem(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetItem(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, err := st.GetItem(ctx, "k"); err != nil || v != "v2" {
		t.Errorf("expected v2, got %q %v", v, err)
	}
	if err := st.RemoveItem(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetItem(ctx, "k"); !errors.Is(err, local.ErrNoItem) {
		t.Errorf("expected ErrNoItem after remove, got %v", err)
	}
}
