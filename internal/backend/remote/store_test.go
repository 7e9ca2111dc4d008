package remote_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"taskr/internal/backend/remote"
	"taskr/internal/service"
	"taskr/internal/testutil"
)

func newStore(t *testing.T) (*remote.Store, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	client := remote.New(api.URL, remote.WithHTTPClient(api.Client()))
	return remote.NewStore(client, nil), api
}

func TestStore_Load(t *testing.T) {
	store, api := newStore(t)
	api.AddTask("A", false)
	api.AddTask("B", true)

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Text != "A" || !tasks[1].Completed {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
	if api.LastRequestID() == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestStore_LoadFailureKeepsPreviousList(t *testing.T) {
	store, api := newStore(t)
	api.AddTask("A", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	api.Fail(http.MethodGet, http.StatusInternalServerError)
	tasks, err := store.Load(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(tasks) != 1 || len(store.Tasks()) != 1 {
		t.Errorf("expected previous list kept, got %+v", store.Tasks())
	}
}

func TestStore_CreatePostsTrimmedTextAndReloads(t *testing.T) {
	store, api := newStore(t)

	if err := store.Create(context.Background(), "  Buy milk  "); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Text != "Buy milk" || tasks[0].Completed {
		t.Errorf("unexpected task %+v", tasks[0])
	}

	reqs := api.Requests()
	want := []string{"POST /api/tasks", "GET /api/tasks"}
	if len(reqs) != len(want) || reqs[0] != want[0] || reqs[1] != want[1] {
		t.Errorf("expected requests %v, got %v", want, reqs)
	}
}

func TestStore_CreateEmptyIsRejectedWithoutRequest(t *testing.T) {
	store, api := newStore(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		err := store.Create(context.Background(), text)
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Create(%q): expected ValidationError, got %v", text, err)
		}
	}
	if n := len(api.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
	if len(store.Tasks()) != 0 {
		t.Error("list should be unchanged")
	}
}

func TestStore_CreateFailureStillReloads(t *testing.T) {
	store, api := newStore(t)
	api.AddTask("existing", false)
	api.Fail(http.MethodPost, http.StatusInternalServerError)

	err := store.Create(context.Background(), "new")
	if err == nil {
		t.Fatal("expected error from failed POST")
	}
	if tasks := store.Tasks(); len(tasks) != 1 || tasks[0].Text != "existing" {
		t.Errorf("expected reloaded server list, got %+v", tasks)
	}
}

func TestStore_Toggle(t *testing.T) {
	store, api := newStore(t)
	seeded := api.AddTask("A", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if err := store.Toggle(ctx, seeded.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	tasks := store.Tasks()
	if !tasks[0].Completed {
		t.Error("expected task completed")
	}
	if tasks[0].UpdatedAt.Before(seeded.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v < %v", tasks[0].UpdatedAt, seeded.UpdatedAt)
	}
	if tasks[0].Text != "A" {
		t.Errorf("text changed: %q", tasks[0].Text)
	}
	if !api.StoredTasks()[0].Completed {
		t.Error("expected server copy completed")
	}
}

func TestStore_ToggleUnknownIDSendsNothing(t *testing.T) {
	store, api := newStore(t)
	api.AddTask("A", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	before := len(api.Requests())

	err := store.Toggle(ctx, 999)
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(api.Requests()) != before {
		t.Error("expected no request for unknown id")
	}
	if store.Tasks()[0].Completed {
		t.Error("list should be unchanged")
	}
}

func TestStore_ToggleFailureKeepsOptimisticState(t *testing.T) {
	store, api := newStore(t)
	seeded := api.AddTask("A", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	api.Fail(http.MethodPut, http.StatusServiceUnavailable)
	if err := store.Toggle(ctx, seeded.ID); err == nil {
		t.Fatal("expected error")
	}
	if !store.Tasks()[0].Completed {
		t.Error("expected optimistic flip to be kept")
	}
	if api.StoredTasks()[0].Completed {
		t.Error("server copy should be unchanged")
	}
}

func TestStore_Delete(t *testing.T) {
	store, api := newStore(t)
	a := api.AddTask("A", false)
	api.AddTask("B", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "B" {
		t.Errorf("unexpected tasks after delete: %+v", tasks)
	}
	if len(api.StoredTasks()) != 1 {
		t.Error("expected server copy deleted")
	}
}

func TestStore_DeleteUnknownIDIsNoop(t *testing.T) {
	store, api := newStore(t)
	api.AddTask("A", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, 42); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if len(store.Tasks()) != 1 {
		t.Error("list should be unchanged")
	}
}

func TestStore_DeleteFailureRemovesLocally(t *testing.T) {
	store, api := newStore(t)
	a := api.AddTask("A", false)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}

	api.Fail(http.MethodDelete, http.StatusInternalServerError)
	if err := store.Delete(ctx, a.ID); err == nil {
		t.Fatal("expected error")
	}
	if len(store.Tasks()) != 0 {
		t.Error("expected local removal without rollback")
	}
}
