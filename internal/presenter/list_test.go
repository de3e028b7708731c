package presenter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"tasklist/internal/models"
	"tasklist/internal/store"
)

// failingStore wraps a MemoryStore and injects errors per operation.
type failingStore struct {
	*store.MemoryStore
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	calls     []string
}

func (f *failingStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryStore.ListTasks(ctx)
}

func (f *failingStore) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.MemoryStore.CreateTask(ctx, title)
}

func (f *failingStore) UpdateTask(ctx context.Context, task *models.Task, title string) error {
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.MemoryStore.UpdateTask(ctx, task, title)
}

func (f *failingStore) DeleteTask(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStore.DeleteTask(ctx, id)
}

func setupList(t *testing.T) (*List, *failingStore, *[]Change) {
	t.Helper()
	s := &failingStore{MemoryStore: store.NewMemoryStore(nil)}
	t.Cleanup(func() { s.Close() })

	var changes []Change
	l := New(s, WithObserver(func(c Change) { changes = append(changes, c) }))
	return l, s, &changes
}

func TestList_Scenario(t *testing.T) {
	l, s, _ := setupList(t)
	ctx := context.Background()

	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got %d rows", l.Len())
	}

	if _, err := l.Add(ctx, "Walk dog"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := l.Add(ctx, "Read book"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := l.Titles(), []string{"Walk dog", "Read book"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := l.Rename(ctx, 0, "Walk the dog"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := l.Titles(), []string{"Walk the dog", "Read book"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := l.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := l.Titles(), []string{"Walk the dog"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	stored, _ := s.MemoryStore.ListTasks(ctx)
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored task, got %d", len(stored))
	}
}

func TestList_AddAppendsAndNotifies(t *testing.T) {
	l, _, changes := setupList(t)
	ctx := context.Background()

	l.Add(ctx, "A")
	l.Add(ctx, "B")

	want := []Change{{Kind: Insert, Index: 0}, {Kind: Insert, Index: 1}}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected changes %v, got %v", want, *changes)
	}
}

func TestList_AddRejectsBlankTitleBeforeStore(t *testing.T) {
	l, s, changes := setupList(t)

	for _, title := range []string{"", "  \t"} {
		if _, err := l.Add(context.Background(), title); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Add(%q): expected ErrEmptyTitle, got %v", title, err)
		}
	}

	if len(s.calls) != 0 {
		t.Errorf("expected no store calls, got %v", s.calls)
	}
	if len(*changes) != 0 {
		t.Errorf("expected no changes, got %v", *changes)
	}
}

func TestList_AddStoreFailureLeavesListUnchanged(t *testing.T) {
	l, s, _ := setupList(t)
	s.createErr = &store.Error{Kind: store.KindStoreIO, Op: "create task"}

	_, err := l.Add(context.Background(), "Nope")
	if !errors.Is(err, store.ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO, got %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty list, got %d rows", l.Len())
	}
}

func TestList_LoadFailureLeavesListEmpty(t *testing.T) {
	l, s, changes := setupList(t)
	ctx := context.Background()

	l.Add(ctx, "Cached")
	s.listErr = &store.Error{Kind: store.KindQueryFailed, Op: "list tasks"}

	if err := l.Load(ctx); !errors.Is(err, store.ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty list after failed load, got %d rows", l.Len())
	}
	if last := (*changes)[len(*changes)-1]; last.Kind != Reload {
		t.Errorf("expected reload notification, got %v", last)
	}
}

func TestList_RenameRefreshesRow(t *testing.T) {
	l, _, changes := setupList(t)
	ctx := context.Background()

	l.Add(ctx, "A")
	l.Add(ctx, "B")
	*changes = nil

	if err := l.Rename(ctx, 1, "C"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if got, want := l.Titles(), []string{"A", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if want := []Change{{Kind: Update, Index: 1}}; !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected changes %v, got %v", want, *changes)
	}
}

func TestList_RenameValidation(t *testing.T) {
	l, s, _ := setupList(t)
	ctx := context.Background()
	l.Add(ctx, "A")
	s.calls = nil

	if err := l.Rename(ctx, 0, " "); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if err := l.Rename(ctx, 5, "B"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("expected no store calls, got %v", s.calls)
	}
}

func TestList_RenameMissingTaskDropsRow(t *testing.T) {
	l, s, changes := setupList(t)
	ctx := context.Background()

	task, _ := l.Add(ctx, "Gone")
	l.Add(ctx, "Stays")
	s.MemoryStore.DeleteTask(ctx, task.ID)
	*changes = nil

	err := l.Rename(ctx, 0, "Renamed")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got, want := l.Titles(), []string{"Stays"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if want := []Change{{Kind: Delete, Index: 0}}; !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected changes %v, got %v", want, *changes)
	}
}

func TestList_RenameStoreFailureKeepsRow(t *testing.T) {
	l, s, _ := setupList(t)
	ctx := context.Background()

	l.Add(ctx, "A")
	s.updateErr = &store.Error{Kind: store.KindStoreIO, Op: "update task"}

	if err := l.Rename(ctx, 0, "B"); !errors.Is(err, store.ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO, got %v", err)
	}
	if got := l.Titles(); got[0] != "A" {
		t.Errorf("expected row to keep its title, got %q", got[0])
	}
}

func TestList_RemoveIsOptimistic(t *testing.T) {
	l, s, changes := setupList(t)
	ctx := context.Background()

	l.Add(ctx, "A")
	l.Add(ctx, "B")
	*changes = nil
	s.calls = nil
	s.deleteErr = &store.Error{Kind: store.KindStoreIO, Op: "delete task"}

	err := l.Remove(ctx, 0)
	if !errors.Is(err, store.ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO, got %v", err)
	}

	if got, want := l.Titles(), []string{"B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected row removed without rollback, got %v", got)
	}
	if want := []Change{{Kind: Delete, Index: 0}}; !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected changes %v, got %v", want, *changes)
	}
	if want := []string{"delete"}; !reflect.DeepEqual(s.calls, want) {
		t.Errorf("expected store calls %v, got %v", want, s.calls)
	}

	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := l.Titles(), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected reload to restore authoritative list %v, got %v", want, got)
	}
}

func TestList_RemoveAlreadyDeletedIsNotAnError(t *testing.T) {
	l, s, _ := setupList(t)
	ctx := context.Background()

	task, _ := l.Add(ctx, "A")
	s.MemoryStore.DeleteTask(ctx, task.ID)

	if err := l.Remove(ctx, 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty list, got %d rows", l.Len())
	}
	if err := l.Remove(ctx, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestList_AccessorsReturnCopies(t *testing.T) {
	l, _, _ := setupList(t)
	ctx := context.Background()
	l.Add(ctx, "A")

	tasks := l.Tasks()
	tasks[0].Title = "mutated"

	got, ok := l.At(0)
	if !ok || got.Title != "A" {
		t.Errorf("expected internal row untouched, got %+v (ok=%v)", got, ok)
	}
	if _, ok := l.At(1); ok {
		t.Error("expected At(1) to report missing row")
	}
}

func TestChangeKind_String(t *testing.T) {
	tests := map[ChangeKind]string{
		Reload:         "reload",
		Insert:         "insert",
		Update:         "update",
		Delete:         "delete",
		ChangeKind(42): "ChangeKind(42)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
