package hooks

import (
	"context"
	"testing"
)

func TestCreateIsIdempotentUnderConflict(t *testing.T) {
	upstream := newFakeParse(t)
	rc := newResourceClient(t, upstream.serverURL())
	hook := mustFunction(t, "hello")

	first := rc.Create(context.Background(), hook)
	second := rc.Create(context.Background(), hook)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("both creates should succeed, got %v / %v", first, second)
	}
	if upstream.functionCount() != 1 {
		t.Fatalf("expected exactly one live hook, got %d", upstream.functionCount())
	}
	creates, deletes, conflicts := upstream.stats()
	if conflicts != 1 || deletes != 1 || creates != 2 {
		t.Fatalf("expected delete-then-recreate, got conflicts=%d deletes=%d creates=%d",
			conflicts, deletes, creates)
	}
}

func TestCreateRetriesConflictOnlyOnce(t *testing.T) {
	upstream := newFakeParse(t)
	upstream.alwaysConflict = true
	rc := newResourceClient(t, upstream.serverURL())

	results := rc.Create(context.Background(), mustFunction(t, "hello"))
	if len(results) != 0 {
		t.Fatalf("持续冲突时不应报告成功: %v", results)
	}
	if _, _, conflicts := upstream.stats(); conflicts != 2 {
		t.Fatalf("expected exactly one retry, got %d conflicts", conflicts)
	}
}

func TestCreateIsolatesUnreachableServer(t *testing.T) {
	first := newFakeParse(t)
	second := newFakeParse(t)
	down := unreachableServer(t)
	rc := newResourceClient(t, first.serverURL(), down, second.serverURL())
	registry := NewRegistry()

	results := rc.Create(context.Background(), mustTrigger(t, "GameScore", BeforeSave))
	registry.Upsert(results)

	if len(results) != 2 {
		t.Fatalf("expected N-1 successes, got %v", results)
	}
	if _, ok := results[down]; ok {
		t.Fatalf("unreachable server must be omitted")
	}
	if registry.Len() != 2 {
		t.Fatalf("registry should hold N-1 entries, got %d", registry.Len())
	}
}

func TestCreateHonoursExplicitServers(t *testing.T) {
	first := newFakeParse(t)
	second := newFakeParse(t)
	rc := newResourceClient(t, first.serverURL(), second.serverURL())

	results := rc.Create(context.Background(), mustFunction(t, "hello"), second.serverURL())
	if len(results) != 1 || first.functionCount() != 0 || second.functionCount() != 1 {
		t.Fatalf("create should only touch the requested server, got %v", results)
	}
}

func TestFetchUpdateDelete(t *testing.T) {
	upstream := newFakeParse(t)
	rc := newResourceClient(t, upstream.serverURL())
	ctx := context.Background()
	hook := mustTrigger(t, "", BeforeSave)

	rc.Create(ctx, hook)

	fetched := rc.Fetch(ctx, hook)
	got, ok := fetched[upstream.serverURL()]
	if !ok || got.ID() != "@File/beforeSave" {
		t.Fatalf("unexpected fetch result %v", fetched)
	}

	moved, _ := NewTriggerHook("", BeforeSave, "http://cloud:9000/file/save/before")
	updated := rc.Update(ctx, moved)
	if updated[upstream.serverURL()].Endpoint() != "http://cloud:9000/file/save/before" {
		t.Fatalf("unexpected update result %v", updated)
	}

	all := rc.FetchAll(ctx, CategoryTrigger)
	if len(all[upstream.serverURL()]) != 1 {
		t.Fatalf("expected one trigger, got %v", all)
	}

	deleted := rc.Delete(ctx, hook)
	if len(deleted) != 1 || deleted[0] != upstream.serverURL() {
		t.Fatalf("unexpected delete result %v", deleted)
	}
	if len(rc.Fetch(ctx, hook)) != 0 {
		t.Fatalf("fetch after delete should fail")
	}
}

func TestFetchAllSkipsFailingServers(t *testing.T) {
	upstream := newFakeParse(t)
	down := unreachableServer(t)
	rc := newResourceClient(t, upstream.serverURL(), down)

	rc.Create(context.Background(), mustFunction(t, "hello"), upstream.serverURL())
	all := rc.FetchAll(context.Background(), CategoryFunction)
	if len(all) != 1 || len(all[upstream.serverURL()]) != 1 {
		t.Fatalf("unexpected fetchAll result %v", all)
	}
}
