package mboxcache

import (
	"sync"
	"testing"

	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/logger"
)

func record(name, content string) jsonvalue.Value {
	return jsonvalue.Object(map[string]jsonvalue.Value{
		"name": jsonvalue.String(name),
		"options": jsonvalue.Array(jsonvalue.Object(map[string]jsonvalue.Value{
			"type":    jsonvalue.String("html"),
			"content": jsonvalue.String(content),
		})),
		"metrics": jsonvalue.Array(jsonvalue.Object(map[string]jsonvalue.Value{
			"type":       jsonvalue.String("click"),
			"eventToken": jsonvalue.String("tok-" + name),
		})),
	})
}

func TestPrefetchedTakesPriority(t *testing.T) {
	c := New(logger.NewNop())
	x := record("a", "X")
	y := record("a", "Y")

	c.MergePrefetched(map[string]jsonvalue.Value{"a": x})
	c.SaveLoaded(map[string]jsonvalue.Value{"a": y})

	got, ok := c.Lookup("a")
	if !ok || !got.Equal(x) {
		t.Errorf("expected prefetched record, got %s", got)
	}
	if _, ok := c.Loaded("a"); ok {
		t.Error("loaded tier must not contain a prefetched name")
	}
}

func TestMergePrefetchedPurgesLoaded(t *testing.T) {
	c := New(logger.NewNop())
	c.SaveLoaded(map[string]jsonvalue.Value{"a": record("a", "old"), "b": record("b", "keep")})

	c.MergePrefetched(map[string]jsonvalue.Value{"a": record("a", "new")})

	if _, ok := c.Loaded("a"); ok {
		t.Error("expected stale loaded entry removed")
	}
	if _, ok := c.Loaded("b"); !ok {
		t.Error("unrelated loaded entry must survive")
	}
	if _, tier := c.LookupTier("a"); tier != TierPrefetched {
		t.Errorf("expected prefetched tier, got %s", tier)
	}
}

func TestMergePrefetchedReplaces(t *testing.T) {
	c := New(logger.NewNop())
	c.MergePrefetched(map[string]jsonvalue.Value{"a": record("a", "1"), "b": record("b", "1")})
	c.MergePrefetched(map[string]jsonvalue.Value{"a": record("a", "2")})

	got, _ := c.Prefetched("a")
	if !got.Equal(record("a", "2")) {
		t.Errorf("expected newer record, got %s", got)
	}
	if _, ok := c.Prefetched("b"); !ok {
		t.Error("merge must keep existing names")
	}
}

func TestSaveLoadedReducesRecord(t *testing.T) {
	c := New(logger.NewNop())
	c.SaveLoaded(map[string]jsonvalue.Value{"a": record("a", "content"), "": record("", "x")})

	got, ok := c.Loaded("a")
	if !ok {
		t.Fatal("expected loaded record")
	}
	if got.Has("options") {
		t.Error("loaded tier must not keep content options")
	}
	if !got.Has("name") || !got.Has("metrics") {
		t.Errorf("expected name and metrics kept, got %s", got)
	}
	if _, loaded := c.Stats(); loaded != 1 {
		t.Errorf("empty names must be skipped, got %d entries", loaded)
	}
}

func TestClearing(t *testing.T) {
	c := New(logger.NewNop())
	c.MergePrefetched(map[string]jsonvalue.Value{"a": record("a", "1")})
	c.SaveLoaded(map[string]jsonvalue.Value{"b": record("b", "1"), "c": record("c", "1")})

	c.RemoveLoaded("b")
	if _, ok := c.Lookup("b"); ok {
		t.Error("expected b removed")
	}

	c.ClearPrefetched()
	if p, l := c.Stats(); p != 0 || l != 1 {
		t.Errorf("expected 0/1, got %d/%d", p, l)
	}

	c.ClearAll()
	if p, l := c.Stats(); p != 0 || l != 0 {
		t.Errorf("expected empty cache, got %d/%d", p, l)
	}
}

func TestLookupMiss(t *testing.T) {
	c := New(nil)
	v, tier := c.LookupTier("missing")
	if tier != TierNone || !v.IsNull() {
		t.Errorf("expected miss, got %s in %s", v, tier)
	}
}

func TestConcurrentMerges(t *testing.T) {
	c := New(logger.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.MergePrefetched(map[string]jsonvalue.Value{"a": record("a", "p")})
		}()
		go func() {
			defer wg.Done()
			c.SaveLoaded(map[string]jsonvalue.Value{"a": record("a", "l")})
		}()
	}
	wg.Wait()

	if _, ok := c.Prefetched("a"); !ok {
		t.Fatal("expected prefetched record")
	}
	if _, ok := c.Loaded("a"); ok {
		t.Error("a name must never live in both tiers")
	}
}

func TestExportCopies(t *testing.T) {
	c := New(logger.NewNop())
	c.MergePrefetched(map[string]jsonvalue.Value{"a": record("a", "p")})
	c.SaveLoaded(map[string]jsonvalue.Value{"b": record("b", "l")})

	pre, loaded := c.Export()
	if len(pre) != 1 || len(loaded) != 1 {
		t.Fatalf("Export() = %d, %d", len(pre), len(loaded))
	}
	delete(pre, "a")
	if _, ok := c.Prefetched("a"); !ok {
		t.Error("Export must not share the tier map")
	}
}
