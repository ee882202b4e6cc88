package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoized_MergeLookup(t *testing.T) {
	c := NewMemoized()

	c.Merge("en", map[string]string{"key1": "value1"})

	val, ok := c.Lookup("en", "key1")
	if !ok {
		t.Error("Lookup should return true for existing key")
	}
	if val != "value1" {
		t.Errorf("Lookup returned %q, want %q", val, "value1")
	}

	// Test missing key
	val, ok = c.Lookup("en", "nonexistent")
	if ok {
		t.Error("Lookup should return false for missing key")
	}
	if val != "" {
		t.Errorf("Lookup should return empty string for missing key, got %q", val)
	}

	// Test missing locale
	if _, ok := c.Lookup("de", "key1"); ok {
		t.Error("Lookup should return false for missing locale")
	}
}

func TestMemoized_MergeIsNonDestructive(t *testing.T) {
	c := NewMemoized()

	c.Merge("en", map[string]string{"a": "1"})
	c.Merge("en", map[string]string{"b": "2"})

	if val, ok := c.Lookup("en", "a"); !ok || val != "1" {
		t.Errorf("Expected a=1 to survive merge, got %q (ok=%v)", val, ok)
	}
	if val, ok := c.Lookup("en", "b"); !ok || val != "2" {
		t.Errorf("Expected b=2, got %q (ok=%v)", val, ok)
	}
}

func TestMemoized_MergeOverwrite(t *testing.T) {
	c := NewMemoized()

	c.Merge("en", map[string]string{"key1": "value1"})
	result := c.Merge("en", map[string]string{"key1": "value2", "key2": "new", "key3": ""})

	val, _ := c.Lookup("en", "key1")
	if val != "value2" {
		t.Errorf("Value should be overwritten, got %q, want %q", val, "value2")
	}

	if result.Added != 2 || result.Updated != 1 || result.Unchanged != 0 {
		t.Errorf("Unexpected merge result: %+v", result)
	}
	if !result.HasChanges() {
		t.Error("Merge result should report changes")
	}
	if result.Changed["en"]["key1"] != "value2" {
		t.Errorf("Changed set should contain the update, got %v", result.Changed)
	}
}

func TestMemoized_MergeUnchanged(t *testing.T) {
	c := NewMemoized()

	c.Merge("en", map[string]string{"key1": "value1"})
	result := c.Merge("en", map[string]string{"key1": "value1"})

	if result.HasChanges() {
		t.Errorf("Identical merge should not report changes: %+v", result)
	}
	if result.Unchanged != 1 {
		t.Errorf("Expected 1 unchanged, got %d", result.Unchanged)
	}
	if result.Changed != nil {
		t.Errorf("Changed set should be empty, got %v", result.Changed)
	}
}

func TestMemoized_MergeAll(t *testing.T) {
	c := NewMemoized()

	result := c.MergeAll(Translations{
		"en": {"hello": "Hello"},
		"de": {"hello": "Hallo", "bye": "Tschüss"},
	})

	if result.Added != 3 {
		t.Errorf("Expected 3 added, got %d", result.Added)
	}
	if len(result.Changed) != 2 {
		t.Errorf("Expected changes in 2 locales, got %v", result.Changed)
	}
	if c.Len() != 3 {
		t.Errorf("Expected length 3, got %d", c.Len())
	}
}

func TestMemoized_Seed(t *testing.T) {
	c := NewMemoized()
	c.Merge("fr", map[string]string{"old": "vieux"})

	seed := Translations{"en": {"a": "1"}}
	c.Seed(seed)

	if _, ok := c.Lookup("fr", "old"); ok {
		t.Error("Seed should replace previous content")
	}
	if val, ok := c.Lookup("en", "a"); !ok || val != "1" {
		t.Errorf("Expected seeded value, got %q", val)
	}

	// The cache must not share maps with the caller.
	seed["en"]["a"] = "changed"
	if val, _ := c.Lookup("en", "a"); val != "1" {
		t.Errorf("Seed should copy its input, got %q", val)
	}
}

func TestMemoized_LocalesEntriesSnapshot(t *testing.T) {
	c := NewMemoized()
	c.Merge("en", map[string]string{"a": "1"})
	c.Merge("de", map[string]string{"a": "eins"})

	locales := c.Locales()
	if len(locales) != 2 || locales[0] != "de" || locales[1] != "en" {
		t.Errorf("Expected sorted locales [de en], got %v", locales)
	}

	entries := c.Entries("en")
	entries["a"] = "mutated"
	if val, _ := c.Lookup("en", "a"); val != "1" {
		t.Error("Entries should return a copy")
	}

	snap := c.Snapshot()
	snap["de"]["a"] = "mutated"
	if val, _ := c.Lookup("de", "a"); val != "eins" {
		t.Error("Snapshot should return a deep copy")
	}
}

func TestMemoized_Concurrent(t *testing.T) {
	c := NewMemoized()
	var wg sync.WaitGroup

	// Concurrent merges
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Merge("en", map[string]string{fmt.Sprintf("key%d", i): "value"})
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Lookup("en", fmt.Sprintf("key%d", i))
		}(i)
	}

	wg.Wait()

	if c.Len() != 100 {
		t.Errorf("Expected 100 keys after concurrent merges, got %d", c.Len())
	}
}

func TestMemoized_MemoizeKeepsExisting(t *testing.T) {
	c := NewMemoized()

	if !c.Memoize("en", "greeting", "from fallback") {
		t.Error("Memoize should store a new key")
	}
	if c.Memoize("en", "greeting", "second") {
		t.Error("Memoize should not replace an existing key")
	}

	c.Merge("de", map[string]string{"greeting": "Hallo"})
	if c.Memoize("de", "greeting", "Hi") {
		t.Error("Memoize should not replace a merged key")
	}

	if val, _ := c.Lookup("en", "greeting"); val != "from fallback" {
		t.Errorf("Lookup returned %q, want %q", val, "from fallback")
	}
	if val, _ := c.Lookup("de", "greeting"); val != "Hallo" {
		t.Errorf("Lookup returned %q, want %q", val, "Hallo")
	}
}
