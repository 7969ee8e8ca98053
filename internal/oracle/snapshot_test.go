package oracle

import "testing"

func TestOracleRootStableUnderKeyOrder(t *testing.T) {
	a := NewEmpty().WithBounds(4, 4).
		WithItem(ItemDef{ID: "a", Name: "A"}).
		WithItem(ItemDef{ID: "b", Name: "B"})
	b := NewEmpty().WithBounds(4, 4).
		WithItem(ItemDef{ID: "b", Name: "B"}).
		WithItem(ItemDef{ID: "a", Name: "A"})

	if Root(a) != Root(b) {
		t.Fatal("expected oracle root to be independent of map insertion order")
	}
}

func TestOracleRootChangesWithContent(t *testing.T) {
	a := NewEmpty().WithBounds(4, 4)
	b := NewEmpty().WithBounds(5, 4)
	if Root(a) == Root(b) {
		t.Fatal("expected oracle root to change when content changes")
	}
}
