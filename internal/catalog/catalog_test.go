package catalog

import (
	"errors"
	"testing"
)

func TestCatalog_ResolveItem(t *testing.T) {
	cat := Default()

	p, err := cat.Resolve("gallery-01")
	if err != nil {
		t.Fatal(err)
	}
	if p.Price != "250" {
		t.Errorf("price = %q, want 250", p.Price)
	}
	if len(p.ItemIDs) != 1 || p.ItemIDs[0] != "gallery-01" {
		t.Errorf("single item must resolve to itself, got %v", p.ItemIDs)
	}
}

func TestCatalog_ResolveBundle(t *testing.T) {
	cat := Default()

	p, err := cat.Resolve("bundle-season-1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"gallery-01", "gallery-02", "gallery-03"}
	if len(p.ItemIDs) != len(want) {
		t.Fatalf("bundle items = %v, want %v", p.ItemIDs, want)
	}
	for i, id := range want {
		if p.ItemIDs[i] != id {
			t.Errorf("bundle item[%d] = %q, want %q", i, p.ItemIDs[i], id)
		}
	}
}

func TestCatalog_ResolveUnknown(t *testing.T) {
	if _, err := Default().Resolve("nope"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("err = %v, want ErrUnknownItem", err)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		balance float64
		want    string
	}{
		{0, "free"},
		{999.99, "free"},
		{1000, "supporter"},
		{9999, "supporter"},
		{10000, "inner-circle"},
		{99999.5, "inner-circle"},
		{100000, "soulmate"},
		{5000000, "soulmate"},
	}

	for _, tt := range tests {
		if got := TierFor(tt.balance, DefaultTiers); got != tt.want {
			t.Errorf("TierFor(%v) = %q, want %q", tt.balance, got, tt.want)
		}
	}
}
