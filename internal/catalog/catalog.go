package catalog

import (
	"errors"
	"sort"
)

var ErrUnknownItem = errors.New("unknown item")

// Item is one unlockable media entry. Prices are decimal strings in
// whole-token units; conversion to minimal units happens at payment time
// against the mint's on-chain decimals.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	MediaFile string `json:"media_file"`
}

// Bundle references a list of child items under one price. Buying a
// bundle grants every child item; the bundle id itself is what appears
// in the payment memo.
type Bundle struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Price   string   `json:"price"`
	ItemIDs []string `json:"item_ids"`
}

// Catalog is the static store configuration, read-only at runtime.
type Catalog struct {
	items   map[string]Item
	bundles map[string]Bundle
}

func New(items []Item, bundles []Bundle) *Catalog {
	c := &Catalog{
		items:   make(map[string]Item, len(items)),
		bundles: make(map[string]Bundle, len(bundles)),
	}
	for _, it := range items {
		c.items[it.ID] = it
	}
	for _, b := range bundles {
		c.bundles[b.ID] = b
	}
	return c
}

// Default is the launch catalog.
func Default() *Catalog {
	return New(
		[]Item{
			{ID: "gallery-01", Title: "Beach Day", Price: "250", MediaFile: "gallery-01.zip"},
			{ID: "gallery-02", Title: "Midnight City", Price: "250", MediaFile: "gallery-02.zip"},
			{ID: "gallery-03", Title: "Cozy Morning", Price: "400", MediaFile: "gallery-03.zip"},
			{ID: "voice-01", Title: "Good Night Message", Price: "150", MediaFile: "voice-01.mp3"},
		},
		[]Bundle{
			{ID: "bundle-season-1", Title: "Season One", Price: "750", ItemIDs: []string{"gallery-01", "gallery-02", "gallery-03"}},
		},
	)
}

// Purchase describes what a catalog id resolves to at payment time.
type Purchase struct {
	ID      string
	Title   string
	Price   string
	ItemIDs []string // grant targets; a single item resolves to itself
}

// Resolve maps a catalog id to its purchase terms. Bundles expand to
// their child item ids; grants use those, the memo uses the bundle id.
func (c *Catalog) Resolve(id string) (*Purchase, error) {
	if it, ok := c.items[id]; ok {
		return &Purchase{ID: it.ID, Title: it.Title, Price: it.Price, ItemIDs: []string{it.ID}}, nil
	}
	if b, ok := c.bundles[id]; ok {
		return &Purchase{ID: b.ID, Title: b.Title, Price: b.Price, ItemIDs: append([]string(nil), b.ItemIDs...)}, nil
	}
	return nil, ErrUnknownItem
}

// Items returns the catalog items sorted by id, for the store listing.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Bundles returns the catalog bundles sorted by id.
func (c *Catalog) Bundles() []Bundle {
	out := make([]Bundle, 0, len(c.bundles))
	for _, b := range c.bundles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
