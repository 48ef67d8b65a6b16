package persist

import "fmt"

// CatalogItem represents one mintable NFT template in the storefront catalog
type CatalogItem struct {
	ID          int     `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	URL         string  `json:"url" yaml:"url"`
	Price       float64 `json:"price" yaml:"price"`
	Minted      bool    `json:"minted" yaml:"-"`
}

// Catalog is the canonical ordered sequence of catalog items
type Catalog []CatalogItem

// ErrCatalogItemNotFound is returned when an id does not index a catalog item
type ErrCatalogItemNotFound struct {
	ID int
}

func (e ErrCatalogItemNotFound) Error() string {
	return fmt.Sprintf("nft %d not found in catalog", e.ID)
}

// ErrInvalidCatalog is returned when a catalog violates the id == index invariant
type ErrInvalidCatalog struct {
	Index int
	ID    int
}

func (e ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("catalog item at index %d has id %d, ids must equal their position", e.Index, e.ID)
}

// Validate checks that every item's id equals its index in the sequence
func (c Catalog) Validate() error {
	for i, item := range c {
		if item.ID != i {
			return ErrInvalidCatalog{Index: i, ID: item.ID}
		}
	}
	return nil
}

// Contains returns true if the id indexes an item in the catalog
func (c Catalog) Contains(id int) bool {
	return id >= 0 && id < len(c)
}

// Get returns a copy of the item with the given id
func (c Catalog) Get(id int) (CatalogItem, error) {
	if !c.Contains(id) {
		return CatalogItem{}, ErrCatalogItemNotFound{ID: id}
	}
	return c[id], nil
}

// Copy returns a copy of the catalog so callers can annotate it without touching the source
func (c Catalog) Copy() Catalog {
	cpy := make(Catalog, len(c))
	copy(cpy, c)
	return cpy
}
