package workbook

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
)

// Cache memoizes parsed uploads by content fingerprint so re-rendering the
// same upload skips parsing. Entries are immutable once stored.
type Cache struct {
	entries *lru.Cache[string, *Workbook]
}

// NewCache creates a cache holding at most size workbooks.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = constants.DefaultCacheSize
	}
	entries, err := lru.New[string, *Workbook](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Load returns the cached workbook for data when present, parsing and storing
// it otherwise. hit reports whether parsing was skipped.
func (c *Cache) Load(name string, data []byte) (wb *Workbook, hit bool, err error) {
	id := Fingerprint(data)
	if cached, ok := c.entries.Get(id); ok {
		return cached, true, nil
	}
	wb, err = Load(name, data)
	if err != nil {
		return nil, false, err
	}
	c.entries.Add(id, wb)
	return wb, false, nil
}

// Get looks up a previously loaded workbook by id.
func (c *Cache) Get(id string) (*Workbook, bool) {
	return c.entries.Get(id)
}

// Len reports the number of cached workbooks.
func (c *Cache) Len() int {
	return c.entries.Len()
}
