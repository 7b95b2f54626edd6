package resolver

import "strings"

// Location is a resolved dictionary path.
type Location struct {
	// Line is 1-based.
	Line int
	// Value is the string stored at the path, or "" for a non-string value.
	Value string
}

// Mark records how far a scan got for a path prefix: the prefix's last key
// was found on Line (1-based) and scanning for the next segment may resume
// at Offset with KeyIndex segments already matched.
type Mark struct {
	Line     int
	KeyIndex int
	Offset   int
}

// Cache is a two-tier memo owned by one Resolver: exact paths map to their
// Location, and partial paths map to the Mark where a scan reached them.
// Entries are never invalidated; a new dictionary text needs a new Cache.
type Cache struct {
	exact  map[string]Location
	prefix map[string]Mark
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		exact:  make(map[string]Location),
		prefix: make(map[string]Mark),
	}
}

// Get returns the cached location of path.
func (c *Cache) Get(path string) (Location, bool) {
	loc, ok := c.exact[path]
	return loc, ok
}

// Put records the location of path.
func (c *Cache) Put(path string, loc Location) {
	c.exact[path] = loc
}

// Mark records the scan position of a prefix. The first mark for a prefix
// is kept.
func (c *Cache) Mark(prefix string, m Mark) {
	if _, ok := c.prefix[prefix]; !ok {
		c.prefix[prefix] = m
	}
}

// Best returns the mark of the cached prefix of path (compared segment by
// segment) that the scan reached furthest. ok is false when no prefix is
// cached.
func (c *Cache) Best(path string) (Mark, bool) {
	var best Mark
	found := false
	for key, m := range c.prefix {
		if key != path && !strings.HasPrefix(path, key+".") {
			continue
		}
		if !found || m.Offset > best.Offset {
			best, found = m, true
		}
	}
	return best, found
}

// Len returns the sizes of the exact and prefix tiers.
func (c *Cache) Len() (exact, prefix int) {
	return len(c.exact), len(c.prefix)
}
