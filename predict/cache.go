package predict

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps recent results keyed by the coerced feature matrix. Artifacts
// never change after startup, so a cached result is exactly what a fresh
// prediction would return.
type Cache struct {
	entries *lru.Cache[string, *Result]
}

// NewCache returns a cache holding up to size results. A size of zero or less
// disables caching and returns nil, which is a valid no-op cache.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

func (c *Cache) Get(key string) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	res, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return res.clone(), true
}

func (c *Cache) Add(key string, res *Result) {
	if c == nil {
		return
	}
	c.entries.Add(key, res.clone())
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func matrixKey(matrix [][]float64) string {
	var b strings.Builder
	buf := make([]byte, 0, 24)
	for i, row := range matrix {
		if i > 0 {
			b.WriteByte(';')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
			b.Write(buf)
		}
	}
	return b.String()
}
