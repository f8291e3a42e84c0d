package plan

import (
	"fmt"
	"sort"
	"sync"

	"github.com/schemakit/schemakit/schema"
)

// Catalog is the in-memory registry of full table definitions, used to
// resolve createTable operations. It is scoped to its owner rather than
// shared process-wide.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*schema.TableSchema
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: make(map[string]*schema.TableSchema)}
}

// Register validates and stores a schema, replacing any previous definition
// under the same table name.
func (c *Catalog) Register(s *schema.TableSchema) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[s.Name] = s
	return nil
}

// RegisterAll registers multiple schemas, stopping at the first invalid one.
func (c *Catalog) RegisterAll(schemas []*schema.TableSchema) error {
	for _, s := range schemas {
		if err := c.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the registered schema for a table name, or nil.
func (c *Catalog) Get(name string) *schema.TableSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schemas[name]
}

// Names returns the registered table names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
