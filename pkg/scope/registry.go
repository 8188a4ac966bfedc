package scope

import "sort"

// Registry maps component ids to live components.
type Registry struct {
	comps map[string]*Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{comps: make(map[string]*Component)}
}

// Add registers c. It reports whether c was not already present.
func (r *Registry) Add(c *Component) bool {
	if _, ok := r.comps[c.id]; ok {
		return false
	}
	r.comps[c.id] = c
	return true
}

// Remove unregisters the component with the given id.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.comps[id]; !ok {
		return false
	}
	delete(r.comps, id)
	return true
}

// Get returns the component with the given id, or nil.
func (r *Registry) Get(id string) *Component {
	return r.comps[id]
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	return len(r.comps)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.comps))
	for id := range r.comps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Pool keeps destroyed named components for reuse.
type Pool struct {
	limit int
	items map[string][]*Component
}

// NewPool creates a pool holding at most limit instances per name. A limit
// of zero or less is unbounded.
func NewPool(limit int) *Pool {
	return &Pool{limit: limit, items: make(map[string][]*Component)}
}

// Put stores c under its name. It reports false when the per-name cap is
// reached.
func (p *Pool) Put(c *Component) bool {
	list := p.items[c.name]
	if p.limit > 0 && len(list) >= p.limit {
		return false
	}
	p.items[c.name] = append(list, c)
	return true
}

// Take removes and returns the most recently pooled instance of name, or
// nil.
func (p *Pool) Take(name string) *Component {
	list := p.items[name]
	if len(list) == 0 {
		return nil
	}
	c := list[len(list)-1]
	p.items[name] = list[:len(list)-1]
	return c
}

// Len returns the number of pooled instances of name.
func (p *Pool) Len(name string) int {
	return len(p.items[name])
}

// Size returns the total number of pooled instances.
func (p *Pool) Size() int {
	n := 0
	for _, list := range p.items {
		n += len(list)
	}
	return n
}
