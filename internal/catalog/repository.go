package catalog

import (
	"sort"
	"sync"
)

// Repository is the keyed product set of one unit of work scope.
// List is always ordered by ascending SKU.
type Repository interface {
	Add(p Product)
	Get(sku string) (Product, bool)
	List() []Product
	Remove(p Product)
}

type index struct {
	mu sync.RWMutex
	m  map[string]Product
}

func newIndex(products ...Product) index {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.SKU] = p.clone()
	}
	return index{m: m}
}

func (x *index) Add(p Product) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.m[p.SKU] = p.clone()
}

func (x *index) Get(sku string) (Product, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	p, ok := x.m[sku]
	if !ok {
		return Product{}, false
	}
	return p.clone(), true
}

func (x *index) List() []Product {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]Product, 0, len(x.m))
	for _, p := range x.m {
		out = append(out, p.clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

func (x *index) Remove(p Product) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.m, p.SKU)
}

func (x *index) snapshot() map[string]Product {
	x.mu.RLock()
	defer x.mu.RUnlock()

	m := make(map[string]Product, len(x.m))
	for k, p := range x.m {
		m[k] = p.clone()
	}
	return m
}

func (x *index) restore(m map[string]Product) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.m = make(map[string]Product, len(m))
	for k, p := range m {
		x.m[k] = p.clone()
	}
}
