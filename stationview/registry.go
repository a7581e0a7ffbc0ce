// Package stationview implements the station-view post-processor (spec
// §4.10, component C10): it merges "<field>@<station>" variables scattered
// across per-station datasets into one "<field>[...,station]" variable per
// field, plus the station bookkeeping variables a station-dimensioned
// dataset needs.
//
// The station registry below is adapted from the teacher's core.Graph
// vertex bookkeeping (mutex-guarded map[string]*Vertex, lazy
// touch-to-create): stations have no edges, so only the vertex half of
// that design survives, repurposed to carry each station's per-dataset
// field variables instead of adjacency.
package stationview

import "sync"

// Station is one named station's registration: its discovered field
// variables, keyed by field name (the part of "<field>@<station>" before
// the "@").
type Station struct {
	Name   string
	Fields map[string]*fieldSlice
}

// Registry is a thread-safe station name -> Station map, mirroring
// core.Graph's muVert-guarded vertices map with edges dropped entirely.
type Registry struct {
	mu       sync.RWMutex
	stations map[string]*Station
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{stations: make(map[string]*Station)}
}

// touch returns the Station for name, creating it on first reference.
func (r *Registry) touch(name string) *Station {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stations[name]
	if !ok {
		s = &Station{Name: name, Fields: make(map[string]*fieldSlice)}
		r.stations[name] = s
	}
	return s
}

// Names returns every registered station name, sorted per spec §4.10: by
// name length first, then lexically - so "sgpE9" sorts before "sgpE12"
// even though plain lexical order would reverse them.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stations))
	for n := range r.stations {
		names = append(names, n)
	}
	sortStations(names)
	return names
}

func (r *Registry) station(name string) (*Station, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stations[name]
	return s, ok
}

// sortStations implements spec §4.10's station ordering in place: shorter
// names first, ties broken lexically.
func sortStations(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && less(names[j], names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

func less(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
