// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package common

import (
	"fmt"
	"sort"
	"strings"
)

// MemoryFootprint describes the memory usage of a component and its
// sub-components as a tree. Nodes may be shared between components; shared
// nodes are counted only once by Total.
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
}

// NewMemoryFootprint creates a footprint node covering the given number of
// bytes, not including any children added later.
func NewMemoryFootprint(size uintptr) *MemoryFootprint {
	return &MemoryFootprint{value: size}
}

// AddChild registers the footprint of a sub-component under the given name.
// Adding a child with an existing name replaces the previous entry.
func (m *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	if child == nil {
		return
	}
	if m.children == nil {
		m.children = make(map[string]*MemoryFootprint)
	}
	m.children[name] = child
}

// Value returns the number of bytes attributed to this node alone.
func (m *MemoryFootprint) Value() uintptr {
	return m.value
}

// Total returns the number of bytes covered by this node and all its
// children, counting shared children only once.
func (m *MemoryFootprint) Total() uintptr {
	seen := map[*MemoryFootprint]bool{}
	return m.total(seen)
}

func (m *MemoryFootprint) total(seen map[*MemoryFootprint]bool) uintptr {
	if seen[m] {
		return 0
	}
	seen[m] = true
	sum := m.value
	for _, child := range m.children {
		sum += child.total(seen)
	}
	return sum
}

// String renders the footprint tree with one line per node, children sorted
// by name, sizes in bytes.
func (m *MemoryFootprint) String() string {
	var b strings.Builder
	m.print(&b, ".", "")
	return b.String()
}

func (m *MemoryFootprint) print(b *strings.Builder, name, indent string) {
	fmt.Fprintf(b, "%s%s: %d bytes\n", indent, name, m.Total())
	names := make([]string, 0, len(m.children))
	for name := range m.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.children[name].print(b, name, indent+"  ")
	}
}
