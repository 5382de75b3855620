package kernel

import (
	"bytes"
	"encoding/json"

	"github.com/ppiankov/planets/internal/model"
	"gopkg.in/yaml.v3"
)

// Constants is the ordered key to value table of a parsed kernel. Keys keep
// the position of their first assignment; a later "=" replaces the value
// (last write wins) and "+=" appends to it. Every statement is also kept, in
// order, for callers that need provenance or first-wins semantics.
type Constants struct {
	keys        []string
	values      map[string]model.Value
	segment     map[string]int
	assignments []Assignment
}

// NewConstants returns an empty table
func NewConstants() *Constants {
	return &Constants{
		values:  make(map[string]model.Value),
		segment: make(map[string]int),
	}
}

// Apply records one assignment
func (c *Constants) Apply(a Assignment) {
	c.assignments = append(c.assignments, a)

	prev, exists := c.values[a.Key]
	if !exists {
		c.keys = append(c.keys, a.Key)
	}

	if a.Op == OpAppend && exists {
		c.values[a.Key] = prev.Append(a.Value)
	} else {
		c.values[a.Key] = a.Value
	}
	c.segment[a.Key] = a.Segment
}

// ApplyAll records assignments in order
func (c *Constants) ApplyAll(as []Assignment) {
	for _, a := range as {
		c.Apply(a)
	}
}

// Get returns the final value of key
func (c *Constants) Get(key string) (model.Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns keys in first-assignment order
func (c *Constants) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len is the number of distinct keys
func (c *Constants) Len() int {
	return len(c.keys)
}

// Block returns the 1-based block number that produced the final value of key
func (c *Constants) Block(key string) (int, bool) {
	idx, ok := c.segment[key]
	if !ok {
		return 0, false
	}
	return idx + 1, true
}

// Assignments returns every statement in source order, duplicates included
func (c *Constants) Assignments() []Assignment {
	out := make([]Assignment, len(c.assignments))
	copy(out, c.assignments)
	return out
}

// First returns the earliest assignment of key
func (c *Constants) First(key string) (Assignment, bool) {
	for _, a := range c.assignments {
		if a.Key == key {
			return a, true
		}
	}
	return Assignment{}, false
}

// Each visits keys in order until fn returns false
func (c *Constants) Each(fn func(key string, v model.Value) bool) {
	for _, k := range c.keys {
		if !fn(k, c.values[k]) {
			return
		}
	}
}

// MarshalJSON writes an object whose member order follows Keys
func (c *Constants) MarshalJSON() ([]byte, error) {
	return marshalOrdered(c.keys, func(k string) interface{} { return c.values[k] })
}

// MarshalYAML writes an ordered mapping node
func (c *Constants) MarshalYAML() (interface{}, error) {
	return orderedNode(c.keys, func(k string) interface{} { return c.values[k] })
}

func marshalOrdered(keys []string, get func(string) interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(get(k))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func orderedNode(keys []string, get func(string) interface{}) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		var kn, vn yaml.Node
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		if err := vn.Encode(get(k)); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &kn, &vn)
	}
	return node, nil
}
