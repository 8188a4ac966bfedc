// Package snapshot saves and restores the models of a component tree in
// msgpack form.
//
// A snapshot records every component by its position below the root, so
// it can be restored into a tree built from the same templates, for
// example after a process restart:
//
//	data, _ := snapshot.Encode(root)
//	...
//	s, _ := snapshot.Decode(data)
//	res, err := snapshot.Restore(newRoot, s)
package snapshot

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vango-dev/vbind/pkg/expr"
	"github.com/vango-dev/vbind/pkg/scope"
)

// Version is the snapshot format version.
const Version = 1

// Entry is the saved state of one component.
type Entry struct {
	Path  []int              `msgpack:"path"`
	ID    string             `msgpack:"id"`
	Name  string             `msgpack:"name"`
	State string             `msgpack:"state"`
	Model msgpack.RawMessage `msgpack:"model"`
}

// Snapshot is the saved state of a component tree, root first.
type Snapshot struct {
	Version int     `msgpack:"v"`
	Entries []Entry `msgpack:"entries"`
}

// Result reports what Restore applied.
type Result struct {
	Restored int
	Skipped  int
}

// Take records the models of root and its descendants. Internal model
// keys are not recorded.
func Take(root *scope.Component) (*Snapshot, error) {
	s := &Snapshot{Version: Version}
	if err := s.add(root, nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Snapshot) add(c *scope.Component, path []int) error {
	if expr.Cyclic(c.Model()) {
		return fmt.Errorf("snapshot: encode %s: model contains a cycle", c.ID())
	}
	model, err := msgpack.Marshal(expr.Clone(c.Model()))
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", c.ID(), err)
	}
	s.Entries = append(s.Entries, Entry{
		Path:  append([]int(nil), path...),
		ID:    c.ID(),
		Name:  c.Name(),
		State: c.State().String(),
		Model: model,
	})
	for i, child := range c.Children() {
		if err := s.add(child, append(path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the snapshot.
func (s *Snapshot) Marshal() ([]byte, error) {
	return msgpack.Marshal(s)
}

// Encode takes a snapshot of root and encodes it.
func Encode(root *scope.Component) ([]byte, error) {
	s, err := Take(root)
	if err != nil {
		return nil, err
	}
	return s.Marshal()
}

// Decode parses an encoded snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	return &s, nil
}

// Restore writes the saved models into the tree below root and re-renders
// it. Entries whose position is missing or holds a component of another
// name are skipped.
func Restore(root *scope.Component, s *Snapshot) (Result, error) {
	var res Result
	for _, entry := range s.Entries {
		c := locate(root, entry.Path)
		if c == nil || c.Name() != entry.Name {
			res.Skipped++
			continue
		}
		if err := restoreModel(c, entry.Model); err != nil {
			return res, fmt.Errorf("snapshot: restore %s: %w", c.ID(), err)
		}
		res.Restored++
	}
	if root.State() == scope.StateDisplayed {
		root.Render()
	}
	return res, nil
}

func locate(root *scope.Component, path []int) *scope.Component {
	c := root
	for _, i := range path {
		children := c.Children()
		if i < 0 || i >= len(children) {
			return nil
		}
		c = children[i]
	}
	return c
}

func restoreModel(c *scope.Component, raw msgpack.RawMessage) error {
	switch model := c.Model().(type) {
	case map[string]any:
		dec := msgpack.NewDecoder(bytes.NewReader(raw))
		dec.UseLooseInterfaceDecoding(true)
		var saved map[string]any
		if err := dec.Decode(&saved); err != nil {
			return err
		}
		for k, v := range saved {
			if expr.IsInternal(k) {
				continue
			}
			model[k] = v
		}
		return nil
	case nil:
		return nil
	default:
		if reflect.ValueOf(model).Kind() != reflect.Pointer {
			return fmt.Errorf("model %T is not addressable", model)
		}
		return msgpack.Unmarshal(raw, model)
	}
}
