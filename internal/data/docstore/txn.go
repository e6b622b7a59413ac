package docstore

import (
	"encoding/json"
	"fmt"
	"sort"
)

type entry struct {
	body    []byte
	version int64
	exists  bool
	dirty   bool
}

func decodeBody(name string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return nil
}

// Snapshot is a read-only view of documents taken at one point in time.
type Snapshot struct {
	docs map[string]entry
}

func newSnapshot() *Snapshot {
	return &Snapshot{docs: map[string]entry{}}
}

func (s *Snapshot) set(name string, body []byte, version int64) {
	s.docs[name] = entry{body: body, version: version, exists: true}
}

// Decode unmarshals the named document into v. It reports false, leaving v
// untouched, when the document has never been written.
func (s *Snapshot) Decode(name string, v any) (bool, error) {
	e, ok := s.docs[name]
	if !ok || !e.exists {
		return false, nil
	}
	return true, decodeBody(name, e.body, v)
}

// Version is 0 for documents that do not exist yet.
func (s *Snapshot) Version(name string) int64 {
	return s.docs[name].version
}

// Txn is the working set of one Update attempt.
type Txn struct {
	docs map[string]*entry
}

func newTxn(names []string) *Txn {
	t := &Txn{docs: make(map[string]*entry, len(names))}
	for _, n := range names {
		t.docs[n] = &entry{}
	}
	return t
}

func (t *Txn) load(name string, body []byte, version int64) {
	e, ok := t.docs[name]
	if !ok {
		return
	}
	e.body = body
	e.version = version
	e.exists = true
}

func (t *Txn) Decode(name string, v any) (bool, error) {
	e, ok := t.docs[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUndeclared, name)
	}
	if !e.exists && !e.dirty {
		return false, nil
	}
	return true, decodeBody(name, e.body, v)
}

// Put replaces the named document. Nothing is written until the attempt commits.
func (t *Txn) Put(name string, v any) error {
	e, ok := t.docs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUndeclared, name)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", name, err)
	}
	e.body = b
	e.dirty = true
	return nil
}

type change struct {
	name    string
	body    []byte
	version int64 // version observed by the attempt; 0 when absent
	exists  bool
	dirty   bool
}

// changes lists every declared document in name order so that backends
// acquire row locks in a stable order.
func (t *Txn) changes() []change {
	names := make([]string, 0, len(t.docs))
	for n := range t.docs {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]change, 0, len(names))
	for _, n := range names {
		e := t.docs[n]
		out = append(out, change{name: n, body: e.body, version: e.version, exists: e.exists, dirty: e.dirty})
	}
	return out
}

func (t *Txn) dirty() bool {
	for _, e := range t.docs {
		if e.dirty {
			return true
		}
	}
	return false
}
