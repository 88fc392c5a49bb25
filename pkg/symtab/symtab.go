// Package symtab implements the insertion-ordered symbol tables filled in by
// the lexer: text values mapped to small integer identifiers.
package symtab

type Entry struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// Table maps each distinct key to one integer for its whole lifetime.
// It is not safe for concurrent use.
type Table struct {
	name    string
	index   map[string]int
	entries []Entry
}

func New(name string) *Table {
	return &Table{name: name, index: make(map[string]int)}
}

// NewSeeded returns a table pre-populated with fixed values. Later Intern
// calls still number new keys from Len()+1.
func NewSeeded(name string, seed []Entry) *Table {
	t := New(name)
	for _, e := range seed {
		if _, ok := t.index[e.Key]; ok {
			continue
		}
		t.index[e.Key] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

func (t *Table) Name() string { return t.name }

func (t *Table) Len() int { return len(t.entries) }

func (t *Table) Lookup(key string) (int, bool) {
	i, ok := t.index[key]
	if !ok {
		return 0, false
	}
	return t.entries[i].Value, true
}

// Intern returns the value for key, assigning the next sequential integer
// if the key is new. added reports whether an entry was created.
func (t *Table) Intern(key string) (value int, added bool) {
	if v, ok := t.Lookup(key); ok {
		return v, false
	}
	value = len(t.entries) + 1
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: key, Value: value})
	return value, true
}

// Touch re-affirms an existing entry without ever adding one.
func (t *Table) Touch(key string) (int, bool) {
	return t.Lookup(key)
}

// Entries returns a copy of the table in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) Map() map[string]int {
	m := make(map[string]int, len(t.entries))
	for _, e := range t.entries {
		m[e.Key] = e.Value
	}
	return m
}
