package dotenv

// Value is the right-hand side of a .env entry: either a real string or a
// placeholder for a key declared without a value ("KEY=" or a bare "KEY").
// The zero Value is a placeholder.
type Value struct {
	s   string
	set bool
}

// Some returns a Value holding s.
func Some(s string) Value {
	return Value{s: s, set: true}
}

// Placeholder returns a Value that marks a key as declared but unset.
func Placeholder() Value {
	return Value{}
}

// Get returns the string and true, or "" and false for a placeholder.
func (v Value) Get() (string, bool) {
	return v.s, v.set
}

func (v Value) IsPlaceholder() bool {
	return !v.set
}

func (v Value) String() string {
	if !v.set {
		return "<placeholder>"
	}
	return v.s
}

// Entry is one key of a parsed .env file. Line is the 1-based line of the
// key's first occurrence, or 0 when the mapping was built in memory.
type Entry struct {
	Key   string
	Value Value
	Line  int
}

// Mapping is an ordered, immutable key to Value mapping produced by the
// parser. Iteration follows the position of each key's first occurrence.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping builds a Mapping from entries. A repeated key keeps the
// position of its first occurrence and the value of its last.
func NewMapping(entries ...Entry) *Mapping {
	m := &Mapping{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.put(e)
	}
	return m
}

// MappingOf is a convenience for tests and callers that build the file
// layer by hand. A nil pointer becomes a placeholder. Order follows keys.
func MappingOf(keys []string, values map[string]*string) *Mapping {
	m := &Mapping{index: make(map[string]int, len(keys))}
	for _, k := range keys {
		v := Placeholder()
		if p := values[k]; p != nil {
			v = Some(*p)
		}
		m.put(Entry{Key: k, Value: v})
	}
	return m
}

func (m *Mapping) put(e Entry) {
	if i, ok := m.index[e.Key]; ok {
		m.entries[i].Value = e.Value
		return
	}
	m.index[e.Key] = len(m.entries)
	m.entries = append(m.entries, e)
}

// Lookup returns the Value for key and whether the key was declared at all.
func (m *Mapping) Lookup(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of distinct keys, placeholders included.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in iteration order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Values returns the keys that carry a real value. Placeholders are left out.
func (m *Mapping) Values() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for _, e := range m.entries {
		if s, ok := e.Value.Get(); ok {
			out[e.Key] = s
		}
	}
	return out
}
