package cache

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// EntryMetadata is the engine's bookkeeping for one live key. An entry
// exists in the index iff a corresponding value is believed to exist in the
// backing store; transient staleness during background refresh is tolerated.
type EntryMetadata struct {
	Key          string
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  int64
	TTL          time.Duration
	SizeBytes    int
	Dependencies []string
	Tags         []string
}

func (m *EntryMetadata) expired(now time.Time) bool {
	return m.CreatedAt.Add(m.TTL).Before(now)
}

// sizeOf estimates the serialized size of a value. Serialization failure
// (functions, channels, cycles) yields 0 rather than an error.
func sizeOf(val any) int {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return 0
	}
	return len(data)
}

// labelIndex is a reverse index from a label (dependency or tag) to the set
// of keys that declared it. Labels with empty key sets are pruned.
type labelIndex map[string]map[string]struct{}

func (ix labelIndex) add(label, key string) {
	set, ok := ix[label]
	if !ok {
		set = make(map[string]struct{})
		ix[label] = set
	}
	set[key] = struct{}{}
}

// removeKey drops key from each of the given labels, pruning labels whose
// set becomes empty.
func (ix labelIndex) removeKey(key string, labels []string) {
	for _, label := range labels {
		set, ok := ix[label]
		if !ok {
			continue
		}
		delete(set, key)
		if len(set) == 0 {
			delete(ix, label)
		}
	}
}

// keys returns the members of a label, or nil if the label is unknown.
func (ix labelIndex) keys(label string) []string {
	set, ok := ix[label]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	return out
}

func (ix labelIndex) drop(label string) {
	delete(ix, label)
}
