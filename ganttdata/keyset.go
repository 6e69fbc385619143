package ganttdata

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"oss.terrastruct.com/gantt/lib/go2"
)

// KeySet is the set of expanded row ids of a hierarchical chart.
// It decodes from a list of ids or from the string "all".
type KeySet struct {
	all     bool
	keys    go2.Set[string]
	removed go2.Set[string]
}

func NewKeySet(ids ...string) *KeySet {
	return &KeySet{keys: go2.NewSet(ids...), removed: go2.NewSet[string]()}
}

// AllKeys returns a set that contains every id until one is deleted.
func AllKeys() *KeySet {
	ks := NewKeySet()
	ks.all = true
	return ks
}

func (ks *KeySet) Has(id string) bool {
	if ks == nil {
		return false
	}
	if ks.all {
		return !ks.removed.Has(id)
	}
	return ks.keys.Has(id)
}

func (ks *KeySet) Add(ids ...string) {
	for _, id := range ids {
		ks.keys.Add(id)
		ks.removed.Delete(id)
	}
}

func (ks *KeySet) Delete(ids ...string) {
	for _, id := range ids {
		ks.keys.Delete(id)
		ks.removed.Add(id)
	}
}

func (ks *KeySet) Clone() *KeySet {
	if ks == nil {
		return nil
	}
	return &KeySet{all: ks.all, keys: ks.keys.Clone(), removed: ks.removed.Clone()}
}

func (ks *KeySet) fromValue(all string, ids []string) {
	*ks = *NewKeySet(ids...)
	ks.all = all == "all"
}

func (ks *KeySet) UnmarshalJSON(b []byte) error {
	var all string
	if err := json.Unmarshal(b, &all); err == nil {
		ks.fromValue(all, nil)
		return nil
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	ks.fromValue("", ids)
	return nil
}

func (ks *KeySet) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		ks.fromValue(value.Value, nil)
		return nil
	}
	var ids []string
	if err := value.Decode(&ids); err != nil {
		return err
	}
	ks.fromValue("", ids)
	return nil
}

func (ks *KeySet) MarshalJSON() ([]byte, error) {
	if ks.all {
		return json.Marshal("all")
	}
	return json.Marshal(go2.SortedKeys(ks.keys))
}
