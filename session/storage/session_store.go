package storage

import "maps"

type SessionStore interface {
	Close() error
	Has(id string) bool
	Get(id string) (map[string]any, error)
	Save(id string, attributes map[string]any) error
	Delete(id string) error
}

// snapshot copies attributes so a handler mutating its session cannot
// race with another connection reading the stored copy.
func snapshot(attributes map[string]any) map[string]any {
	if attributes == nil {
		return make(map[string]any)
	}
	return maps.Clone(attributes)
}
