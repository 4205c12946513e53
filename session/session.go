package session

/*
Inspited by https://github.com/symfony/symfony/blob/7.2/src/Symfony/Component/HttpFoundation/Session/SessionInterface.php
*/
type Session interface {
	ID() string
	IsNew() bool
	Has(name string) bool
	Get(name string, fallback any) any
	Set(name string, value any)
	All() map[string]any
	Remove(name string)
	Clear()
}

type defaultSession struct {
	id         string
	isNew      bool
	attributes map[string]any
}

func NewDefaultSession(id string, isNew bool, attributes map[string]any) Session {
	if attributes == nil {
		attributes = make(map[string]any)
	}

	return &defaultSession{
		id:         id,
		isNew:      isNew,
		attributes: attributes,
	}
}

func (s *defaultSession) ID() string {
	return s.id
}

// IsNew reports whether the session was created for this request rather
// than loaded from the store.
func (s *defaultSession) IsNew() bool {
	return s.isNew
}

func (s *defaultSession) All() map[string]any {
	return s.attributes
}

func (s *defaultSession) Clear() {
	s.attributes = make(map[string]any)
}

func (s *defaultSession) Get(name string, fallback any) any {
	value, found := s.attributes[name]
	if !found {
		return fallback
	}

	return value
}

func (s *defaultSession) Has(name string) bool {
	_, found := s.attributes[name]
	return found
}

func (s *defaultSession) Remove(name string) {
	delete(s.attributes, name)
}

func (s *defaultSession) Set(name string, value any) {
	s.attributes[name] = value
}
