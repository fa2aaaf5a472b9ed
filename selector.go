package rowguard

import (
	"context"
	"sync"
)

// ExtensionSelector resolves the extension responsible for a checked
// object. Selection results are cached per (object id, type, field) since
// the voter consults the selector on every check.
type ExtensionSelector struct {
	extensions []Extension

	mu    sync.RWMutex
	cache map[selectorKey]Extension
}

type selectorKey struct {
	objectID   string
	objectType string
	field      string
}

// NewExtensionSelector creates a selector over the given extensions,
// consulted in order.
func NewExtensionSelector(extensions ...Extension) *ExtensionSelector {
	return &ExtensionSelector{
		extensions: extensions,
		cache:      make(map[selectorKey]Extension),
	}
}

// Select resolves the extension for a checked object. FieldVote wrappers
// are unwrapped and resolve to the field extension of whichever extension
// supports the underlying object.
func (s *ExtensionSelector) Select(ctx context.Context, object any) (Extension, error) {
	field := ""
	if fv, ok := object.(FieldVote); ok {
		object = fv.Object
		field = fv.Field
	}
	oid, err := objectIdentityOf(object)
	if err != nil {
		return nil, err
	}
	key := selectorKey{objectID: oid.ID, objectType: oid.Type, field: field}

	s.mu.RLock()
	ext, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return ext, nil
	}

	for _, candidate := range s.extensions {
		if !candidate.Supports(ctx, oid.Type, oid.ID) {
			continue
		}
		ext = candidate
		if field != "" {
			fieldExt, ok := candidate.FieldExtension()
			if !ok {
				continue
			}
			ext = fieldExt
		}
		s.mu.Lock()
		s.cache[key] = ext
		s.mu.Unlock()
		return ext, nil
	}
	return nil, &ExtensionNotFoundError{ObjectType: oid.Type, ObjectID: oid.ID}
}

// SelectByKey returns the extension registered under the given key, or nil
// when none is. The lookup bypasses the selection cache.
func (s *ExtensionSelector) SelectByKey(key string) Extension {
	for _, ext := range s.extensions {
		if ext.Key() == key {
			return ext
		}
	}
	return nil
}

// Reset drops the selection cache. Call it after registering new protected
// types.
func (s *ExtensionSelector) Reset() {
	s.mu.Lock()
	s.cache = make(map[selectorKey]Extension)
	s.mu.Unlock()
}
