package graph

import (
	"fmt"
	"maps"
	"reflect"
)

// StateSchema defines the initial state and how node output is merged into it.
type StateSchema[S any] interface {
	Init() S
	Update(current, update S) (S, error)
}

// Reducer defines how a state value should be updated.
type Reducer func(current, update any) (any, error)

// MapSchema is a StateSchema for map[string]any with per-key reducers.
// Keys without a reducer are overwritten.
type MapSchema struct {
	Reducers map[string]Reducer
}

var _ StateSchema[map[string]any] = (*MapSchema)(nil)

// NewMapSchema creates a new MapSchema.
func NewMapSchema() *MapSchema {
	return &MapSchema{Reducers: make(map[string]Reducer)}
}

// RegisterReducer adds a reducer for a specific key.
func (s *MapSchema) RegisterReducer(key string, reducer Reducer) *MapSchema {
	s.Reducers[key] = reducer
	return s
}

// Init returns an empty map.
func (s *MapSchema) Init() map[string]any {
	return make(map[string]any)
}

// Update merges update into a copy of current.
func (s *MapSchema) Update(current, update map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(current)+len(update))
	maps.Copy(result, current)

	for k, v := range update {
		reducer, ok := s.Reducers[k]
		if !ok {
			result[k] = v
			continue
		}
		merged, err := reducer(result[k], v)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce key %s: %w", k, err)
		}
		result[k] = merged
	}
	return result, nil
}

// OverwriteReducer replaces the old value with the new one.
func OverwriteReducer(_, update any) (any, error) {
	return update, nil
}

// AppendReducer appends a slice or a single element to the current slice.
// The result is always a fresh slice, so neither argument is ever written to.
func AppendReducer(current, update any) (any, error) {
	newVal := reflect.ValueOf(update)
	if current == nil {
		if newVal.Kind() == reflect.Slice {
			out := reflect.MakeSlice(newVal.Type(), newVal.Len(), newVal.Len())
			reflect.Copy(out, newVal)
			return out.Interface(), nil
		}
		slice := reflect.MakeSlice(reflect.SliceOf(newVal.Type()), 0, 1)
		return reflect.Append(slice, newVal).Interface(), nil
	}

	currVal := reflect.ValueOf(current)
	if currVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("current value is not a slice")
	}

	if newVal.Kind() == reflect.Slice {
		if currVal.Type().Elem() != newVal.Type().Elem() {
			result := make([]any, 0, currVal.Len()+newVal.Len())
			for i := 0; i < currVal.Len(); i++ {
				result = append(result, currVal.Index(i).Interface())
			}
			for i := 0; i < newVal.Len(); i++ {
				result = append(result, newVal.Index(i).Interface())
			}
			return result, nil
		}
		out := reflect.MakeSlice(currVal.Type(), 0, currVal.Len()+newVal.Len())
		out = reflect.AppendSlice(out, currVal)
		return reflect.AppendSlice(out, newVal).Interface(), nil
	}

	if !newVal.Type().AssignableTo(currVal.Type().Elem()) {
		return nil, fmt.Errorf("cannot append %T to %T", update, current)
	}
	out := reflect.MakeSlice(currVal.Type(), 0, currVal.Len()+1)
	out = reflect.AppendSlice(out, currVal)
	return reflect.Append(out, newVal).Interface(), nil
}

// AddReducer sums numeric values; a missing current value counts as zero.
func AddReducer(current, update any) (any, error) {
	if current == nil {
		return update, nil
	}
	switch c := current.(type) {
	case int:
		if u, ok := update.(int); ok {
			return c + u, nil
		}
	case int64:
		if u, ok := update.(int64); ok {
			return c + u, nil
		}
	case float64:
		if u, ok := update.(float64); ok {
			return c + u, nil
		}
	}
	return nil, fmt.Errorf("cannot add %T to %T", update, current)
}
