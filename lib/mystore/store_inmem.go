package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

type inMemoryStore[T any] struct {
	sync.Mutex
	items map[string]T
	order []string
}

func newInMemoryStore[T any](c context.Context) (*inMemoryStore[T], func(), error) {
	return &inMemoryStore[T]{
		items: make(map[string]T),
	}, func() {}, nil
}

func (s *inMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	s.Lock()
	defer s.Unlock()

	// Within this block everything is transactional
	ctx := context.WithValue(c, ctxTransactionKey{}, true)

	return f(ctx)
}

func (s *inMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	if _, exists := s.items[uid]; !exists {
		s.order = append(s.order, uid)
	}
	s.items[uid] = value

	return nil
}

func (s *inMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	result, exists := s.items[uid]

	return result, exists, nil
}

func (s *inMemoryStore[T]) Remove(c context.Context, uid string) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	if _, exists := s.items[uid]; exists {
		delete(s.items, uid)
		for i, u := range s.order {
			if u == uid {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}

	return nil
}

func (s *inMemoryStore[T]) List(c context.Context) ([]T, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	result := make([]T, 0, len(s.items))
	for _, uid := range s.order {
		result = append(result, s.items[uid])
	}

	return result, nil
}

func (s *inMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
	for _, item := range all {
		if matchesFilters(item, filters) {
			result = append(result, item)
		}
	}

	if orderByField != "" {
		sort.SliceStable(result, func(i, j int) bool {
			return fieldAsString(result[i], orderByField) < fieldAsString(result[j], orderByField)
		})
	}

	return result, nil
}

// Only equality filters are supported, which is all the local backend needs.
func matchesFilters[T any](item T, filters []Filter) bool {
	for _, f := range filters {
		field := reflect.ValueOf(item).FieldByName(f.Field)
		if !field.IsValid() {
			return false
		}
		if !reflect.DeepEqual(field.Interface(), f.Value) {
			return false
		}
	}
	return true
}

func fieldAsString[T any](item T, fieldName string) string {
	field := reflect.ValueOf(item).FieldByName(fieldName)
	if !field.IsValid() {
		return ""
	}
	return fmt.Sprintf("%v", field.Interface())
}
