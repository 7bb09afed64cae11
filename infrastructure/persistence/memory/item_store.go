// Package memory provides an in-memory ItemStore with the same conditional
// write semantics as the DynamoDB implementation. It backs tests and local
// development runs.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"pm-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ItemStore is a mutex-guarded map of partitions
type ItemStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]map[string]types.AttributeValue
}

// NewItemStore creates an empty in-memory item store
func NewItemStore() *ItemStore {
	return &ItemStore{
		partitions: make(map[string]map[string]map[string]types.AttributeValue),
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if av, ok := item[name].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}

func versionAttr(item map[string]types.AttributeValue) (int, bool) {
	av, ok := item["Version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(av.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// Put stores an item, honoring the put condition
func (s *ItemStore) Put(ctx context.Context, item map[string]types.AttributeValue, cond ports.PutCondition) error {
	pk := stringAttr(item, "PK")
	sk := stringAttr(item, "SK")

	s.mu.Lock()
	defer s.mu.Unlock()

	partition, ok := s.partitions[pk]
	existing, exists := map[string]types.AttributeValue(nil), false
	if ok {
		existing, exists = partition[sk]
	}

	if cond.MustNotExist && exists {
		return ports.ErrConditionFailed
	}
	if cond.ExpectedVersion != nil {
		if !exists {
			return ports.ErrConditionFailed
		}
		v, ok := versionAttr(existing)
		if !ok || v != *cond.ExpectedVersion {
			return ports.ErrConditionFailed
		}
	}

	if partition == nil {
		partition = make(map[string]map[string]types.AttributeValue)
		s.partitions[pk] = partition
	}
	partition[sk] = copyItem(item)
	return nil
}

// Get returns the item at the key, or ErrItemNotFound
func (s *ItemStore) Get(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partition, ok := s.partitions[pk]
	if !ok {
		return nil, ports.ErrItemNotFound
	}
	item, ok := partition[sk]
	if !ok {
		return nil, ports.ErrItemNotFound
	}
	return copyItem(item), nil
}

// QueryPrefix returns all items in a partition whose sort key starts with the
// prefix, ordered by sort key the way the real store would return them.
func (s *ItemStore) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partition := s.partitions[pk]
	keys := make([]string, 0, len(partition))
	for sk := range partition {
		if len(sk) >= len(skPrefix) && sk[:len(skPrefix)] == skPrefix {
			keys = append(keys, sk)
		}
	}
	sort.Strings(keys)

	items := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, sk := range keys {
		items = append(items, copyItem(partition[sk]))
	}
	return items, nil
}

// Delete removes the item and reports whether it existed
func (s *ItemStore) Delete(ctx context.Context, pk, sk string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition, ok := s.partitions[pk]
	if !ok {
		return false, nil
	}
	if _, exists := partition[sk]; !exists {
		return false, nil
	}
	delete(partition, sk)
	return true, nil
}
