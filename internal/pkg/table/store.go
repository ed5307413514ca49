// Copyright (C) 2024 Nippon Telegraph and Telephone Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"sort"

	"github.com/osrg/gosai/pkg/sai"
)

// Store is a keyed collection of records. Records are copied on the way in
// and on the way out, so callers never hold a reference into the store and
// map growth can not invalidate anything they kept.
//
// Store does no locking of its own. The owner serializes access.
type Store[V any] struct {
	records map[sai.ObjectID]*V
	clone   func(*V) *V
}

// NewStore returns an empty store. clone must return a deep copy of its
// argument.
func NewStore[V any](clone func(*V) *V) *Store[V] {
	return &Store[V]{
		records: make(map[sai.ObjectID]*V),
		clone:   clone,
	}
}

// Write inserts or replaces the record stored under id.
func (s *Store[V]) Write(id sai.ObjectID, v *V) {
	s.records[id] = s.clone(v)
}

func (s *Store[V]) Delete(id sai.ObjectID) error {
	if _, ok := s.records[id]; !ok {
		return sai.NewError(sai.StatusItemNotFound, "object %s not found", id)
	}
	delete(s.records, id)
	return nil
}

// Read returns a copy of the record stored under id.
func (s *Store[V]) Read(id sai.ObjectID) (*V, error) {
	v, ok := s.records[id]
	if !ok {
		return nil, sai.NewError(sai.StatusItemNotFound, "object %s not found", id)
	}
	return s.clone(v), nil
}

// Update applies f to a copy of the record and stores the copy only when
// f succeeds.
func (s *Store[V]) Update(id sai.ObjectID, f func(*V) error) error {
	v, err := s.Read(id)
	if err != nil {
		return err
	}
	if err := f(v); err != nil {
		return err
	}
	s.records[id] = v
	return nil
}

func (s *Store[V]) Exists(id sai.ObjectID) bool {
	_, ok := s.records[id]
	return ok
}

func (s *Store[V]) Count() int {
	return len(s.records)
}

// Keys returns every id in ascending order.
func (s *Store[V]) Keys() []sai.ObjectID {
	keys := make([]sai.ObjectID, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// List returns every id in ascending order. It fails with BufferOverflow,
// reporting the required size, when capacity is smaller than Count.
func (s *Store[V]) List(capacity int) ([]sai.ObjectID, error) {
	if capacity < len(s.records) {
		return nil, sai.BufferOverflowError(len(s.records))
	}
	return s.Keys(), nil
}

// Walk calls f with a copy of every record in ascending id order until f
// returns false.
func (s *Store[V]) Walk(f func(sai.ObjectID, *V) bool) {
	for _, k := range s.Keys() {
		if !f(k, s.clone(s.records[k])) {
			return
		}
	}
}
