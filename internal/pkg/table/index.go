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
	"fmt"
	"sort"
	"strconv"
	"strings"

	radix "github.com/armon/go-radix"
	"github.com/scylladb/go-set/u64set"

	"github.com/osrg/gosai/pkg/sai"
)

// IDSetMap maps an object id to a set of object ids.
type IDSetMap struct {
	name string
	m    map[sai.ObjectID]*u64set.Set
}

func NewIDSetMap(name string) *IDSetMap {
	return &IDSetMap{
		name: name,
		m:    make(map[sai.ObjectID]*u64set.Set),
	}
}

func (m *IDSetMap) Insert(key, id sai.ObjectID) error {
	s, ok := m.m[key]
	if !ok {
		s = u64set.New()
		m.m[key] = s
	}
	if s.Has(uint64(id)) {
		return sai.NewError(sai.StatusItemAlreadyExists, "%s already maps %s to %s", m.name, key, id)
	}
	s.Add(uint64(id))
	return nil
}

func (m *IDSetMap) Remove(key, id sai.ObjectID) error {
	s, ok := m.m[key]
	if !ok || !s.Has(uint64(id)) {
		return sai.NewError(sai.StatusItemNotFound, "%s does not map %s to %s", m.name, key, id)
	}
	s.Remove(uint64(id))
	if s.IsEmpty() {
		delete(m.m, key)
	}
	return nil
}

func (m *IDSetMap) Has(key, id sai.ObjectID) bool {
	s, ok := m.m[key]
	return ok && s.Has(uint64(id))
}

func (m *IDSetMap) Count(key sai.ObjectID) int {
	if s, ok := m.m[key]; ok {
		return s.Size()
	}
	return 0
}

// List returns the ids mapped from key in ascending order.
func (m *IDSetMap) List(key sai.ObjectID) []sai.ObjectID {
	s, ok := m.m[key]
	if !ok {
		return nil
	}
	l := s.List()
	ids := make([]sai.ObjectID, 0, len(l))
	for _, v := range l {
		ids = append(ids, sai.ObjectID(v))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ListInto is List with a caller supplied capacity.
func (m *IDSetMap) ListInto(key sai.ObjectID, capacity int) ([]sai.ObjectID, error) {
	if n := m.Count(key); capacity < n {
		return nil, sai.BufferOverflowError(n)
	}
	return m.List(key), nil
}

// Keys returns every key with at least one mapped id.
func (m *IDSetMap) Keys() []sai.ObjectID {
	keys := make([]sai.ObjectID, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SubPortIndex maps (port or LAG, VLAN) to the sub-port bridge port bound
// to it. Keys share the port as prefix so all sub-ports of one port can be
// walked together.
type SubPortIndex struct {
	tree *radix.Tree
}

func NewSubPortIndex() *SubPortIndex {
	return &SubPortIndex{
		tree: radix.New(),
	}
}

func subPortPrefix(port sai.ObjectID) string {
	return fmt.Sprintf("%016x/", uint64(port))
}

func subPortKey(port sai.ObjectID, vlan uint16) string {
	return fmt.Sprintf("%s%04d", subPortPrefix(port), vlan)
}

func (idx *SubPortIndex) Insert(port sai.ObjectID, vlan uint16, bp sai.ObjectID) error {
	key := subPortKey(port, vlan)
	if _, ok := idx.tree.Get(key); ok {
		return sai.NewError(sai.StatusItemAlreadyExists, "sub-port on port %s vlan %d already exists", port, vlan)
	}
	idx.tree.Insert(key, bp)
	return nil
}

func (idx *SubPortIndex) Remove(port sai.ObjectID, vlan uint16) error {
	if _, ok := idx.tree.Delete(subPortKey(port, vlan)); !ok {
		return sai.NewError(sai.StatusItemNotFound, "no sub-port on port %s vlan %d", port, vlan)
	}
	return nil
}

func (idx *SubPortIndex) Get(port sai.ObjectID, vlan uint16) (sai.ObjectID, bool) {
	v, ok := idx.tree.Get(subPortKey(port, vlan))
	if !ok {
		return sai.NullObjectID, false
	}
	return v.(sai.ObjectID), true
}

type SubPort struct {
	Vlan       uint16
	BridgePort sai.ObjectID
}

// OfPort returns every sub-port of port ordered by VLAN.
func (idx *SubPortIndex) OfPort(port sai.ObjectID) []SubPort {
	var l []SubPort
	idx.tree.WalkPrefix(subPortPrefix(port), func(key string, v interface{}) bool {
		vlan, err := strconv.ParseUint(key[strings.LastIndexByte(key, '/')+1:], 10, 16)
		if err != nil {
			return false
		}
		l = append(l, SubPort{Vlan: uint16(vlan), BridgePort: v.(sai.ObjectID)})
		return false
	})
	return l
}

func (idx *SubPortIndex) Len() int {
	return idx.tree.Len()
}

// Index groups the mapping tables derived from the bridge and bridge port
// stores. It is kept consistent with the stores by the bridge server.
type Index struct {
	BridgePorts *IDSetMap
	LagPorts    *IDSetMap
	TunnelPorts *IDSetMap
	VlanMembers *IDSetMap
	StpPorts    *IDSetMap
	L2mcMembers *IDSetMap
	SubPorts    *SubPortIndex
}

func NewIndex() *Index {
	return &Index{
		BridgePorts: NewIDSetMap("bridge to bridge port map"),
		LagPorts:    NewIDSetMap("lag to bridge port map"),
		TunnelPorts: NewIDSetMap("tunnel to bridge port map"),
		VlanMembers: NewIDSetMap("bridge port to vlan member map"),
		StpPorts:    NewIDSetMap("bridge port to stp port map"),
		L2mcMembers: NewIDSetMap("bridge port to l2mc member map"),
		SubPorts:    NewSubPortIndex(),
	}
}
