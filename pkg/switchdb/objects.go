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

// Package switchdb keeps the objects owned by the subsystems around the
// bridge manager: physical ports, LAGs, router interfaces, tunnels, VLANs
// and L2 multicast groups. Each module has its own lock.
//
// The query and reference methods used by the bridge server assume the
// caller holds the module lock. The Add and Remove methods take it
// themselves.
package switchdb

import (
	"sort"

	"github.com/osrg/gosai/pkg/sai"
)

type entry struct {
	name string
	refs uint32
	// bridgePort is the default bridge port of a port or LAG, or the
	// bridge port a router interface is attached to.
	bridgePort sai.ObjectID
}

// objects is a named, reference counted set of ids of one type.
type objects struct {
	kind  sai.ObjectType
	seq   uint64
	m     map[sai.ObjectID]*entry
	names map[string]sai.ObjectID
}

func newObjects(kind sai.ObjectType) objects {
	return objects{
		kind:  kind,
		m:     make(map[sai.ObjectID]*entry),
		names: make(map[string]sai.ObjectID),
	}
}

func (o *objects) add(name string, id sai.ObjectID) (sai.ObjectID, error) {
	if id.IsNull() {
		for {
			o.seq++
			id = sai.NewObjectID(o.kind, o.seq)
			if _, ok := o.m[id]; !ok {
				break
			}
		}
	}
	if id.Type() != o.kind {
		return sai.NullObjectID, sai.NewError(sai.StatusInvalidObjectType, "%s is not a %s", id, o.kind)
	}
	if _, ok := o.m[id]; ok {
		return sai.NullObjectID, sai.NewError(sai.StatusItemAlreadyExists, "%s %s exists", o.kind, id)
	}
	if name == "" {
		name = id.String()
	}
	if _, ok := o.names[name]; ok {
		return sai.NullObjectID, sai.NewError(sai.StatusItemAlreadyExists, "%s %q exists", o.kind, name)
	}
	o.m[id] = &entry{name: name, bridgePort: sai.NullObjectID}
	o.names[name] = id
	return id, nil
}

func (o *objects) remove(id sai.ObjectID) error {
	e, err := o.get(id)
	if err != nil {
		return err
	}
	if e.refs > 0 || !e.bridgePort.IsNull() {
		return sai.NewError(sai.StatusObjectInUse, "%s %s has %d references", o.kind, id, e.refs)
	}
	delete(o.names, e.name)
	delete(o.m, id)
	return nil
}

func (o *objects) get(id sai.ObjectID) (*entry, error) {
	e, ok := o.m[id]
	if !ok {
		return nil, sai.NewError(sai.StatusItemNotFound, "%s %s not found", o.kind, id)
	}
	return e, nil
}

// Exists reports whether id is known.
func (o *objects) Exists(id sai.ObjectID) bool {
	_, ok := o.m[id]
	return ok
}

func (o *objects) IncRef(id sai.ObjectID) error {
	e, err := o.get(id)
	if err != nil {
		return err
	}
	e.refs++
	return nil
}

func (o *objects) DecRef(id sai.ObjectID) error {
	e, err := o.get(id)
	if err != nil {
		return err
	}
	if e.refs == 0 {
		return sai.NewError(sai.StatusFailure, "%s %s reference count underflow", o.kind, id)
	}
	e.refs--
	return nil
}

// RefCount returns the reference count of id, zero when unknown.
func (o *objects) RefCount(id sai.ObjectID) uint32 {
	if e, ok := o.m[id]; ok {
		return e.refs
	}
	return 0
}

func (o *objects) cell(id sai.ObjectID) sai.ObjectID {
	if e, ok := o.m[id]; ok {
		return e.bridgePort
	}
	return sai.NullObjectID
}

func (o *objects) setCell(id, bp sai.ObjectID) error {
	e, err := o.get(id)
	if err != nil {
		return err
	}
	e.bridgePort = bp
	return nil
}

// ByName resolves a configured name.
func (o *objects) ByName(name string) (sai.ObjectID, bool) {
	id, ok := o.names[name]
	return id, ok
}

// Name returns the name of id.
func (o *objects) Name(id sai.ObjectID) string {
	if e, ok := o.m[id]; ok {
		return e.name
	}
	return ""
}

// IDs returns every id in ascending order.
func (o *objects) IDs() []sai.ObjectID {
	l := make([]sai.ObjectID, 0, len(o.m))
	for id := range o.m {
		l = append(l, id)
	}
	sortIDs(l)
	return l
}

func sortIDs(l []sai.ObjectID) {
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
}
