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

package switchdb

import (
	"sync"

	"github.com/scylladb/go-set/u64set"

	"github.com/osrg/gosai/pkg/sai"
)

type Ports struct {
	sync.Mutex
	objects
	lagOf map[sai.ObjectID]sai.ObjectID
}

func newPorts() *Ports {
	return &Ports{
		objects: newObjects(sai.ObjectTypePort),
		lagOf:   make(map[sai.ObjectID]sai.ObjectID),
	}
}

func (p *Ports) IsValid(port sai.ObjectID) bool {
	return p.Exists(port)
}

func (p *Ports) IsLagMember(port sai.ObjectID) bool {
	_, ok := p.lagOf[port]
	return ok
}

// LagOf returns the LAG port is a member of.
func (p *Ports) LagOf(port sai.ObjectID) (sai.ObjectID, bool) {
	lag, ok := p.lagOf[port]
	return lag, ok
}

func (p *Ports) ValidPorts() []sai.ObjectID {
	return p.IDs()
}

func (p *Ports) DefaultBridgePort(port sai.ObjectID) sai.ObjectID {
	return p.cell(port)
}

func (p *Ports) SetDefaultBridgePort(port, bridgePort sai.ObjectID) error {
	return p.setCell(port, bridgePort)
}

// AddPort registers a physical port. A null id picks the next free one.
func (p *Ports) AddPort(name string, id sai.ObjectID) (sai.ObjectID, error) {
	p.Lock()
	defer p.Unlock()
	return p.add(name, id)
}

func (p *Ports) RemovePort(id sai.ObjectID) error {
	p.Lock()
	defer p.Unlock()
	if lag, ok := p.lagOf[id]; ok {
		return sai.NewError(sai.StatusObjectInUse, "port %s is a member of %s", id, lag)
	}
	return p.remove(id)
}

type Lags struct {
	sync.Mutex
	objects
	ports   *Ports
	members map[sai.ObjectID]*u64set.Set
	handler sai.LagMembershipHandler
}

func newLags(ports *Ports) *Lags {
	return &Lags{
		objects: newObjects(sai.ObjectTypeLag),
		ports:   ports,
		members: make(map[sai.ObjectID]*u64set.Set),
	}
}

func (l *Lags) DefaultBridgePort(lag sai.ObjectID) sai.ObjectID {
	return l.cell(lag)
}

func (l *Lags) SetDefaultBridgePort(lag, bridgePort sai.ObjectID) error {
	return l.setCell(lag, bridgePort)
}

func (l *Lags) RegisterMembershipHandler(h sai.LagMembershipHandler) {
	l.Lock()
	defer l.Unlock()
	l.handler = h
}

// Members returns the member ports of lag in ascending order.
func (l *Lags) Members(lag sai.ObjectID) []sai.ObjectID {
	s, ok := l.members[lag]
	if !ok {
		return nil
	}
	ids := make([]sai.ObjectID, 0, s.Size())
	s.Each(func(id uint64) bool {
		ids = append(ids, sai.ObjectID(id))
		return true
	})
	sortIDs(ids)
	return ids
}

func (l *Lags) notify(h sai.LagMembershipHandler, lag sai.ObjectID, op sai.LagOperation, ports []sai.ObjectID) error {
	if h == nil {
		return nil
	}
	return h(lag, op, ports)
}

func (l *Lags) AddLag(name string, id sai.ObjectID) (sai.ObjectID, error) {
	l.Lock()
	id, err := l.add(name, id)
	if err == nil {
		l.members[id] = u64set.New()
	}
	h := l.handler
	l.Unlock()
	if err != nil {
		return sai.NullObjectID, err
	}
	return id, l.notify(h, id, sai.LagOperationCreate, nil)
}

func (l *Lags) RemoveLag(id sai.ObjectID) error {
	l.Lock()
	if s, ok := l.members[id]; ok && !s.IsEmpty() {
		l.Unlock()
		return sai.NewError(sai.StatusObjectInUse, "lag %s has %d members", id, s.Size())
	}
	err := l.remove(id)
	if err == nil {
		delete(l.members, id)
	}
	h := l.handler
	l.Unlock()
	if err != nil {
		return err
	}
	return l.notify(h, id, sai.LagOperationRemove, nil)
}

// AddMembers puts ports into lag and reports the ports that were not
// members yet to the membership handler.
func (l *Lags) AddMembers(lag sai.ObjectID, ports ...sai.ObjectID) error {
	l.Lock()
	s, ok := l.members[lag]
	if !ok {
		l.Unlock()
		return sai.NewError(sai.StatusItemNotFound, "lag %s not found", lag)
	}
	l.ports.Lock()
	var added []sai.ObjectID
	for _, port := range ports {
		if !l.ports.IsValid(port) {
			l.ports.Unlock()
			l.Unlock()
			return sai.NewError(sai.StatusInvalidParameter, "port %s not found", port)
		}
		if other, ok := l.ports.lagOf[port]; ok && other != lag {
			l.ports.Unlock()
			l.Unlock()
			return sai.NewError(sai.StatusItemAlreadyExists, "port %s is a member of %s", port, other)
		}
	}
	for _, port := range ports {
		if s.Has(uint64(port)) {
			continue
		}
		s.Add(uint64(port))
		l.ports.lagOf[port] = lag
		added = append(added, port)
	}
	l.ports.Unlock()
	h := l.handler
	l.Unlock()

	if len(added) == 0 {
		return nil
	}
	return l.notify(h, lag, sai.LagOperationAddPorts, added)
}

// RemoveMembers takes ports out of lag and reports the ports that were
// members to the membership handler.
func (l *Lags) RemoveMembers(lag sai.ObjectID, ports ...sai.ObjectID) error {
	l.Lock()
	s, ok := l.members[lag]
	if !ok {
		l.Unlock()
		return sai.NewError(sai.StatusItemNotFound, "lag %s not found", lag)
	}
	l.ports.Lock()
	var removed []sai.ObjectID
	for _, port := range ports {
		if !s.Has(uint64(port)) {
			continue
		}
		s.Remove(uint64(port))
		delete(l.ports.lagOf, port)
		removed = append(removed, port)
	}
	l.ports.Unlock()
	h := l.handler
	l.Unlock()

	if len(removed) == 0 {
		return nil
	}
	return l.notify(h, lag, sai.LagOperationDelPorts, removed)
}

type Rifs struct {
	sync.Mutex
	objects
}

func (r *Rifs) AttachedBridgePort(rif sai.ObjectID) sai.ObjectID {
	return r.cell(rif)
}

func (r *Rifs) SetAttachedBridgePort(rif, bridgePort sai.ObjectID) error {
	return r.setCell(rif, bridgePort)
}

func (r *Rifs) AddRif(name string, id sai.ObjectID) (sai.ObjectID, error) {
	r.Lock()
	defer r.Unlock()
	return r.add(name, id)
}

func (r *Rifs) RemoveRif(id sai.ObjectID) error {
	r.Lock()
	defer r.Unlock()
	return r.remove(id)
}

type Tunnels struct {
	sync.Mutex
	objects
}

func (t *Tunnels) AddTunnel(name string, id sai.ObjectID) (sai.ObjectID, error) {
	t.Lock()
	defer t.Unlock()
	return t.add(name, id)
}

func (t *Tunnels) RemoveTunnel(id sai.ObjectID) error {
	t.Lock()
	defer t.Unlock()
	return t.remove(id)
}

// Vlans tracks the known VLANs and their bridge port members.
type Vlans struct {
	sync.Mutex
	members map[uint16]*u64set.Set
}

func (v *Vlans) IsVlanValid(vlan uint16) bool {
	_, ok := v.members[vlan]
	return ok
}

func (v *Vlans) IsMember(vlan uint16, bridgePort sai.ObjectID) bool {
	s, ok := v.members[vlan]
	return ok && s.Has(uint64(bridgePort))
}

func (v *Vlans) AddVlan(vlan uint16) error {
	if !sai.IsValidVlanID(vlan) {
		return sai.NewError(sai.StatusInvalidParameter, "invalid vlan %d", vlan)
	}
	v.Lock()
	defer v.Unlock()
	if _, ok := v.members[vlan]; ok {
		return sai.NewError(sai.StatusItemAlreadyExists, "vlan %d exists", vlan)
	}
	v.members[vlan] = u64set.New()
	return nil
}

func (v *Vlans) RemoveVlan(vlan uint16) error {
	v.Lock()
	defer v.Unlock()
	s, ok := v.members[vlan]
	if !ok {
		return sai.NewError(sai.StatusItemNotFound, "vlan %d not found", vlan)
	}
	if !s.IsEmpty() {
		return sai.NewError(sai.StatusObjectInUse, "vlan %d has %d members", vlan, s.Size())
	}
	delete(v.members, vlan)
	return nil
}

func (v *Vlans) AddVlanMember(vlan uint16, bridgePort sai.ObjectID) error {
	v.Lock()
	defer v.Unlock()
	s, ok := v.members[vlan]
	if !ok {
		return sai.NewError(sai.StatusItemNotFound, "vlan %d not found", vlan)
	}
	if s.Has(uint64(bridgePort)) {
		return sai.NewError(sai.StatusItemAlreadyExists, "%s is a member of vlan %d", bridgePort, vlan)
	}
	s.Add(uint64(bridgePort))
	return nil
}

func (v *Vlans) RemoveVlanMember(vlan uint16, bridgePort sai.ObjectID) error {
	v.Lock()
	defer v.Unlock()
	s, ok := v.members[vlan]
	if !ok || !s.Has(uint64(bridgePort)) {
		return sai.NewError(sai.StatusItemNotFound, "%s is not a member of vlan %d", bridgePort, vlan)
	}
	s.Remove(uint64(bridgePort))
	return nil
}

// L2mc tracks L2 multicast groups and the bridges flooding to them. A
// bridge may use one group for several flood types, so attachments are
// counted.
type L2mc struct {
	sync.Mutex
	objects
	bridges map[sai.ObjectID]map[sai.ObjectID]int
}

func (g *L2mc) AddBridge(group, bridge sai.ObjectID) error {
	m, ok := g.bridges[group]
	if !ok {
		return sai.NewError(sai.StatusItemNotFound, "l2mc group %s not found", group)
	}
	m[bridge]++
	g.m[group].refs++
	return nil
}

func (g *L2mc) RemoveBridge(group, bridge sai.ObjectID) error {
	m, ok := g.bridges[group]
	if !ok || m[bridge] == 0 {
		return sai.NewError(sai.StatusItemNotFound, "bridge %s is not attached to %s", bridge, group)
	}
	if m[bridge]--; m[bridge] == 0 {
		delete(m, bridge)
	}
	g.m[group].refs--
	return nil
}

// Bridges returns the bridges attached to group.
func (g *L2mc) Bridges(group sai.ObjectID) []sai.ObjectID {
	m, ok := g.bridges[group]
	if !ok {
		return nil
	}
	ids := make([]sai.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func (g *L2mc) AddGroup(name string, id sai.ObjectID) (sai.ObjectID, error) {
	g.Lock()
	defer g.Unlock()
	id, err := g.add(name, id)
	if err != nil {
		return sai.NullObjectID, err
	}
	g.bridges[id] = make(map[sai.ObjectID]int)
	return id, nil
}

func (g *L2mc) RemoveGroup(id sai.ObjectID) error {
	g.Lock()
	defer g.Unlock()
	if err := g.remove(id); err != nil {
		return err
	}
	delete(g.bridges, id)
	return nil
}

type DB struct {
	Ports   *Ports
	Lags    *Lags
	Rifs    *Rifs
	Tunnels *Tunnels
	Vlans   *Vlans
	L2mc    *L2mc
}

func New() *DB {
	ports := newPorts()
	return &DB{
		Ports:   ports,
		Lags:    newLags(ports),
		Rifs:    &Rifs{objects: newObjects(sai.ObjectTypeRouterInterface)},
		Tunnels: &Tunnels{objects: newObjects(sai.ObjectTypeTunnel)},
		Vlans:   &Vlans{members: make(map[uint16]*u64set.Set)},
		L2mc: &L2mc{
			objects: newObjects(sai.ObjectTypeL2mcGroup),
			bridges: make(map[sai.ObjectID]map[sai.ObjectID]int),
		},
	}
}

// ByName resolves a port, LAG, router interface, tunnel or L2 multicast
// group name.
func (db *DB) ByName(name string) (sai.ObjectID, bool) {
	type named interface {
		sync.Locker
		ByName(string) (sai.ObjectID, bool)
	}
	for _, m := range []named{db.Ports, db.Lags, db.Rifs, db.Tunnels, db.L2mc} {
		m.Lock()
		id, ok := m.ByName(name)
		m.Unlock()
		if ok {
			return id, true
		}
	}
	return sai.NullObjectID, false
}
