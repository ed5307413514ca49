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

package server

import (
	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
)

func touchesFloodGroup(attrs []sai.Attribute) bool {
	for i := range attrs {
		if sai.IsFloodGroupAttr(attrs[i].ID) {
			return true
		}
	}
	return false
}

func checkBridgeID(id sai.ObjectID) error {
	if id.Type() != sai.ObjectTypeBridge {
		return sai.NewError(sai.StatusInvalidObjectType, "%s is not a bridge", id)
	}
	return nil
}

func (s *BridgeServer) CreateBridge(attrs []sai.Attribute) (sai.ObjectID, error) {
	s.mu.RLock()
	err := s.checkInitialized()
	s.mu.RUnlock()
	if err != nil {
		return sai.NullObjectID, err
	}
	return s.createBridge(attrs)
}

func (s *BridgeServer) createBridge(attrs []sai.Attribute) (sai.ObjectID, error) {
	typeIdx, ok := findAttr(attrs, sai.BridgeAttrType)
	if !ok {
		return sai.NullObjectID, sai.NewError(sai.StatusMandatoryAttributeMissing, "bridge type")
	}
	if err := checkBridgeValue(&attrs[typeIdx], typeIdx); err != nil {
		return sai.NullObjectID, err
	}
	bridgeType := sai.BridgeType(attrs[typeIdx].Value.S32)

	tbl, err := s.backend.BridgeAttrTable(bridgeType)
	if err != nil {
		return sai.NullObjectID, err
	}
	if err := validateAttrs(tbl, attrs, sai.OperationCreate); err != nil {
		return sai.NullObjectID, err
	}
	for i := range attrs {
		if err := checkBridgeValue(&attrs[i], i); err != nil {
			return sai.NullObjectID, err
		}
	}

	g := s.acquire(lockSet{l2mc: touchesFloodGroup(attrs)})
	defer g.release()

	if bridgeType == sai.BridgeType1Q && !s.defaultBridge.IsNull() {
		return sai.NullObjectID, sai.NewError(sai.StatusItemAlreadyExists, "1Q bridge %s already exists", s.defaultBridge)
	}

	b := table.NewDefaultBridge(s.switchID)
	b.Type = bridgeType
	for i := range attrs {
		b.Apply(&attrs[i])
	}

	undo := newUndoStack(s.logger, "Bridge")
	defer undo.unwind()

	id, err := s.backend.CreateBridge(b)
	if err != nil {
		return sai.NullObjectID, err
	}
	b.ID = id
	undo.setKey(id.String())
	undo.push("backend remove", func() error {
		return s.backend.RemoveBridge(b)
	})

	for t := sai.FloodType(0); t < sai.FloodTypeMax; t++ {
		group := b.FloodGroup[t]
		if group.IsNull() {
			continue
		}
		if err := s.l2mc.AddBridge(group, id); err != nil {
			idx, _ := findAttr(attrs, sai.FloodGroupAttr(t))
			return sai.NullObjectID, sai.AttrErrorf(sai.StatusInvalidAttrValue, idx, "%s: %v", group, err)
		}
		undo.push("flood group detach", func() error {
			return s.l2mc.RemoveBridge(group, id)
		})
	}

	s.bridges.Write(id, b)
	undo.commit()

	s.logger.Info("bridge created", log.Fields{
		"Topic": "Bridge",
		"Key":   id,
		"Type":  bridgeType,
	})
	return id, nil
}

func (s *BridgeServer) RemoveBridge(id sai.ObjectID) error {
	return s.removeBridge(id, false)
}

// removeBridge removes a bridge. force skips the checks that protect the
// default bridge and is used only on teardown.
func (s *BridgeServer) removeBridge(id sai.ObjectID, force bool) error {
	if err := checkBridgeID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{l2mc: true})
	defer g.release()

	b, err := s.bridges.Read(id)
	if err != nil {
		return err
	}
	if !force {
		if err := s.checkInitialized(); err != nil {
			return err
		}
		if id == s.defaultBridge {
			return sai.NewError(sai.StatusObjectInUse, "%s is the default bridge", id)
		}
	}
	if b.RefCount > 0 {
		return sai.NewError(sai.StatusObjectInUse, "%s has %d bridge ports", id, b.RefCount)
	}

	if err := s.backend.RemoveBridge(b); err != nil {
		return err
	}
	for _, group := range b.AttachedFloodGroups() {
		if err := s.l2mc.RemoveBridge(group, id); err != nil {
			s.logger.Warn("failed to detach flood group", log.Fields{
				"Topic": "Bridge",
				"Key":   id,
				"Group": group,
				"Error": err,
			})
		}
	}
	if err := s.bridges.Delete(id); err != nil {
		return err
	}
	if id == s.defaultBridge {
		s.defaultBridge = sai.NullObjectID
	}

	s.logger.Info("bridge removed", log.Fields{
		"Topic": "Bridge",
		"Key":   id,
	})
	return nil
}

func (s *BridgeServer) SetBridgeAttribute(id sai.ObjectID, attr sai.Attribute) error {
	if err := checkBridgeID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{l2mc: sai.IsFloodGroupAttr(attr.ID)})
	defer g.release()

	if err := s.checkInitialized(); err != nil {
		return err
	}
	b, err := s.bridges.Read(id)
	if err != nil {
		return err
	}
	tbl, err := s.backend.BridgeAttrTable(b.Type)
	if err != nil {
		return err
	}
	attrs := []sai.Attribute{attr}
	if err := validateAttrs(tbl, attrs, sai.OperationSet); err != nil {
		return err
	}
	if err := checkBridgeValue(&attr, 0); err != nil {
		return err
	}
	if b.IsDuplicate(&attr) {
		return nil
	}
	next := b.Clone()
	if !next.Apply(&attr) {
		return sai.AttrErrorf(sai.StatusInvalidAttribute, 0, "%s is read-only", sai.BridgeAttrName(attr.ID))
	}

	undo := newUndoStack(s.logger, "Bridge")
	undo.setKey(id.String())
	defer undo.unwind()

	if err := s.backend.SetBridgeAttribute(b, attr); err != nil {
		return err
	}

	if sai.IsFloodGroupAttr(attr.ID) {
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		prev := sai.Attribute{ID: attr.ID}
		b.AttrValue(&prev)
		undo.push("backend restore", func() error {
			return s.backend.SetBridgeAttribute(b, prev)
		})
		old, group := b.FloodGroup[t], attr.Value.OID
		if !group.IsNull() {
			if err := s.l2mc.AddBridge(group, id); err != nil {
				return sai.AttrErrorf(sai.StatusInvalidAttrValue, 0, "%s: %v", group, err)
			}
		}
		if !old.IsNull() {
			if err := s.l2mc.RemoveBridge(old, id); err != nil {
				s.logger.Warn("failed to detach flood group", log.Fields{
					"Topic": "Bridge",
					"Key":   id,
					"Group": old,
					"Error": err,
				})
			}
		}
	}

	s.bridges.Write(id, next)
	undo.commit()

	s.logger.Debug("bridge attribute set", log.Fields{
		"Topic":     "Bridge",
		"Key":       id,
		"Attribute": sai.BridgeAttrName(attr.ID),
	})
	return nil
}

// GetBridgeAttribute fills in the values of attrs from the cached bridge.
// For the port list the capacity is len(Value.OIDList); when it is too
// small the required count is stored in Value.U32 and BufferOverflow is
// returned.
func (s *BridgeServer) GetBridgeAttribute(id sai.ObjectID, attrs []sai.Attribute) error {
	if err := checkBridgeID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{bridgeRead: true})
	defer g.release()

	b, err := s.bridges.Read(id)
	if err != nil {
		return err
	}
	tbl, err := s.backend.BridgeAttrTable(b.Type)
	if err != nil {
		return err
	}
	if err := validateAttrs(tbl, attrs, sai.OperationGet); err != nil {
		return err
	}
	for i := range attrs {
		attr := &attrs[i]
		if attr.ID == sai.BridgeAttrPortList {
			ports, err := s.index.BridgePorts.ListInto(id, len(attr.Value.OIDList))
			if err != nil {
				attr.Value.U32 = uint32(sai.RequiredOf(err))
				return err
			}
			attr.Value.OIDList = ports
			attr.Value.U32 = uint32(len(ports))
			continue
		}
		if !b.AttrValue(attr) {
			return sai.AttrError(sai.StatusUnknownAttribute, i)
		}
	}
	return nil
}

func (s *BridgeServer) GetBridgeStats(id sai.ObjectID, counters []sai.BridgeStat) ([]uint64, error) {
	if len(counters) == 0 {
		return nil, sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	if err := checkBridgeID(id); err != nil {
		return nil, err
	}
	g := s.acquire(lockSet{bridgeRead: true})
	defer g.release()

	b, err := s.bridges.Read(id)
	if err != nil {
		return nil, err
	}
	return s.backend.GetBridgeStats(b, counters)
}

func (s *BridgeServer) ClearBridgeStats(id sai.ObjectID, counters []sai.BridgeStat) error {
	if len(counters) == 0 {
		return sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	if err := checkBridgeID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{bridgeRead: true})
	defer g.release()

	b, err := s.bridges.Read(id)
	if err != nil {
		return err
	}
	return s.backend.ClearBridgeStats(b, counters)
}

// ListBridges returns the ids of all bridges in ascending order.
func (s *BridgeServer) ListBridges(capacity int) ([]sai.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bridges.List(capacity)
}

func (s *BridgeServer) BridgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bridges.Count()
}
