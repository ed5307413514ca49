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

const maxRemoveAttempts = 3

func checkBridgePortID(id sai.ObjectID) error {
	if id.Type() != sai.ObjectTypeBridgePort {
		return sai.NewError(sai.StatusInvalidObjectType, "%s is not a bridge port", id)
	}
	return nil
}

// bridgePortKind extracts the type and the port or LAG of a bridge port
// create request. Both are needed to pick the locks before anything else
// is looked at.
func bridgePortKind(attrs []sai.Attribute) (sai.BridgePortType, sai.ObjectID, error) {
	typeIdx, ok := findAttr(attrs, sai.BridgePortAttrType)
	if !ok {
		return 0, sai.NullObjectID, sai.NewError(sai.StatusMandatoryAttributeMissing, "bridge port type")
	}
	if err := checkBridgePortValue(&attrs[typeIdx], typeIdx); err != nil {
		return 0, sai.NullObjectID, err
	}
	port := sai.NullObjectID
	if i, ok := findAttr(attrs, sai.BridgePortAttrPortID); ok {
		port = attrs[i].Value.OID
	}
	return sai.BridgePortType(attrs[typeIdx].Value.S32), port, nil
}

func (s *BridgeServer) CreateBridgePort(attrs []sai.Attribute) (sai.ObjectID, error) {
	return s.createBridgePort(attrs, BridgePortEventCreate)
}

// AddDefaultBridgePort creates the admin-down Port bridge port of port (a
// physical port or a LAG) on the default bridge.
func (s *BridgeServer) AddDefaultBridgePort(port sai.ObjectID) (sai.ObjectID, error) {
	return s.addDefaultBridgePort(port, BridgePortEventCreate)
}

func (s *BridgeServer) addDefaultBridgePort(port sai.ObjectID, ev BridgePortEventType) (sai.ObjectID, error) {
	def, err := s.DefaultBridgeID()
	if err != nil {
		return sai.NullObjectID, err
	}
	return s.createBridgePort([]sai.Attribute{
		sai.S32Attr(sai.BridgePortAttrType, int32(sai.BridgePortTypePort)),
		sai.OIDAttr(sai.BridgePortAttrPortID, port),
		sai.OIDAttr(sai.BridgePortAttrBridgeID, def),
		sai.BoolAttr(sai.BridgePortAttrAdminState, false),
	}, ev)
}

func (s *BridgeServer) createBridgePort(attrs []sai.Attribute, ev BridgePortEventType) (sai.ObjectID, error) {
	t, port, err := bridgePortKind(attrs)
	if err != nil {
		return sai.NullObjectID, err
	}
	tbl, err := s.backend.BridgePortAttrTable(t)
	if err != nil {
		return sai.NullObjectID, err
	}
	if err := validateAttrs(tbl, attrs, sai.OperationCreate); err != nil {
		return sai.NullObjectID, err
	}
	for i := range attrs {
		if err := checkBridgePortValue(&attrs[i], i); err != nil {
			return sai.NullObjectID, err
		}
	}

	bp, err := s.commitBridgePort(t, port, attrs)
	if err != nil {
		return sai.NullObjectID, err
	}
	s.logger.Info("bridge port created", log.Fields{
		"Topic":      "BridgePort",
		"Key":        bp.ID,
		"Type":       bp.Type,
		"Bridge":     bp.BridgeID,
		"Attachment": bp.Attachment,
	})
	s.notify(&BridgePortEvent{Type: ev, BridgePort: *bp})
	return bp.ID, nil
}

// draftBridgePort builds the record a create request describes.
func (s *BridgeServer) draftBridgePort(t sai.BridgePortType, attrs []sai.Attribute) *table.BridgePort {
	bp := table.NewDefaultBridgePort(s.switchID)
	bp.Type = t

	var port, rif, tunnel sai.ObjectID
	var vlan uint16
	for i := range attrs {
		attr := &attrs[i]
		switch attr.ID {
		case sai.BridgePortAttrType:
		case sai.BridgePortAttrPortID:
			port = attr.Value.OID
		case sai.BridgePortAttrVlanID:
			vlan = attr.Value.U16
		case sai.BridgePortAttrRifID:
			rif = attr.Value.OID
		case sai.BridgePortAttrTunnelID:
			tunnel = attr.Value.OID
		case sai.BridgePortAttrBridgeID:
			bp.BridgeID = attr.Value.OID
		default:
			bp.Apply(attr)
		}
	}

	switch t {
	case sai.BridgePortTypePort:
		bp.Attachment = table.PortAttachment{Port: port}
	case sai.BridgePortTypeSubPort:
		bp.Attachment = table.SubPortAttachment{Port: port, Vlan: vlan}
	case sai.BridgePortType1QRouter, sai.BridgePortType1DRouter:
		bp.Attachment = table.RouterAttachment{Rif: rif}
	case sai.BridgePortTypeTunnel:
		bp.Attachment = table.TunnelAttachment{Tunnel: tunnel}
	}
	return bp
}

// checkOwningBridge resolves and checks the bridge the draft bp joins.
func (s *BridgeServer) checkOwningBridge(bp *table.BridgePort, attrs []sai.Attribute) error {
	idx, ok := findAttr(attrs, sai.BridgePortAttrBridgeID)
	if !ok {
		idx, _ = findAttr(attrs, sai.BridgePortAttrType)
	}
	if bp.Type == sai.BridgePortTypePort {
		if bp.BridgeID.IsNull() {
			bp.BridgeID = s.defaultBridge
		} else if bp.BridgeID != s.defaultBridge {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, idx, "port bridge ports belong to the default bridge %s", s.defaultBridge)
		}
	}
	b, err := s.bridges.Read(bp.BridgeID)
	if err != nil {
		return sai.AttrErrorf(sai.StatusInvalidAttrValue, idx, "bridge %s does not exist", bp.BridgeID)
	}
	if b.Type != bp.Type.BridgeType() {
		return sai.AttrErrorf(sai.StatusInvalidAttrValue, idx, "%s bridge port cannot join %s bridge %s", bp.Type, b.Type, b.ID)
	}
	return nil
}

func (s *BridgeServer) commitBridgePort(t sai.BridgePortType, port sai.ObjectID, attrs []sai.Attribute) (*table.BridgePort, error) {
	g := s.acquire(lockSetFor(t, port))
	defer g.release()

	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	bp := s.draftBridgePort(t, attrs)
	if err := s.checkOwningBridge(bp, attrs); err != nil {
		return nil, err
	}
	if err := s.checkAttachment(bp, attrs); err != nil {
		return nil, err
	}

	undo := newUndoStack(s.logger, "BridgePort")
	defer undo.unwind()

	id, err := s.backend.CreateBridgePort(bp)
	if err != nil {
		return nil, err
	}
	bp.ID = id
	undo.setKey(id.String())
	undo.push("backend remove", func() error { return s.backend.RemoveBridgePort(bp) })

	s.bridgePorts.Write(id, bp)
	undo.push("store delete", func() error { return s.bridgePorts.Delete(id) })

	if err := s.bridges.Update(bp.BridgeID, func(b *table.Bridge) error {
		b.RefCount++
		return nil
	}); err != nil {
		return nil, err
	}
	undo.push("bridge reference", func() error { return s.decBridgeRef(bp.BridgeID) })

	if err := s.index.BridgePorts.Insert(bp.BridgeID, id); err != nil {
		return nil, err
	}
	undo.push("bridge mapping", func() error { return s.index.BridgePorts.Remove(bp.BridgeID, id) })

	if err := s.attach(bp, undo); err != nil {
		return nil, err
	}
	undo.commit()
	return bp.Clone(), nil
}

func (s *BridgeServer) decBridgeRef(id sai.ObjectID) error {
	return s.bridges.Update(id, func(b *table.Bridge) error {
		if b.RefCount == 0 {
			return sai.NewError(sai.StatusFailure, "bridge %s reference count underflow", id)
		}
		b.RefCount--
		return nil
	})
}

func (s *BridgeServer) RemoveBridgePort(id sai.ObjectID) error {
	return s.removeBridgePort(id, false)
}

// removeBridgePort removes a bridge port. force skips the in-use checks and
// drops the member mappings; it is used only on teardown.
func (s *BridgeServer) removeBridgePort(id sai.ObjectID, force bool) error {
	if err := checkBridgePortID(id); err != nil {
		return err
	}
	var bp *table.BridgePort
	var err error
	for attempt := 0; ; attempt++ {
		var retry bool
		bp, retry, err = s.tryRemoveBridgePort(id, force)
		if !retry {
			break
		}
		if attempt+1 >= maxRemoveAttempts {
			return sai.NewError(sai.StatusFailure, "bridge port %s changed while removing", id)
		}
	}
	if err != nil {
		return err
	}
	s.logger.Info("bridge port removed", log.Fields{
		"Topic": "BridgePort",
		"Key":   id,
	})
	s.notify(&BridgePortEvent{Type: BridgePortEventRemove, BridgePort: *bp})
	return nil
}

// tryRemoveBridgePort looks the bridge port up with the bridge lock only,
// then takes the locks its attachment needs in the documented order. The
// record is checked again under the full lock set; retry is set when it no
// longer matches.
func (s *BridgeServer) tryRemoveBridgePort(id sai.ObjectID, force bool) (*table.BridgePort, bool, error) {
	s.mu.RLock()
	snap, err := s.bridgePorts.Read(id)
	s.mu.RUnlock()
	if err != nil {
		return nil, false, err
	}

	g := s.acquire(lockSetFor(snap.Type, snap.PortID()))
	defer g.release()

	bp, err := s.bridgePorts.Read(id)
	if err != nil {
		return nil, false, err
	}
	if bp.Type != snap.Type || bp.Attachment != snap.Attachment {
		return nil, true, nil
	}
	if !force {
		if err := s.checkInitialized(); err != nil {
			return nil, false, err
		}
		switch {
		case bp.AdminState:
			return nil, false, sai.NewError(sai.StatusObjectInUse, "bridge port %s is admin up", id)
		case bp.RefCount > 0:
			return nil, false, sai.NewError(sai.StatusObjectInUse, "bridge port %s has %d references", id, bp.RefCount)
		case bp.FdbCount > 0:
			return nil, false, sai.NewError(sai.StatusObjectInUse, "bridge port %s has %d fdb entries", id, bp.FdbCount)
		}
	}

	undo := newUndoStack(s.logger, "BridgePort")
	undo.setKey(id.String())
	defer undo.unwind()

	if err := s.backend.RemoveBridgePort(bp); err != nil {
		return nil, false, err
	}
	undo.push("backend reissue", func() error { return s.reissueBridgePort(bp) })

	if err := s.detach(bp, undo); err != nil {
		return nil, false, err
	}
	if err := s.index.BridgePorts.Remove(bp.BridgeID, id); err != nil {
		return nil, false, err
	}
	undo.push("bridge mapping", func() error { return s.index.BridgePorts.Insert(bp.BridgeID, id) })

	if err := s.decBridgeRef(bp.BridgeID); err != nil {
		return nil, false, err
	}
	undo.push("bridge reference", func() error {
		return s.bridges.Update(bp.BridgeID, func(b *table.Bridge) error {
			b.RefCount++
			return nil
		})
	})

	if err := s.bridgePorts.Delete(id); err != nil {
		return nil, false, err
	}
	undo.push("store write", func() error {
		s.bridgePorts.Write(id, bp)
		return nil
	})

	if force {
		s.purgeMembers(id)
	}
	undo.commit()
	return bp, false, nil
}

// reissueBridgePort recreates a removed bridge port in the backend under
// its old id.
func (s *BridgeServer) reissueBridgePort(bp *table.BridgePort) error {
	id, err := s.backend.CreateBridgePort(bp)
	if err != nil {
		return err
	}
	if id != bp.ID {
		s.logger.Error("backend reissued a different bridge port id", log.Fields{
			"Topic":    "BridgePort",
			"Key":      bp.ID,
			"Reissued": id,
		})
		stray := bp.Clone()
		stray.ID = id
		if err := s.backend.RemoveBridgePort(stray); err != nil {
			s.logger.Error("failed to release reissued bridge port", log.Fields{
				"Topic": "BridgePort",
				"Key":   id,
				"Error": err,
			})
		}
		return sai.NewError(sai.StatusFailure, "backend reissued %s instead of %s", id, bp.ID)
	}
	hw := bp.HwInfo
	return s.bridgePorts.Update(bp.ID, func(v *table.BridgePort) error {
		v.HwInfo = hw
		return nil
	})
}

func (s *BridgeServer) purgeMembers(id sai.ObjectID) {
	for _, m := range []*table.IDSetMap{s.index.VlanMembers, s.index.StpPorts, s.index.L2mcMembers} {
		for _, member := range m.List(id) {
			if err := m.Remove(id, member); err != nil {
				s.logger.Warn("failed to drop bridge port member", log.Fields{
					"Topic":  "BridgePort",
					"Key":    id,
					"Member": member,
					"Error":  err,
				})
			}
		}
	}
}

func (s *BridgeServer) SetBridgePortAttribute(id sai.ObjectID, attr sai.Attribute) error {
	if err := checkBridgePortID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{vlan: attr.ID == sai.BridgePortAttrAdminState})
	defer g.release()

	if err := s.checkInitialized(); err != nil {
		return err
	}
	bp, err := s.bridgePorts.Read(id)
	if err != nil {
		return err
	}
	tbl, err := s.backend.BridgePortAttrTable(bp.Type)
	if err != nil {
		return err
	}
	if err := validateAttrs(tbl, []sai.Attribute{attr}, sai.OperationSet); err != nil {
		return err
	}
	if err := checkBridgePortValue(&attr, 0); err != nil {
		return err
	}
	if bp.IsDuplicate(&attr) {
		return nil
	}
	next := bp.Clone()
	if !next.Apply(&attr) {
		return sai.AttrErrorf(sai.StatusInvalidAttribute, 0, "%s is read-only", sai.BridgePortAttrName(attr.ID))
	}
	if err := s.backend.SetBridgePortAttribute(bp, attr); err != nil {
		return err
	}
	s.bridgePorts.Write(id, next)

	s.logger.Debug("bridge port attribute set", log.Fields{
		"Topic":     "BridgePort",
		"Key":       id,
		"Attribute": sai.BridgePortAttrName(attr.ID),
	})
	return nil
}

func (s *BridgeServer) GetBridgePortAttribute(id sai.ObjectID, attrs []sai.Attribute) error {
	if err := checkBridgePortID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{bridgeRead: true})
	defer g.release()

	bp, err := s.bridgePorts.Read(id)
	if err != nil {
		return err
	}
	tbl, err := s.backend.BridgePortAttrTable(bp.Type)
	if err != nil {
		return err
	}
	if err := validateAttrs(tbl, attrs, sai.OperationGet); err != nil {
		return err
	}
	for i := range attrs {
		if !bp.AttrValue(&attrs[i]) {
			return sai.AttrError(sai.StatusUnknownAttribute, i)
		}
	}
	return nil
}

func (s *BridgeServer) GetBridgePortStats(id sai.ObjectID, counters []sai.BridgePortStat) ([]uint64, error) {
	if len(counters) == 0 {
		return nil, sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	if err := checkBridgePortID(id); err != nil {
		return nil, err
	}
	g := s.acquire(lockSet{bridgeRead: true})
	defer g.release()

	bp, err := s.bridgePorts.Read(id)
	if err != nil {
		return nil, err
	}
	return s.backend.GetBridgePortStats(bp, counters)
}

func (s *BridgeServer) ClearBridgePortStats(id sai.ObjectID, counters []sai.BridgePortStat) error {
	if len(counters) == 0 {
		return sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	if err := checkBridgePortID(id); err != nil {
		return err
	}
	g := s.acquire(lockSet{bridgeRead: true})
	defer g.release()

	bp, err := s.bridgePorts.Read(id)
	if err != nil {
		return err
	}
	return s.backend.ClearBridgePortStats(bp, counters)
}

func (s *BridgeServer) ListBridgePorts(capacity int) ([]sai.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bridgePorts.List(capacity)
}

func (s *BridgeServer) BridgePortCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bridgePorts.Count()
}
