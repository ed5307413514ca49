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
	"github.com/osrg/gosai/pkg/sai"
)

// portOwner is the part of the port and LAG modules that bridge port
// attachment needs.
type portOwner interface {
	IncRef(id sai.ObjectID) error
	DecRef(id sai.ObjectID) error
	DefaultBridgePort(id sai.ObjectID) sai.ObjectID
	SetDefaultBridgePort(id, bridgePort sai.ObjectID) error
}

func (s *BridgeServer) ownerOf(port sai.ObjectID) portOwner {
	if port.IsLag() {
		return s.lags
	}
	return s.ports
}

// checkPortTarget verifies that port names an existing LAG or a valid
// physical port that is not a LAG member.
func (s *BridgeServer) checkPortTarget(port sai.ObjectID, index int) error {
	if port.IsLag() {
		if !s.lags.Exists(port) {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "lag %s does not exist", port)
		}
		return nil
	}
	if !s.ports.IsValid(port) {
		return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "port %s is not valid", port)
	}
	if s.ports.IsLagMember(port) {
		return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "port %s is a lag member", port)
	}
	return nil
}

// checkAttachment enforces the uniqueness and existence rules of the
// attachment of the draft bridge port bp.
func (s *BridgeServer) checkAttachment(bp *table.BridgePort, attrs []sai.Attribute) error {
	portIdx, _ := findAttr(attrs, sai.BridgePortAttrPortID)
	switch a := bp.Attachment.(type) {
	case table.PortAttachment:
		if err := s.checkPortTarget(a.Port, portIdx); err != nil {
			return err
		}
		if def := s.ownerOf(a.Port).DefaultBridgePort(a.Port); !def.IsNull() {
			return sai.NewError(sai.StatusItemAlreadyExists, "%s already has bridge port %s", a.Port, def)
		}
	case table.SubPortAttachment:
		if err := s.checkPortTarget(a.Port, portIdx); err != nil {
			return err
		}
		vlanIdx, _ := findAttr(attrs, sai.BridgePortAttrVlanID)
		if !s.vlans.IsVlanValid(a.Vlan) {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, vlanIdx, "vlan %d does not exist", a.Vlan)
		}
		if other, ok := s.index.SubPorts.Get(a.Port, a.Vlan); ok {
			return sai.NewError(sai.StatusItemAlreadyExists, "%s vlan %d already has sub-port %s", a.Port, a.Vlan, other)
		}
		def := s.ownerOf(a.Port).DefaultBridgePort(a.Port)
		if !def.IsNull() && s.vlans.IsMember(a.Vlan, def) {
			return sai.NewError(sai.StatusFailure, "bridge port %s of %s is already a member of vlan %d", def, a.Port, a.Vlan)
		}
	case table.RouterAttachment:
		rifIdx, _ := findAttr(attrs, sai.BridgePortAttrRifID)
		if !s.rifs.Exists(a.Rif) {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, rifIdx, "router interface %s does not exist", a.Rif)
		}
		if other := s.rifs.AttachedBridgePort(a.Rif); !other.IsNull() {
			return sai.NewError(sai.StatusItemAlreadyExists, "router interface %s is attached to %s", a.Rif, other)
		}
	case table.TunnelAttachment:
		tunnelIdx, _ := findAttr(attrs, sai.BridgePortAttrTunnelID)
		if !s.tunnels.Exists(a.Tunnel) {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, tunnelIdx, "tunnel %s does not exist", a.Tunnel)
		}
	default:
		return sai.NewError(sai.StatusInvalidParameter, "unexpected attachment %T", a)
	}
	return nil
}

// attach binds the committed bridge port bp to its attachment and records
// the inverse of every step in undo.
func (s *BridgeServer) attach(bp *table.BridgePort, undo *undoStack) error {
	id := bp.ID
	switch a := bp.Attachment.(type) {
	case table.PortAttachment:
		owner := s.ownerOf(a.Port)
		if err := owner.IncRef(a.Port); err != nil {
			return err
		}
		undo.push("port reference", func() error { return owner.DecRef(a.Port) })
		if err := owner.SetDefaultBridgePort(a.Port, id); err != nil {
			return err
		}
		undo.push("default bridge port", func() error {
			return owner.SetDefaultBridgePort(a.Port, sai.NullObjectID)
		})
		return s.attachLag(a.Port, id, undo)
	case table.SubPortAttachment:
		owner := s.ownerOf(a.Port)
		if err := owner.IncRef(a.Port); err != nil {
			return err
		}
		undo.push("port reference", func() error { return owner.DecRef(a.Port) })
		if err := s.index.SubPorts.Insert(a.Port, a.Vlan, id); err != nil {
			return err
		}
		undo.push("sub-port mapping", func() error { return s.index.SubPorts.Remove(a.Port, a.Vlan) })
		return s.attachLag(a.Port, id, undo)
	case table.RouterAttachment:
		if err := s.rifs.IncRef(a.Rif); err != nil {
			return err
		}
		undo.push("router interface reference", func() error { return s.rifs.DecRef(a.Rif) })
		if err := s.rifs.SetAttachedBridgePort(a.Rif, id); err != nil {
			return err
		}
		undo.push("router interface attachment", func() error {
			return s.rifs.SetAttachedBridgePort(a.Rif, sai.NullObjectID)
		})
	case table.TunnelAttachment:
		if err := s.tunnels.IncRef(a.Tunnel); err != nil {
			return err
		}
		undo.push("tunnel reference", func() error { return s.tunnels.DecRef(a.Tunnel) })
		if err := s.index.TunnelPorts.Insert(a.Tunnel, id); err != nil {
			return err
		}
		undo.push("tunnel mapping", func() error { return s.index.TunnelPorts.Remove(a.Tunnel, id) })
	default:
		return sai.NewError(sai.StatusInvalidParameter, "unexpected attachment %T", a)
	}
	return nil
}

func (s *BridgeServer) attachLag(port, id sai.ObjectID, undo *undoStack) error {
	if !port.IsLag() {
		return nil
	}
	if err := s.index.LagPorts.Insert(port, id); err != nil {
		return err
	}
	undo.push("lag mapping", func() error { return s.index.LagPorts.Remove(port, id) })
	return nil
}

// detach is the inverse of attach.
func (s *BridgeServer) detach(bp *table.BridgePort, undo *undoStack) error {
	id := bp.ID
	switch a := bp.Attachment.(type) {
	case table.PortAttachment:
		if err := s.detachLag(a.Port, id, undo); err != nil {
			return err
		}
		owner := s.ownerOf(a.Port)
		if err := owner.SetDefaultBridgePort(a.Port, sai.NullObjectID); err != nil {
			return err
		}
		undo.push("default bridge port", func() error { return owner.SetDefaultBridgePort(a.Port, id) })
		if err := owner.DecRef(a.Port); err != nil {
			return err
		}
		undo.push("port reference", func() error { return owner.IncRef(a.Port) })
	case table.SubPortAttachment:
		if err := s.detachLag(a.Port, id, undo); err != nil {
			return err
		}
		if err := s.index.SubPorts.Remove(a.Port, a.Vlan); err != nil {
			return err
		}
		undo.push("sub-port mapping", func() error { return s.index.SubPorts.Insert(a.Port, a.Vlan, id) })
		owner := s.ownerOf(a.Port)
		if err := owner.DecRef(a.Port); err != nil {
			return err
		}
		undo.push("port reference", func() error { return owner.IncRef(a.Port) })
	case table.RouterAttachment:
		if err := s.rifs.SetAttachedBridgePort(a.Rif, sai.NullObjectID); err != nil {
			return err
		}
		undo.push("router interface attachment", func() error { return s.rifs.SetAttachedBridgePort(a.Rif, id) })
		if err := s.rifs.DecRef(a.Rif); err != nil {
			return err
		}
		undo.push("router interface reference", func() error { return s.rifs.IncRef(a.Rif) })
	case table.TunnelAttachment:
		if err := s.index.TunnelPorts.Remove(a.Tunnel, id); err != nil {
			return err
		}
		undo.push("tunnel mapping", func() error { return s.index.TunnelPorts.Insert(a.Tunnel, id) })
		if err := s.tunnels.DecRef(a.Tunnel); err != nil {
			return err
		}
		undo.push("tunnel reference", func() error { return s.tunnels.IncRef(a.Tunnel) })
	default:
		return sai.NewError(sai.StatusInvalidParameter, "unexpected attachment %T", a)
	}
	return nil
}

func (s *BridgeServer) detachLag(port, id sai.ObjectID, undo *undoStack) error {
	if !port.IsLag() {
		return nil
	}
	if err := s.index.LagPorts.Remove(port, id); err != nil {
		return err
	}
	undo.push("lag mapping", func() error { return s.index.LagPorts.Insert(port, id) })
	return nil
}
