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
	"github.com/osrg/gosai/pkg/backend"
	"github.com/osrg/gosai/pkg/sai"
)

// validateAttrs checks attrs against the capability table tbl for op. The
// first offending attribute is reported with its position.
func validateAttrs(tbl backend.AttrTable, attrs []sai.Attribute, op sai.Operation) error {
	if op != sai.OperationCreate && len(attrs) == 0 {
		return sai.NewError(sai.StatusInvalidParameter, "empty attribute list")
	}
	if len(attrs) > len(tbl) {
		return sai.NewError(sai.StatusInvalidParameter, "%d attributes exceed the %d known", len(attrs), len(tbl))
	}

	mandatory := 0
	for i, attr := range attrs {
		c, ok := tbl.Lookup(attr.ID)
		if !ok {
			return sai.AttrError(sai.StatusUnknownAttribute, i)
		}
		if !c.Implemented {
			return sai.AttrError(sai.StatusAttrNotImplemented, i)
		}
		if !c.Supported {
			return sai.AttrError(sai.StatusAttrNotSupported, i)
		}
		var valid bool
		switch op {
		case sai.OperationCreate:
			valid = c.ValidForCreate
		case sai.OperationSet:
			valid = c.ValidForSet
		case sai.OperationGet:
			valid = c.ValidForGet
		}
		if !valid {
			return sai.AttrErrorf(sai.StatusInvalidAttribute, i, "not valid for %s", op)
		}
		if c.MandatoryOnCreate {
			mandatory++
		}
	}

	if op == sai.OperationCreate && mandatory != tbl.MandatoryCount() {
		return sai.NewError(sai.StatusMandatoryAttributeMissing, "%d of %d mandatory attributes given", mandatory, tbl.MandatoryCount())
	}
	return nil
}

// findAttr returns the position of the first attribute with id.
func findAttr(attrs []sai.Attribute, id uint32) (int, bool) {
	for i := range attrs {
		if attrs[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func checkBridgeValue(attr *sai.Attribute, index int) error {
	switch attr.ID {
	case sai.BridgeAttrType:
		if !sai.BridgeType(attr.Value.S32).IsValid() {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "bridge type %d", attr.Value.S32)
		}
	case sai.BridgeAttrUnknownUnicastFloodControlType,
		sai.BridgeAttrUnknownMulticastFloodControlType,
		sai.BridgeAttrBroadcastFloodControlType:
		if !sai.FloodControlType(attr.Value.S32).IsValid() {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "flood control type %d", attr.Value.S32)
		}
	case sai.BridgeAttrUnknownUnicastFloodGroup,
		sai.BridgeAttrUnknownMulticastFloodGroup,
		sai.BridgeAttrBroadcastFloodGroup:
		if !attr.Value.OID.IsNull() && attr.Value.OID.Type() != sai.ObjectTypeL2mcGroup {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "%s is not a multicast group", attr.Value.OID)
		}
	}
	return nil
}

func checkBridgePortValue(attr *sai.Attribute, index int) error {
	switch attr.ID {
	case sai.BridgePortAttrType:
		if !sai.BridgePortType(attr.Value.S32).IsValid() {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "bridge port type %d", attr.Value.S32)
		}
	case sai.BridgePortAttrVlanID:
		if !sai.IsValidVlanID(attr.Value.U16) {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "vlan %d", attr.Value.U16)
		}
	case sai.BridgePortAttrTaggingMode:
		if !sai.TaggingMode(attr.Value.S32).IsValid() {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "tagging mode %d", attr.Value.S32)
		}
	case sai.BridgePortAttrFdbLearningMode:
		if !sai.FdbLearnMode(attr.Value.S32).IsValid() {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "fdb learning mode %d", attr.Value.S32)
		}
	case sai.BridgePortAttrFdbLearningLimitViolationPacketAction:
		if !sai.PacketAction(attr.Value.S32).IsValid() {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "packet action %d", attr.Value.S32)
		}
	case sai.BridgePortAttrPortID:
		if t := attr.Value.OID.Type(); t != sai.ObjectTypePort && t != sai.ObjectTypeLag {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "%s is not a port or lag", attr.Value.OID)
		}
	case sai.BridgePortAttrRifID:
		if attr.Value.OID.Type() != sai.ObjectTypeRouterInterface {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "%s is not a router interface", attr.Value.OID)
		}
	case sai.BridgePortAttrTunnelID:
		if attr.Value.OID.Type() != sai.ObjectTypeTunnel {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "%s is not a tunnel", attr.Value.OID)
		}
	case sai.BridgePortAttrBridgeID:
		if !attr.Value.OID.IsNull() && attr.Value.OID.Type() != sai.ObjectTypeBridge {
			return sai.AttrErrorf(sai.StatusInvalidAttrValue, index, "%s is not a bridge", attr.Value.OID)
		}
	}
	return nil
}
