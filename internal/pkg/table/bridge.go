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
	"github.com/osrg/gosai/pkg/sai"
)

// Bridge is the cached state of one bridge object.
type Bridge struct {
	ID                  sai.ObjectID
	Type                sai.BridgeType
	SwitchID            sai.ObjectID
	MaxLearnedAddresses uint32
	LearnDisable        bool
	FloodControl        [sai.FloodTypeMax]sai.FloodControlType
	FloodGroup          [sai.FloodTypeMax]sai.ObjectID
	// RefCount counts the bridge ports attached to this bridge.
	RefCount uint32
	// HwInfo is owned by the backend.
	HwInfo interface{}
}

// NewDefaultBridge returns a 1Q bridge record with every field at its
// default value.
func NewDefaultBridge(switchID sai.ObjectID) *Bridge {
	b := &Bridge{
		Type:     sai.BridgeType1Q,
		SwitchID: switchID,
	}
	for t := sai.FloodType(0); t < sai.FloodTypeMax; t++ {
		b.FloodControl[t] = sai.FloodControlSubPorts
		b.FloodGroup[t] = sai.NullObjectID
	}
	return b
}

func (b *Bridge) Clone() *Bridge {
	c := *b
	return &c
}

// AttachedFloodGroups returns the non null multicast groups referenced by
// the flood group attributes.
func (b *Bridge) AttachedFloodGroups() []sai.ObjectID {
	groups := make([]sai.ObjectID, 0, sai.FloodTypeMax)
	for _, g := range b.FloodGroup {
		if !g.IsNull() {
			groups = append(groups, g)
		}
	}
	return groups
}

// AttrValue reads one attribute out of the record. PORT_LIST is not a
// field of the record and is answered by the caller.
func (b *Bridge) AttrValue(attr *sai.Attribute) bool {
	switch attr.ID {
	case sai.BridgeAttrType:
		attr.Value.S32 = int32(b.Type)
	case sai.BridgeAttrMaxLearnedAddresses:
		attr.Value.U32 = b.MaxLearnedAddresses
	case sai.BridgeAttrLearnDisable:
		attr.Value.Bool = b.LearnDisable
	case sai.BridgeAttrUnknownUnicastFloodControlType,
		sai.BridgeAttrUnknownMulticastFloodControlType,
		sai.BridgeAttrBroadcastFloodControlType:
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		attr.Value.S32 = int32(b.FloodControl[t])
	case sai.BridgeAttrUnknownUnicastFloodGroup,
		sai.BridgeAttrUnknownMulticastFloodGroup,
		sai.BridgeAttrBroadcastFloodGroup:
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		attr.Value.OID = b.FloodGroup[t]
	default:
		return false
	}
	return true
}

// IsDuplicate reports whether writing attr would leave the record unchanged.
func (b *Bridge) IsDuplicate(attr *sai.Attribute) bool {
	switch attr.ID {
	case sai.BridgeAttrMaxLearnedAddresses:
		return b.MaxLearnedAddresses == attr.Value.U32
	case sai.BridgeAttrLearnDisable:
		return b.LearnDisable == attr.Value.Bool
	case sai.BridgeAttrUnknownUnicastFloodControlType,
		sai.BridgeAttrUnknownMulticastFloodControlType,
		sai.BridgeAttrBroadcastFloodControlType:
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		return b.FloodControl[t] == sai.FloodControlType(attr.Value.S32)
	case sai.BridgeAttrUnknownUnicastFloodGroup,
		sai.BridgeAttrUnknownMulticastFloodGroup,
		sai.BridgeAttrBroadcastFloodGroup:
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		return b.FloodGroup[t] == attr.Value.OID
	}
	return false
}

// Apply writes a settable attribute into the record. It returns false for
// attributes that can not change after creation.
func (b *Bridge) Apply(attr *sai.Attribute) bool {
	switch attr.ID {
	case sai.BridgeAttrMaxLearnedAddresses:
		b.MaxLearnedAddresses = attr.Value.U32
	case sai.BridgeAttrLearnDisable:
		b.LearnDisable = attr.Value.Bool
	case sai.BridgeAttrUnknownUnicastFloodControlType,
		sai.BridgeAttrUnknownMulticastFloodControlType,
		sai.BridgeAttrBroadcastFloodControlType:
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		b.FloodControl[t] = sai.FloodControlType(attr.Value.S32)
	case sai.BridgeAttrUnknownUnicastFloodGroup,
		sai.BridgeAttrUnknownMulticastFloodGroup,
		sai.BridgeAttrBroadcastFloodGroup:
		t, _ := sai.FloodTypeOfAttr(attr.ID)
		b.FloodGroup[t] = attr.Value.OID
	default:
		return false
	}
	return true
}
