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

	"github.com/osrg/gosai/pkg/sai"
)

// Attachment is what a bridge port is bound to. The concrete type is fixed
// by the bridge port type.
type Attachment interface {
	isAttachment()
	String() string
}

type PortAttachment struct {
	// Port is a physical port or a LAG.
	Port sai.ObjectID
}

type SubPortAttachment struct {
	Port sai.ObjectID
	Vlan uint16
}

type RouterAttachment struct {
	Rif sai.ObjectID
}

type TunnelAttachment struct {
	Tunnel sai.ObjectID
}

func (PortAttachment) isAttachment()    {}
func (SubPortAttachment) isAttachment() {}
func (RouterAttachment) isAttachment()  {}
func (TunnelAttachment) isAttachment()  {}

func (a PortAttachment) String() string {
	return fmt.Sprintf("port %s", a.Port)
}

func (a SubPortAttachment) String() string {
	return fmt.Sprintf("port %s vlan %d", a.Port, a.Vlan)
}

func (a RouterAttachment) String() string {
	return fmt.Sprintf("rif %s", a.Rif)
}

func (a TunnelAttachment) String() string {
	return fmt.Sprintf("tunnel %s", a.Tunnel)
}

// NewAttachment returns the zero attachment for a bridge port type.
func NewAttachment(t sai.BridgePortType) Attachment {
	switch t {
	case sai.BridgePortTypePort:
		return PortAttachment{}
	case sai.BridgePortTypeSubPort:
		return SubPortAttachment{}
	case sai.BridgePortType1QRouter, sai.BridgePortType1DRouter:
		return RouterAttachment{}
	case sai.BridgePortTypeTunnel:
		return TunnelAttachment{}
	}
	return nil
}

// BridgePort is the cached state of one bridge port object.
type BridgePort struct {
	ID                        sai.ObjectID
	Type                      sai.BridgePortType
	BridgeID                  sai.ObjectID
	SwitchID                  sai.ObjectID
	FdbLearnMode              sai.FdbLearnMode
	MaxLearnedAddresses       uint32
	LearnLimitViolationAction sai.PacketAction
	AdminState                bool
	IngressFiltering          bool
	EgressFiltering           bool
	TaggingMode               sai.TaggingMode
	// RefCount counts the VLAN members, STP ports and multicast group
	// members bound to this bridge port.
	RefCount uint32
	// FdbCount counts the learned FDB entries on this bridge port.
	FdbCount   uint32
	Attachment Attachment
	HwInfo     interface{}
}

// NewDefaultBridgePort returns a port type bridge port record with every
// field at its default value.
func NewDefaultBridgePort(switchID sai.ObjectID) *BridgePort {
	return &BridgePort{
		Type:                      sai.BridgePortTypePort,
		SwitchID:                  switchID,
		FdbLearnMode:              sai.FdbLearnModeHw,
		LearnLimitViolationAction: sai.PacketActionDrop,
		AdminState:                false,
		IngressFiltering:          false,
		EgressFiltering:           false,
		TaggingMode:               sai.TaggingModeTagged,
		Attachment:                PortAttachment{},
	}
}

func (bp *BridgePort) Clone() *BridgePort {
	c := *bp
	return &c
}

// PortID returns the port or LAG of a port or sub-port bridge port.
func (bp *BridgePort) PortID() sai.ObjectID {
	switch a := bp.Attachment.(type) {
	case PortAttachment:
		return a.Port
	case SubPortAttachment:
		return a.Port
	case RouterAttachment, TunnelAttachment, nil:
		return sai.NullObjectID
	default:
		panic(fmt.Sprintf("unexpected attachment %T", a))
	}
}

func (bp *BridgePort) VlanID() uint16 {
	switch a := bp.Attachment.(type) {
	case SubPortAttachment:
		return a.Vlan
	case PortAttachment, RouterAttachment, TunnelAttachment, nil:
		return 0
	default:
		panic(fmt.Sprintf("unexpected attachment %T", a))
	}
}

func (bp *BridgePort) RifID() sai.ObjectID {
	switch a := bp.Attachment.(type) {
	case RouterAttachment:
		return a.Rif
	case PortAttachment, SubPortAttachment, TunnelAttachment, nil:
		return sai.NullObjectID
	default:
		panic(fmt.Sprintf("unexpected attachment %T", a))
	}
}

func (bp *BridgePort) TunnelID() sai.ObjectID {
	switch a := bp.Attachment.(type) {
	case TunnelAttachment:
		return a.Tunnel
	case PortAttachment, SubPortAttachment, RouterAttachment, nil:
		return sai.NullObjectID
	default:
		panic(fmt.Sprintf("unexpected attachment %T", a))
	}
}

// IsOnLag reports whether a port or sub-port bridge port sits on a LAG.
func (bp *BridgePort) IsOnLag() bool {
	return bp.PortID().IsLag()
}

// AttrValue reads one attribute out of the record.
func (bp *BridgePort) AttrValue(attr *sai.Attribute) bool {
	switch attr.ID {
	case sai.BridgePortAttrType:
		attr.Value.S32 = int32(bp.Type)
	case sai.BridgePortAttrMaxLearnedAddresses:
		attr.Value.U32 = bp.MaxLearnedAddresses
	case sai.BridgePortAttrFdbLearningMode:
		attr.Value.S32 = int32(bp.FdbLearnMode)
	case sai.BridgePortAttrFdbLearningLimitViolationPacketAction:
		attr.Value.S32 = int32(bp.LearnLimitViolationAction)
	case sai.BridgePortAttrAdminState:
		attr.Value.Bool = bp.AdminState
	case sai.BridgePortAttrIngressFiltering:
		attr.Value.Bool = bp.IngressFiltering
	case sai.BridgePortAttrEgressFiltering:
		attr.Value.Bool = bp.EgressFiltering
	case sai.BridgePortAttrTaggingMode:
		attr.Value.S32 = int32(bp.TaggingMode)
	case sai.BridgePortAttrBridgeID:
		attr.Value.OID = bp.BridgeID
	case sai.BridgePortAttrPortID:
		attr.Value.OID = bp.PortID()
	case sai.BridgePortAttrVlanID:
		attr.Value.U16 = bp.VlanID()
	case sai.BridgePortAttrRifID:
		attr.Value.OID = bp.RifID()
	case sai.BridgePortAttrTunnelID:
		attr.Value.OID = bp.TunnelID()
	default:
		return false
	}
	return true
}

func (bp *BridgePort) IsDuplicate(attr *sai.Attribute) bool {
	switch attr.ID {
	case sai.BridgePortAttrFdbLearningMode:
		return bp.FdbLearnMode == sai.FdbLearnMode(attr.Value.S32)
	case sai.BridgePortAttrMaxLearnedAddresses:
		return bp.MaxLearnedAddresses == attr.Value.U32
	case sai.BridgePortAttrFdbLearningLimitViolationPacketAction:
		return bp.LearnLimitViolationAction == sai.PacketAction(attr.Value.S32)
	case sai.BridgePortAttrAdminState:
		return bp.AdminState == attr.Value.Bool
	case sai.BridgePortAttrIngressFiltering:
		return bp.IngressFiltering == attr.Value.Bool
	case sai.BridgePortAttrEgressFiltering:
		return bp.EgressFiltering == attr.Value.Bool
	case sai.BridgePortAttrTaggingMode:
		return bp.TaggingMode == sai.TaggingMode(attr.Value.S32)
	}
	return false
}

// Apply writes a settable attribute into the record. The type, the bridge
// and the attachment fields are fixed at creation and make Apply return
// false.
func (bp *BridgePort) Apply(attr *sai.Attribute) bool {
	switch attr.ID {
	case sai.BridgePortAttrFdbLearningMode:
		bp.FdbLearnMode = sai.FdbLearnMode(attr.Value.S32)
	case sai.BridgePortAttrMaxLearnedAddresses:
		bp.MaxLearnedAddresses = attr.Value.U32
	case sai.BridgePortAttrFdbLearningLimitViolationPacketAction:
		bp.LearnLimitViolationAction = sai.PacketAction(attr.Value.S32)
	case sai.BridgePortAttrAdminState:
		bp.AdminState = attr.Value.Bool
	case sai.BridgePortAttrIngressFiltering:
		bp.IngressFiltering = attr.Value.Bool
	case sai.BridgePortAttrEgressFiltering:
		bp.EgressFiltering = attr.Value.Bool
	case sai.BridgePortAttrTaggingMode:
		bp.TaggingMode = sai.TaggingMode(attr.Value.S32)
	default:
		return false
	}
	return true
}
