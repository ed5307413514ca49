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

package sai

import (
	"fmt"
	"strings"
)

type BridgeType int32

const (
	BridgeType1Q BridgeType = iota
	BridgeType1D
)

func (t BridgeType) String() string {
	switch t {
	case BridgeType1Q:
		return "1q"
	case BridgeType1D:
		return "1d"
	}
	return fmt.Sprintf("BridgeType(%d)", int32(t))
}

func (t BridgeType) IsValid() bool {
	return t == BridgeType1Q || t == BridgeType1D
}

func ParseBridgeType(s string) (BridgeType, error) {
	switch strings.ToLower(s) {
	case "1q", "q":
		return BridgeType1Q, nil
	case "1d", "d":
		return BridgeType1D, nil
	}
	return 0, fmt.Errorf("unknown bridge type %q", s)
}

type BridgePortType int32

const (
	BridgePortTypePort BridgePortType = iota
	BridgePortTypeSubPort
	BridgePortType1QRouter
	BridgePortType1DRouter
	BridgePortTypeTunnel
)

var bridgePortTypeToString = map[BridgePortType]string{
	BridgePortTypePort:     "port",
	BridgePortTypeSubPort:  "sub-port",
	BridgePortType1QRouter: "1q-router",
	BridgePortType1DRouter: "1d-router",
	BridgePortTypeTunnel:   "tunnel",
}

func (t BridgePortType) String() string {
	if s, ok := bridgePortTypeToString[t]; ok {
		return s
	}
	return fmt.Sprintf("BridgePortType(%d)", int32(t))
}

func (t BridgePortType) IsValid() bool {
	_, ok := bridgePortTypeToString[t]
	return ok
}

// Bit returns the bitmap bit used by event subscribers.
func (t BridgePortType) Bit() uint32 {
	return 1 << uint32(t)
}

func (t BridgePortType) IsRouter() bool {
	return t == BridgePortType1QRouter || t == BridgePortType1DRouter
}

// BridgeType returns the only bridge type a bridge port of this type may
// belong to.
func (t BridgePortType) BridgeType() BridgeType {
	switch t {
	case BridgePortTypePort, BridgePortType1QRouter:
		return BridgeType1Q
	}
	return BridgeType1D
}

func ParseBridgePortType(s string) (BridgePortType, error) {
	for t, name := range bridgePortTypeToString {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	switch strings.ToLower(s) {
	case "subport", "sub_port":
		return BridgePortTypeSubPort, nil
	case "router":
		return BridgePortType1DRouter, nil
	}
	return 0, fmt.Errorf("unknown bridge port type %q", s)
}

// AllBridgePortTypes is the bitmap of every bridge port type.
const AllBridgePortTypes uint32 = 1<<uint32(BridgePortTypePort) |
	1<<uint32(BridgePortTypeSubPort) |
	1<<uint32(BridgePortType1QRouter) |
	1<<uint32(BridgePortType1DRouter) |
	1<<uint32(BridgePortTypeTunnel)

type FloodType int

const (
	FloodTypeUnknownUnicast FloodType = iota
	FloodTypeUnknownMulticast
	FloodTypeBroadcast
	FloodTypeMax
)

func (t FloodType) String() string {
	switch t {
	case FloodTypeUnknownUnicast:
		return "unknown-unicast"
	case FloodTypeUnknownMulticast:
		return "unknown-multicast"
	case FloodTypeBroadcast:
		return "broadcast"
	}
	return fmt.Sprintf("FloodType(%d)", int(t))
}

type FloodControlType int32

const (
	FloodControlNone FloodControlType = iota
	FloodControlSubPorts
	FloodControlL2mcGroup
)

func (t FloodControlType) String() string {
	switch t {
	case FloodControlNone:
		return "none"
	case FloodControlSubPorts:
		return "sub-ports"
	case FloodControlL2mcGroup:
		return "l2mc-group"
	}
	return fmt.Sprintf("FloodControlType(%d)", int32(t))
}

func (t FloodControlType) IsValid() bool {
	return t >= FloodControlNone && t <= FloodControlL2mcGroup
}

func ParseFloodControlType(s string) (FloodControlType, error) {
	switch strings.ToLower(s) {
	case "none", "drop":
		return FloodControlNone, nil
	case "sub-ports", "sub_ports", "subports":
		return FloodControlSubPorts, nil
	case "l2mc-group", "l2mc_group", "l2mc":
		return FloodControlL2mcGroup, nil
	}
	return 0, fmt.Errorf("unknown flood control type %q", s)
}

type FdbLearnMode int32

const (
	FdbLearnModeDrop FdbLearnMode = iota
	FdbLearnModeDisable
	FdbLearnModeHw
	FdbLearnModeCPUTrap
	FdbLearnModeCPULog
	FdbLearnModeFdbNotification
)

func (m FdbLearnMode) IsValid() bool {
	return m >= FdbLearnModeDrop && m <= FdbLearnModeFdbNotification
}

type PacketAction int32

const (
	PacketActionDrop PacketAction = iota
	PacketActionForward
	PacketActionCopy
	PacketActionCopyCancel
	PacketActionTrap
	PacketActionLog
	PacketActionDeny
	PacketActionTransit
)

func (a PacketAction) IsValid() bool {
	return a >= PacketActionDrop && a <= PacketActionTransit
}

type TaggingMode int32

const (
	TaggingModeUntagged TaggingMode = iota
	TaggingModeTagged
)

func (m TaggingMode) IsValid() bool {
	return m == TaggingModeUntagged || m == TaggingModeTagged
}

const (
	BridgeAttrType uint32 = iota
	BridgeAttrPortList
	BridgeAttrMaxLearnedAddresses
	BridgeAttrLearnDisable
	BridgeAttrUnknownUnicastFloodControlType
	BridgeAttrUnknownUnicastFloodGroup
	BridgeAttrUnknownMulticastFloodControlType
	BridgeAttrUnknownMulticastFloodGroup
	BridgeAttrBroadcastFloodControlType
	BridgeAttrBroadcastFloodGroup
)

var bridgeAttrToString = map[uint32]string{
	BridgeAttrType:                             "type",
	BridgeAttrPortList:                         "port-list",
	BridgeAttrMaxLearnedAddresses:              "max-learned-addresses",
	BridgeAttrLearnDisable:                     "learn-disable",
	BridgeAttrUnknownUnicastFloodControlType:   "unknown-unicast-flood-control-type",
	BridgeAttrUnknownUnicastFloodGroup:         "unknown-unicast-flood-group",
	BridgeAttrUnknownMulticastFloodControlType: "unknown-multicast-flood-control-type",
	BridgeAttrUnknownMulticastFloodGroup:       "unknown-multicast-flood-group",
	BridgeAttrBroadcastFloodControlType:        "broadcast-flood-control-type",
	BridgeAttrBroadcastFloodGroup:              "broadcast-flood-group",
}

func BridgeAttrName(id uint32) string {
	if s, ok := bridgeAttrToString[id]; ok {
		return s
	}
	return fmt.Sprintf("bridge-attr-%d", id)
}

func ParseBridgeAttr(s string) (uint32, error) {
	for id, name := range bridgeAttrToString {
		if strings.EqualFold(s, name) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown bridge attribute %q", s)
}

// FloodControlAttr maps a flood type to its control type attribute id.
func FloodControlAttr(t FloodType) uint32 {
	return BridgeAttrUnknownUnicastFloodControlType + 2*uint32(t)
}

// FloodGroupAttr maps a flood type to its multicast group attribute id.
func FloodGroupAttr(t FloodType) uint32 {
	return BridgeAttrUnknownUnicastFloodGroup + 2*uint32(t)
}

// FloodTypeOfAttr returns the flood type of a flood control or flood group
// attribute, and false for every other attribute.
func FloodTypeOfAttr(id uint32) (FloodType, bool) {
	switch id {
	case BridgeAttrUnknownUnicastFloodControlType, BridgeAttrUnknownUnicastFloodGroup:
		return FloodTypeUnknownUnicast, true
	case BridgeAttrUnknownMulticastFloodControlType, BridgeAttrUnknownMulticastFloodGroup:
		return FloodTypeUnknownMulticast, true
	case BridgeAttrBroadcastFloodControlType, BridgeAttrBroadcastFloodGroup:
		return FloodTypeBroadcast, true
	}
	return FloodTypeMax, false
}

func IsFloodGroupAttr(id uint32) bool {
	switch id {
	case BridgeAttrUnknownUnicastFloodGroup, BridgeAttrUnknownMulticastFloodGroup,
		BridgeAttrBroadcastFloodGroup:
		return true
	}
	return false
}

const (
	BridgePortAttrType uint32 = iota
	BridgePortAttrPortID
	BridgePortAttrTaggingMode
	BridgePortAttrVlanID
	BridgePortAttrRifID
	BridgePortAttrTunnelID
	BridgePortAttrBridgeID
	BridgePortAttrFdbLearningMode
	BridgePortAttrMaxLearnedAddresses
	BridgePortAttrFdbLearningLimitViolationPacketAction
	BridgePortAttrAdminState
	BridgePortAttrIngressFiltering
	BridgePortAttrEgressFiltering
	BridgePortAttrIngressSplitHorizonID
	BridgePortAttrEgressSplitHorizonID
)

var bridgePortAttrToString = map[uint32]string{
	BridgePortAttrType:                                  "type",
	BridgePortAttrPortID:                                "port-id",
	BridgePortAttrTaggingMode:                           "tagging-mode",
	BridgePortAttrVlanID:                                "vlan-id",
	BridgePortAttrRifID:                                 "rif-id",
	BridgePortAttrTunnelID:                              "tunnel-id",
	BridgePortAttrBridgeID:                              "bridge-id",
	BridgePortAttrFdbLearningMode:                       "fdb-learning-mode",
	BridgePortAttrMaxLearnedAddresses:                   "max-learned-addresses",
	BridgePortAttrFdbLearningLimitViolationPacketAction: "fdb-learning-limit-violation-packet-action",
	BridgePortAttrAdminState:                            "admin-state",
	BridgePortAttrIngressFiltering:                      "ingress-filtering",
	BridgePortAttrEgressFiltering:                       "egress-filtering",
	BridgePortAttrIngressSplitHorizonID:                 "ingress-split-horizon-id",
	BridgePortAttrEgressSplitHorizonID:                  "egress-split-horizon-id",
}

func BridgePortAttrName(id uint32) string {
	if s, ok := bridgePortAttrToString[id]; ok {
		return s
	}
	return fmt.Sprintf("bridge-port-attr-%d", id)
}

func ParseBridgePortAttr(s string) (uint32, error) {
	for id, name := range bridgePortAttrToString {
		if strings.EqualFold(s, name) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown bridge port attribute %q", s)
}

type BridgeStat int32

const (
	BridgeStatInOctets BridgeStat = iota
	BridgeStatInPackets
	BridgeStatOutOctets
	BridgeStatOutPackets
)

type BridgePortStat int32

const (
	BridgePortStatInOctets BridgePortStat = iota
	BridgePortStatInPackets
	BridgePortStatOutOctets
	BridgePortStatOutPackets
)

const (
	VlanIDMin uint16 = 1
	VlanIDMax uint16 = 4094
)

func IsValidVlanID(vlan uint16) bool {
	return vlan >= VlanIDMin && vlan <= VlanIDMax
}
