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
	"strconv"
	"strings"
)

var fdbLearnModeToString = map[FdbLearnMode]string{
	FdbLearnModeDrop:            "drop",
	FdbLearnModeDisable:         "disable",
	FdbLearnModeHw:              "hw",
	FdbLearnModeCPUTrap:         "cpu-trap",
	FdbLearnModeCPULog:          "cpu-log",
	FdbLearnModeFdbNotification: "fdb-notification",
}

func (m FdbLearnMode) String() string {
	if s, ok := fdbLearnModeToString[m]; ok {
		return s
	}
	return fmt.Sprintf("FdbLearnMode(%d)", int32(m))
}

var packetActionToString = map[PacketAction]string{
	PacketActionDrop:       "drop",
	PacketActionForward:    "forward",
	PacketActionCopy:       "copy",
	PacketActionCopyCancel: "copy-cancel",
	PacketActionTrap:       "trap",
	PacketActionLog:        "log",
	PacketActionDeny:       "deny",
	PacketActionTransit:    "transit",
}

func (a PacketAction) String() string {
	if s, ok := packetActionToString[a]; ok {
		return s
	}
	return fmt.Sprintf("PacketAction(%d)", int32(a))
}

func (m TaggingMode) String() string {
	switch m {
	case TaggingModeUntagged:
		return "untagged"
	case TaggingModeTagged:
		return "tagged"
	}
	return fmt.Sprintf("TaggingMode(%d)", int32(m))
}

// parseEnum accepts either one of the names in m or a plain integer.
func parseEnum[T ~int32](kind, s string, m map[T]string) (T, error) {
	for v, name := range m {
		if strings.EqualFold(s, name) {
			return v, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return T(n), nil
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "up", "enable", "enabled", "on":
		return true, nil
	case "down", "disable", "disabled", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// ParseBridgeAttrValue builds the bridge attribute id from its textual
// value.
func ParseBridgeAttrValue(id uint32, s string) (Attribute, error) {
	attr := Attribute{ID: id}
	var err error
	switch id {
	case BridgeAttrType:
		var t BridgeType
		t, err = ParseBridgeType(s)
		attr.Value.S32 = int32(t)
	case BridgeAttrMaxLearnedAddresses:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 32)
		attr.Value.U32 = uint32(n)
	case BridgeAttrLearnDisable:
		attr.Value.Bool, err = parseBool(s)
	case BridgeAttrUnknownUnicastFloodControlType,
		BridgeAttrUnknownMulticastFloodControlType,
		BridgeAttrBroadcastFloodControlType:
		var t FloodControlType
		t, err = ParseFloodControlType(s)
		attr.Value.S32 = int32(t)
	case BridgeAttrUnknownUnicastFloodGroup,
		BridgeAttrUnknownMulticastFloodGroup,
		BridgeAttrBroadcastFloodGroup:
		attr.Value.OID, err = ParseObjectID(s)
	default:
		err = fmt.Errorf("%s has no textual form", BridgeAttrName(id))
	}
	return attr, err
}

// FormatBridgeAttrValue is the inverse of ParseBridgeAttrValue.
func FormatBridgeAttrValue(attr Attribute) string {
	switch attr.ID {
	case BridgeAttrType:
		return BridgeType(attr.Value.S32).String()
	case BridgeAttrMaxLearnedAddresses:
		return strconv.FormatUint(uint64(attr.Value.U32), 10)
	case BridgeAttrLearnDisable:
		return strconv.FormatBool(attr.Value.Bool)
	case BridgeAttrUnknownUnicastFloodControlType,
		BridgeAttrUnknownMulticastFloodControlType,
		BridgeAttrBroadcastFloodControlType:
		return FloodControlType(attr.Value.S32).String()
	case BridgeAttrPortList:
		l := make([]string, 0, len(attr.Value.OIDList))
		for _, id := range attr.Value.OIDList {
			l = append(l, id.String())
		}
		return strings.Join(l, ",")
	}
	return attr.Value.OID.String()
}

func ParseBridgePortAttrValue(id uint32, s string) (Attribute, error) {
	attr := Attribute{ID: id}
	var err error
	switch id {
	case BridgePortAttrType:
		var t BridgePortType
		t, err = ParseBridgePortType(s)
		attr.Value.S32 = int32(t)
	case BridgePortAttrPortID, BridgePortAttrRifID, BridgePortAttrTunnelID, BridgePortAttrBridgeID:
		attr.Value.OID, err = ParseObjectID(s)
	case BridgePortAttrVlanID:
		var n uint64
		n, err = strconv.ParseUint(s, 10, 16)
		attr.Value.U16 = uint16(n)
	case BridgePortAttrTaggingMode:
		var m TaggingMode
		m, err = parseEnum("tagging mode", s, map[TaggingMode]string{
			TaggingModeUntagged: "untagged",
			TaggingModeTagged:   "tagged",
		})
		attr.Value.S32 = int32(m)
	case BridgePortAttrFdbLearningMode:
		var m FdbLearnMode
		m, err = parseEnum("fdb learning mode", s, fdbLearnModeToString)
		attr.Value.S32 = int32(m)
	case BridgePortAttrFdbLearningLimitViolationPacketAction:
		var a PacketAction
		a, err = parseEnum("packet action", s, packetActionToString)
		attr.Value.S32 = int32(a)
	case BridgePortAttrMaxLearnedAddresses:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 32)
		attr.Value.U32 = uint32(n)
	case BridgePortAttrAdminState, BridgePortAttrIngressFiltering, BridgePortAttrEgressFiltering:
		attr.Value.Bool, err = parseBool(s)
	default:
		err = fmt.Errorf("%s has no textual form", BridgePortAttrName(id))
	}
	return attr, err
}

func FormatBridgePortAttrValue(attr Attribute) string {
	switch attr.ID {
	case BridgePortAttrType:
		return BridgePortType(attr.Value.S32).String()
	case BridgePortAttrVlanID:
		return strconv.FormatUint(uint64(attr.Value.U16), 10)
	case BridgePortAttrTaggingMode:
		return TaggingMode(attr.Value.S32).String()
	case BridgePortAttrFdbLearningMode:
		return FdbLearnMode(attr.Value.S32).String()
	case BridgePortAttrFdbLearningLimitViolationPacketAction:
		return PacketAction(attr.Value.S32).String()
	case BridgePortAttrMaxLearnedAddresses:
		return strconv.FormatUint(uint64(attr.Value.U32), 10)
	case BridgePortAttrAdminState, BridgePortAttrIngressFiltering, BridgePortAttrEgressFiltering:
		return strconv.FormatBool(attr.Value.Bool)
	}
	return attr.Value.OID.String()
}
