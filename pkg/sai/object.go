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

// ObjectID is an opaque 64 bit object handle. The top byte carries the
// object type, the remaining bits a per-type sequence number.
type ObjectID uint64

const NullObjectID ObjectID = 0

const (
	objectTypeShift = 56
	objectSeqMask   = (uint64(1) << objectTypeShift) - 1
)

type ObjectType uint8

const (
	ObjectTypeNull ObjectType = iota
	ObjectTypePort
	ObjectTypeLag
	ObjectTypeVlan
	ObjectTypeVlanMember
	ObjectTypeRouterInterface
	ObjectTypeTunnel
	ObjectTypeStpPort
	ObjectTypeL2mcGroup
	ObjectTypeL2mcGroupMember
	ObjectTypeBridge
	ObjectTypeBridgePort
	ObjectTypeSwitch
)

var objectTypeToString = map[ObjectType]string{
	ObjectTypeNull:            "null",
	ObjectTypePort:            "port",
	ObjectTypeLag:             "lag",
	ObjectTypeVlan:            "vlan",
	ObjectTypeVlanMember:      "vlan-member",
	ObjectTypeRouterInterface: "router-interface",
	ObjectTypeTunnel:          "tunnel",
	ObjectTypeStpPort:         "stp-port",
	ObjectTypeL2mcGroup:       "l2mc-group",
	ObjectTypeL2mcGroupMember: "l2mc-group-member",
	ObjectTypeBridge:          "bridge",
	ObjectTypeBridgePort:      "bridge-port",
	ObjectTypeSwitch:          "switch",
}

func (t ObjectType) String() string {
	if s, ok := objectTypeToString[t]; ok {
		return s
	}
	return fmt.Sprintf("ObjectType(%d)", uint8(t))
}

// NewObjectID builds an object id of type t with the sequence number seq.
func NewObjectID(t ObjectType, seq uint64) ObjectID {
	return ObjectID(uint64(t)<<objectTypeShift | seq&objectSeqMask)
}

func (id ObjectID) Type() ObjectType {
	return ObjectType(uint64(id) >> objectTypeShift)
}

func (id ObjectID) Seq() uint64 {
	return uint64(id) & objectSeqMask
}

func (id ObjectID) IsNull() bool {
	return id == NullObjectID
}

func (id ObjectID) IsLag() bool {
	return id.Type() == ObjectTypeLag
}

func (id ObjectID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// ParseObjectID accepts both hex ("0x...") and decimal forms.
func ParseObjectID(s string) (ObjectID, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return NullObjectID, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return ObjectID(v), nil
}

// Module identifies a cooperating subsystem. It indexes the bridge-port
// event subscriber registry.
type Module uint8

const (
	ModuleSwitch Module = iota
	ModulePort
	ModuleFdb
	ModuleVlan
	ModuleRouterInterface
	ModuleTunnel
	ModuleStp
	ModuleLag
	ModuleBridge
	ModuleL2mc
	ModuleApi
	ModuleMax
)

var moduleToString = map[Module]string{
	ModuleSwitch:          "switch",
	ModulePort:            "port",
	ModuleFdb:             "fdb",
	ModuleVlan:            "vlan",
	ModuleRouterInterface: "router-interface",
	ModuleTunnel:          "tunnel",
	ModuleStp:             "stp",
	ModuleLag:             "lag",
	ModuleBridge:          "bridge",
	ModuleL2mc:            "l2mc",
	ModuleApi:             "api",
}

func (m Module) String() string {
	if s, ok := moduleToString[m]; ok {
		return s
	}
	return fmt.Sprintf("Module(%d)", uint8(m))
}
