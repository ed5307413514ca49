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
	"sync"

	"github.com/osrg/gosai/pkg/sai"
)

// The modules below are owned by other subsystems. Unless noted otherwise
// every query and mutation assumes the caller holds the module lock.

type PortModule interface {
	sync.Locker
	IsValid(port sai.ObjectID) bool
	IsLagMember(port sai.ObjectID) bool
	ValidPorts() []sai.ObjectID
	IncRef(port sai.ObjectID) error
	DecRef(port sai.ObjectID) error
	DefaultBridgePort(port sai.ObjectID) sai.ObjectID
	SetDefaultBridgePort(port, bridgePort sai.ObjectID) error
}

type LagModule interface {
	sync.Locker
	Exists(lag sai.ObjectID) bool
	IncRef(lag sai.ObjectID) error
	DecRef(lag sai.ObjectID) error
	DefaultBridgePort(lag sai.ObjectID) sai.ObjectID
	SetDefaultBridgePort(lag, bridgePort sai.ObjectID) error
	// RegisterMembershipHandler installs the single membership handler.
	// The handler is called without the LAG lock held.
	RegisterMembershipHandler(h sai.LagMembershipHandler)
}

type RifModule interface {
	sync.Locker
	Exists(rif sai.ObjectID) bool
	IncRef(rif sai.ObjectID) error
	DecRef(rif sai.ObjectID) error
	AttachedBridgePort(rif sai.ObjectID) sai.ObjectID
	SetAttachedBridgePort(rif, bridgePort sai.ObjectID) error
}

type TunnelModule interface {
	sync.Locker
	Exists(tunnel sai.ObjectID) bool
	IncRef(tunnel sai.ObjectID) error
	DecRef(tunnel sai.ObjectID) error
}

type VlanModule interface {
	sync.Locker
	IsVlanValid(vlan uint16) bool
	IsMember(vlan uint16, bridgePort sai.ObjectID) bool
}

type L2mcModule interface {
	sync.Locker
	AddBridge(group, bridge sai.ObjectID) error
	RemoveBridge(group, bridge sai.ObjectID) error
}
