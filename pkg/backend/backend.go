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

// Package backend declares what the bridge server needs from a vendor
// driver. Every call is synchronous and is made with the bridge lock held.
package backend

import (
	"io"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/sai"
)

// AttrCapability describes what a vendor allows for one attribute of one
// object kind.
type AttrCapability struct {
	ID                uint32
	MandatoryOnCreate bool
	ValidForCreate    bool
	ValidForSet       bool
	ValidForGet       bool
	Implemented       bool
	Supported         bool
}

// AttrTable is the capability table of one object kind.
type AttrTable []AttrCapability

// Lookup returns the capability entry of id.
func (t AttrTable) Lookup(id uint32) (AttrCapability, bool) {
	for _, c := range t {
		if c.ID == id {
			return c, true
		}
	}
	return AttrCapability{}, false
}

// MandatoryCount returns the number of attributes mandatory on create.
func (t AttrTable) MandatoryCount() int {
	n := 0
	for _, c := range t {
		if c.MandatoryOnCreate {
			n++
		}
	}
	return n
}

type Backend interface {
	// Init prepares (enable) or releases (!enable) the driver state.
	Init(enable bool) error

	BridgeAttrTable(t sai.BridgeType) (AttrTable, error)
	BridgePortAttrTable(t sai.BridgePortType) (AttrTable, error)

	// CreateBridge programs a bridge and returns its id. The driver may
	// store private state in b.HwInfo.
	CreateBridge(b *table.Bridge) (sai.ObjectID, error)
	RemoveBridge(b *table.Bridge) error
	SetBridgeAttribute(b *table.Bridge, attr sai.Attribute) error
	GetBridgeStats(b *table.Bridge, counters []sai.BridgeStat) ([]uint64, error)
	ClearBridgeStats(b *table.Bridge, counters []sai.BridgeStat) error

	// CreateBridgePort programs a bridge port and returns its id. When
	// bp.ID is not null the driver must reissue exactly that id; this is
	// how a failed remove is rolled back.
	CreateBridgePort(bp *table.BridgePort) (sai.ObjectID, error)
	RemoveBridgePort(bp *table.BridgePort) error
	SetBridgePortAttribute(bp *table.BridgePort, attr sai.Attribute) error
	GetBridgePortStats(bp *table.BridgePort, counters []sai.BridgePortStat) ([]uint64, error)
	ClearBridgePortStats(bp *table.BridgePort, counters []sai.BridgePortStat) error

	// LagHandler reprograms a bridge port whose LAG gained (add) or lost
	// member ports.
	LagHandler(bp *table.BridgePort, lag sai.ObjectID, add bool, ports []sai.ObjectID) error

	DumpBridge(w io.Writer, b *table.Bridge)
	DumpBridgePort(w io.Writer, bp *table.BridgePort)
}
