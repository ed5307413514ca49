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

// Package virtual implements a backend that programs no hardware. It hands
// out ids, answers capability queries and lets tests inject failures.
package virtual

import (
	"fmt"
	"io"
	"sync"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/backend"
	"github.com/osrg/gosai/pkg/sai"
)

const (
	OpInit                   = "Init"
	OpCreateBridge           = "CreateBridge"
	OpRemoveBridge           = "RemoveBridge"
	OpSetBridgeAttribute     = "SetBridgeAttribute"
	OpGetBridgeStats         = "GetBridgeStats"
	OpClearBridgeStats       = "ClearBridgeStats"
	OpCreateBridgePort       = "CreateBridgePort"
	OpRemoveBridgePort       = "RemoveBridgePort"
	OpSetBridgePortAttribute = "SetBridgePortAttribute"
	OpGetBridgePortStats     = "GetBridgePortStats"
	OpClearBridgePortStats   = "ClearBridgePortStats"
	OpLagHandler             = "LagHandler"
)

// idGenerator hands out sequence numbers, wrapping at the id mask and
// skipping numbers still in use.
type idGenerator struct {
	objType sai.ObjectType
	cur     uint64
	inUse   map[uint64]struct{}
}

func newIDGenerator(t sai.ObjectType) *idGenerator {
	return &idGenerator{
		objType: t,
		inUse:   make(map[uint64]struct{}),
	}
}

const maxSeq = (uint64(1) << 32) - 1

func (g *idGenerator) next() (sai.ObjectID, error) {
	for i := uint64(0); i < maxSeq; i++ {
		g.cur++
		if g.cur > maxSeq {
			g.cur = 1
		}
		if _, ok := g.inUse[g.cur]; !ok {
			g.inUse[g.cur] = struct{}{}
			return sai.NewObjectID(g.objType, g.cur), nil
		}
	}
	return sai.NullObjectID, sai.NewError(sai.StatusInsufficientResources, "no free %s id", g.objType)
}

func (g *idGenerator) reserve(id sai.ObjectID) error {
	if id.Type() != g.objType {
		return sai.NewError(sai.StatusInvalidObjectType, "%s is not a %s", id, g.objType)
	}
	if _, ok := g.inUse[id.Seq()]; ok {
		return sai.NewError(sai.StatusItemAlreadyExists, "%s is in use", id)
	}
	g.inUse[id.Seq()] = struct{}{}
	return nil
}

func (g *idGenerator) release(id sai.ObjectID) {
	delete(g.inUse, id.Seq())
}

func (g *idGenerator) reset() {
	g.cur = 0
	g.inUse = make(map[uint64]struct{})
}

type hwInfo struct {
	Programmed bool
	Members    []sai.ObjectID
}

type Backend struct {
	mu          sync.Mutex
	bridgeIDs   *idGenerator
	bridgePorts *idGenerator
	failures    map[string]error
	calls       map[string]int
	enabled     bool
	// ReissueDifferentID makes a create that asks for a specific bridge
	// port id return a fresh one instead.
	ReissueDifferentID bool
}

func New() *Backend {
	return &Backend{
		bridgeIDs:   newIDGenerator(sai.ObjectTypeBridge),
		bridgePorts: newIDGenerator(sai.ObjectTypeBridgePort),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
	}
}

// FailOn makes every later call of op return err until ClearFailures.
func (b *Backend) FailOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = err
}

func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]error)
}

// Calls returns how many times op has been called.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *Backend) enter(op string) error {
	b.calls[op]++
	return b.failures[op]
}

func (b *Backend) Init(enable bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpInit); err != nil {
		return err
	}
	if enable {
		b.bridgeIDs.reset()
		b.bridgePorts.reset()
	}
	b.enabled = enable
	return nil
}

func (b *Backend) BridgeAttrTable(t sai.BridgeType) (backend.AttrTable, error) {
	switch t {
	case sai.BridgeType1Q:
		return bridge1QAttrTable, nil
	case sai.BridgeType1D:
		return bridge1DAttrTable, nil
	}
	return nil, sai.NewError(sai.StatusNotSupported, "bridge type %s", t)
}

func (b *Backend) BridgePortAttrTable(t sai.BridgePortType) (backend.AttrTable, error) {
	switch t {
	case sai.BridgePortTypePort:
		return portAttrTable, nil
	case sai.BridgePortTypeSubPort:
		return subPortAttrTable, nil
	case sai.BridgePortTypeTunnel:
		return tunnelAttrTable, nil
	case sai.BridgePortType1QRouter, sai.BridgePortType1DRouter:
		return router1DAttrTable, nil
	}
	return nil, sai.NewError(sai.StatusNotSupported, "bridge port type %s", t)
}

func (b *Backend) CreateBridge(br *table.Bridge) (sai.ObjectID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpCreateBridge); err != nil {
		return sai.NullObjectID, err
	}
	id, err := b.bridgeIDs.next()
	if err != nil {
		return sai.NullObjectID, err
	}
	br.HwInfo = &hwInfo{Programmed: true}
	return id, nil
}

func (b *Backend) RemoveBridge(br *table.Bridge) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpRemoveBridge); err != nil {
		return err
	}
	if br.Type == sai.BridgeType1Q && b.enabled {
		return sai.NewError(sai.StatusNotSupported, "1Q bridge %s cannot be removed", br.ID)
	}
	b.bridgeIDs.release(br.ID)
	return nil
}

func (b *Backend) SetBridgeAttribute(br *table.Bridge, attr sai.Attribute) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enter(OpSetBridgeAttribute)
}

func (b *Backend) GetBridgeStats(br *table.Bridge, counters []sai.BridgeStat) ([]uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetBridgeStats); err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	return make([]uint64, len(counters)), nil
}

func (b *Backend) ClearBridgeStats(br *table.Bridge, counters []sai.BridgeStat) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpClearBridgeStats); err != nil {
		return err
	}
	if len(counters) == 0 {
		return sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	return nil
}

func (b *Backend) CreateBridgePort(bp *table.BridgePort) (sai.ObjectID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpCreateBridgePort); err != nil {
		return sai.NullObjectID, err
	}
	if !bp.ID.IsNull() && !b.ReissueDifferentID {
		if err := b.bridgePorts.reserve(bp.ID); err != nil {
			return sai.NullObjectID, err
		}
		bp.HwInfo = &hwInfo{Programmed: true}
		return bp.ID, nil
	}
	id, err := b.bridgePorts.next()
	if err != nil {
		return sai.NullObjectID, err
	}
	bp.HwInfo = &hwInfo{Programmed: true}
	return id, nil
}

func (b *Backend) RemoveBridgePort(bp *table.BridgePort) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpRemoveBridgePort); err != nil {
		return err
	}
	b.bridgePorts.release(bp.ID)
	return nil
}

func (b *Backend) SetBridgePortAttribute(bp *table.BridgePort, attr sai.Attribute) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enter(OpSetBridgePortAttribute)
}

func (b *Backend) GetBridgePortStats(bp *table.BridgePort, counters []sai.BridgePortStat) ([]uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGetBridgePortStats); err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	return make([]uint64, len(counters)), nil
}

func (b *Backend) ClearBridgePortStats(bp *table.BridgePort, counters []sai.BridgePortStat) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpClearBridgePortStats); err != nil {
		return err
	}
	if len(counters) == 0 {
		return sai.NewError(sai.StatusInvalidParameter, "no counters")
	}
	return nil
}

func (b *Backend) LagHandler(bp *table.BridgePort, lag sai.ObjectID, add bool, ports []sai.ObjectID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enter(OpLagHandler)
}

func (b *Backend) DumpBridge(w io.Writer, br *table.Bridge) {
	if hw, ok := br.HwInfo.(*hwInfo); ok {
		fmt.Fprintf(w, "  virtual: programmed %t\n", hw.Programmed)
	}
}

func (b *Backend) DumpBridgePort(w io.Writer, bp *table.BridgePort) {
	if hw, ok := bp.HwInfo.(*hwInfo); ok {
		fmt.Fprintf(w, "  virtual: programmed %t\n", hw.Programmed)
	}
}
