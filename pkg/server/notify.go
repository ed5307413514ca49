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
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
)

type BridgePortEventType int

const (
	BridgePortEventCreate BridgePortEventType = iota
	BridgePortEventRemove
	BridgePortEventInitCreate
	BridgePortEventLagModify
)

func (t BridgePortEventType) String() string {
	switch t {
	case BridgePortEventCreate:
		return "create"
	case BridgePortEventRemove:
		return "remove"
	case BridgePortEventInitCreate:
		return "init-create"
	case BridgePortEventLagModify:
		return "lag-modify"
	}
	return "unknown"
}

// BridgePortEvent describes a committed change of one bridge port. The
// BridgePort field is a snapshot taken when the change committed.
// BridgePortEventLagModify is delivered while the bridge lock and the LAG
// module lock are held; subscribers must read the bridge port from this
// snapshot instead of calling back into the BridgeServer.
type BridgePortEvent struct {
	Type       BridgePortEventType
	BridgePort table.BridgePort
	// Lag, Add and Ports are set for BridgePortEventLagModify only.
	Lag   sai.ObjectID
	Add   bool
	Ports []sai.ObjectID
}

type BridgePortEventCallback func(ev *BridgePortEvent) error

type subscriber struct {
	types uint32
	cb    BridgePortEventCallback
}

// RegisterBridgePortEvent subscribes module to events of the bridge port
// types set in the types bitmap. A later call for the same module replaces
// the earlier one and a nil callback unsubscribes.
//
// Callbacks for BridgePortEventLagModify run inside HandleLagMembership with
// the bridge lock held. Such a callback must not call any BridgeServer
// method, read accessors included, or it deadlocks. Every other event type is
// delivered after all locks are released.
func (s *BridgeServer) RegisterBridgePortEvent(module sai.Module, types uint32, cb BridgePortEventCallback) error {
	if module >= sai.ModuleMax {
		return sai.NewError(sai.StatusInvalidParameter, "module %s", module)
	}
	if types&^sai.AllBridgePortTypes != 0 {
		return sai.NewError(sai.StatusInvalidParameter, "bridge port type bitmap 0x%x", types)
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers[module] = subscriber{types: types, cb: cb}
	s.logger.Debug("bridge port event subscriber registered", log.Fields{
		"Topic":  "Notify",
		"Key":    module,
		"Types":  types,
		"Active": cb != nil,
	})
	return nil
}

// notify delivers ev to every subscriber interested in the type of the
// bridge port. Subscriber errors are logged only.
func (s *BridgeServer) notify(ev *BridgePortEvent) {
	s.subMu.RLock()
	subs := s.subscribers
	s.subMu.RUnlock()

	bit := ev.BridgePort.Type.Bit()
	for m, sub := range subs {
		if sub.cb == nil || sub.types&bit == 0 {
			continue
		}
		if err := sub.cb(ev); err != nil {
			s.logger.Warn("bridge port event subscriber failed", log.Fields{
				"Topic":  "Notify",
				"Key":    ev.BridgePort.ID,
				"Module": sai.Module(m),
				"Event":  ev.Type,
				"Error":  err,
			})
		}
	}
}
