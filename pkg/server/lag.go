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
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
)

// HandleLagMembership reprograms every bridge port attached to lag after
// ports joined or left it, then tells the subscribers. The bridge lock is
// held for the whole call. Operations other than AddPorts and DelPorts are
// ignored.
func (s *BridgeServer) HandleLagMembership(lag sai.ObjectID, op sai.LagOperation, ports []sai.ObjectID) error {
	var add bool
	switch op {
	case sai.LagOperationAddPorts:
		add = true
	case sai.LagOperationDelPorts:
	default:
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.index.LagPorts.List(lag)
	if len(ids) == 0 {
		return nil
	}

	delta := append([]sai.ObjectID(nil), ports...)
	events := make([]*BridgePortEvent, 0, len(ids))
	for _, id := range ids {
		bp, err := s.bridgePorts.Read(id)
		if err != nil {
			return err
		}
		if err := s.backend.LagHandler(bp, lag, add, ports); err != nil {
			s.logger.Error("backend failed to apply lag membership", log.Fields{
				"Topic": "Lag",
				"Key":   lag,
				"Op":    op,
				"Error": err,
			})
			return err
		}
		events = append(events, &BridgePortEvent{
			Type:       BridgePortEventLagModify,
			BridgePort: *bp,
			Lag:        lag,
			Add:        add,
			Ports:      delta,
		})
	}

	for _, ev := range events {
		s.notify(ev)
	}
	s.logger.Debug("lag membership applied", log.Fields{
		"Topic":       "Lag",
		"Key":         lag,
		"Op":          op,
		"BridgePorts": len(ids),
		"Ports":       len(ports),
	})
	return nil
}
