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
	"github.com/osrg/gosai/pkg/sai"
)

// addMember binds member to bridge port bp in m and takes a reference on
// the bridge port.
func (s *BridgeServer) addMember(m *table.IDSetMap, bp, member sai.ObjectID) error {
	if err := checkBridgePortID(bp); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bridgePorts.Exists(bp) {
		return sai.NewError(sai.StatusItemNotFound, "bridge port %s", bp)
	}
	if err := m.Insert(bp, member); err != nil {
		return err
	}
	return s.bridgePorts.Update(bp, func(v *table.BridgePort) error {
		v.RefCount++
		return nil
	})
}

func (s *BridgeServer) removeMember(m *table.IDSetMap, bp, member sai.ObjectID) error {
	if err := checkBridgePortID(bp); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bridgePorts.Exists(bp) {
		return sai.NewError(sai.StatusItemNotFound, "bridge port %s", bp)
	}
	if err := m.Remove(bp, member); err != nil {
		return err
	}
	return s.bridgePorts.Update(bp, func(v *table.BridgePort) error {
		if v.RefCount > 0 {
			v.RefCount--
		}
		return nil
	})
}

func (s *BridgeServer) members(m *table.IDSetMap, bp sai.ObjectID) []sai.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return m.List(bp)
}

func (s *BridgeServer) AddVlanMember(bp, member sai.ObjectID) error {
	return s.addMember(s.index.VlanMembers, bp, member)
}

func (s *BridgeServer) RemoveVlanMember(bp, member sai.ObjectID) error {
	return s.removeMember(s.index.VlanMembers, bp, member)
}

func (s *BridgeServer) VlanMembers(bp sai.ObjectID) []sai.ObjectID {
	return s.members(s.index.VlanMembers, bp)
}

func (s *BridgeServer) AddStpPort(bp, stpPort sai.ObjectID) error {
	return s.addMember(s.index.StpPorts, bp, stpPort)
}

func (s *BridgeServer) RemoveStpPort(bp, stpPort sai.ObjectID) error {
	return s.removeMember(s.index.StpPorts, bp, stpPort)
}

func (s *BridgeServer) StpPorts(bp sai.ObjectID) []sai.ObjectID {
	return s.members(s.index.StpPorts, bp)
}

func (s *BridgeServer) AddL2mcMember(bp, member sai.ObjectID) error {
	return s.addMember(s.index.L2mcMembers, bp, member)
}

func (s *BridgeServer) RemoveL2mcMember(bp, member sai.ObjectID) error {
	return s.removeMember(s.index.L2mcMembers, bp, member)
}

func (s *BridgeServer) L2mcMembers(bp sai.ObjectID) []sai.ObjectID {
	return s.members(s.index.L2mcMembers, bp)
}

// IncFdbCount records one more FDB entry learned on bp. A bridge port with
// learned entries cannot be removed.
func (s *BridgeServer) IncFdbCount(bp sai.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bridgePorts.Update(bp, func(v *table.BridgePort) error {
		v.FdbCount++
		return nil
	})
}

func (s *BridgeServer) DecFdbCount(bp sai.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bridgePorts.Update(bp, func(v *table.BridgePort) error {
		if v.FdbCount == 0 {
			return sai.NewError(sai.StatusFailure, "bridge port %s has no fdb entries", bp)
		}
		v.FdbCount--
		return nil
	})
}

func (s *BridgeServer) TunnelBridgePorts(tunnel sai.ObjectID) []sai.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.TunnelPorts.List(tunnel)
}

// IsBridgeConnectedToTunnel reports whether bridge has a tunnel bridge port
// on tunnel.
func (s *BridgeServer) IsBridgeConnectedToTunnel(bridge, tunnel sai.ObjectID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.index.TunnelPorts.List(tunnel) {
		if bp, err := s.bridgePorts.Read(id); err == nil && bp.BridgeID == bridge {
			return true
		}
	}
	return false
}

func (s *BridgeServer) SubPortOf(port sai.ObjectID, vlan uint16) (sai.ObjectID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.SubPorts.Get(port, vlan)
}

func (s *BridgeServer) SubPortsOf(port sai.ObjectID) []table.SubPort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.SubPorts.OfPort(port)
}

// BridgePortInfo returns a copy of the bridge port record.
func (s *BridgeServer) BridgePortInfo(bp sai.ObjectID) (table.BridgePort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := s.bridgePorts.Read(bp)
	if err != nil {
		return table.BridgePort{}, err
	}
	return *v, nil
}

// BridgeInfo returns a copy of the bridge record.
func (s *BridgeServer) BridgeInfo(bridge sai.ObjectID) (table.Bridge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := s.bridges.Read(bridge)
	if err != nil {
		return table.Bridge{}, err
	}
	return *v, nil
}

func (s *BridgeServer) IsBridgePortOnLag(bp sai.ObjectID) (bool, error) {
	info, err := s.BridgePortInfo(bp)
	if err != nil {
		return false, err
	}
	return info.IsOnLag(), nil
}

func (s *BridgeServer) AdminState(bp sai.ObjectID) (bool, error) {
	info, err := s.BridgePortInfo(bp)
	if err != nil {
		return false, err
	}
	return info.AdminState, nil
}

func (s *BridgeServer) BridgePortsOf(bridge sai.ObjectID) []sai.ObjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.BridgePorts.List(bridge)
}
