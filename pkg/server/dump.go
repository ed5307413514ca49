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
	"fmt"
	"io"

	"github.com/kr/pretty"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/sai"
)

// bridgeView and bridgePortView are what the dumps render. HwInfo is left
// to the backend dump.
type bridgeView struct {
	ID                  string
	Type                string
	MaxLearnedAddresses uint32
	LearnDisable        bool
	FloodControl        map[string]string
	FloodGroup          map[string]string
	RefCount            uint32
	BridgePorts         []string
}

type bridgePortView struct {
	ID                        string
	Type                      string
	Bridge                    string
	Attachment                string
	FdbLearnMode              sai.FdbLearnMode
	MaxLearnedAddresses       uint32
	LearnLimitViolationAction sai.PacketAction
	AdminState                bool
	IngressFiltering          bool
	EgressFiltering           bool
	TaggingMode               sai.TaggingMode
	RefCount                  uint32
	FdbCount                  uint32
	VlanMembers               []string
	StpPorts                  []string
	L2mcMembers               []string
}

func idStrings(ids []sai.ObjectID) []string {
	l := make([]string, 0, len(ids))
	for _, id := range ids {
		l = append(l, id.String())
	}
	return l
}

func (s *BridgeServer) viewOfBridge(b *table.Bridge) bridgeView {
	v := bridgeView{
		ID:                  b.ID.String(),
		Type:                b.Type.String(),
		MaxLearnedAddresses: b.MaxLearnedAddresses,
		LearnDisable:        b.LearnDisable,
		FloodControl:        make(map[string]string, sai.FloodTypeMax),
		FloodGroup:          make(map[string]string, sai.FloodTypeMax),
		RefCount:            b.RefCount,
		BridgePorts:         idStrings(s.index.BridgePorts.List(b.ID)),
	}
	for t := sai.FloodType(0); t < sai.FloodTypeMax; t++ {
		v.FloodControl[t.String()] = b.FloodControl[t].String()
		v.FloodGroup[t.String()] = b.FloodGroup[t].String()
	}
	return v
}

func (s *BridgeServer) viewOfBridgePort(bp *table.BridgePort) bridgePortView {
	return bridgePortView{
		ID:                        bp.ID.String(),
		Type:                      bp.Type.String(),
		Bridge:                    bp.BridgeID.String(),
		Attachment:                bp.Attachment.String(),
		FdbLearnMode:              bp.FdbLearnMode,
		MaxLearnedAddresses:       bp.MaxLearnedAddresses,
		LearnLimitViolationAction: bp.LearnLimitViolationAction,
		AdminState:                bp.AdminState,
		IngressFiltering:          bp.IngressFiltering,
		EgressFiltering:           bp.EgressFiltering,
		TaggingMode:               bp.TaggingMode,
		RefCount:                  bp.RefCount,
		FdbCount:                  bp.FdbCount,
		VlanMembers:               idStrings(s.index.VlanMembers.List(bp.ID)),
		StpPorts:                  idStrings(s.index.StpPorts.List(bp.ID)),
		L2mcMembers:               idStrings(s.index.L2mcMembers.List(bp.ID)),
	}
}

func (s *BridgeServer) dumpBridge(w io.Writer, b *table.Bridge) {
	pretty.Fprintf(w, "%# v\n", s.viewOfBridge(b))
	s.backend.DumpBridge(w, b)
}

func (s *BridgeServer) dumpBridgePort(w io.Writer, bp *table.BridgePort) {
	pretty.Fprintf(w, "%# v\n", s.viewOfBridgePort(bp))
	s.backend.DumpBridgePort(w, bp)
}

func (s *BridgeServer) DumpBridge(w io.Writer, id sai.ObjectID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bridges.Read(id)
	if err != nil {
		return err
	}
	s.dumpBridge(w, b)
	return nil
}

func (s *BridgeServer) DumpBridgePort(w io.Writer, id sai.ObjectID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bp, err := s.bridgePorts.Read(id)
	if err != nil {
		return err
	}
	s.dumpBridgePort(w, bp)
	return nil
}

// DumpAll writes every bridge, every bridge port and the derived mapping
// tables to w.
func (s *BridgeServer) DumpAll(w io.Writer) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fmt.Fprintf(w, "default bridge: %s\n", s.defaultBridge)
	fmt.Fprintf(w, "bridges: %d\n", s.bridges.Count())
	s.bridges.Walk(func(_ sai.ObjectID, b *table.Bridge) bool {
		s.dumpBridge(w, b)
		return true
	})
	fmt.Fprintf(w, "bridge ports: %d\n", s.bridgePorts.Count())
	s.bridgePorts.Walk(func(_ sai.ObjectID, bp *table.BridgePort) bool {
		s.dumpBridgePort(w, bp)
		return true
	})
	fmt.Fprintf(w, "lag to bridge port map:\n")
	for _, lag := range s.index.LagPorts.Keys() {
		fmt.Fprintf(w, "  %s: %v\n", lag, idStrings(s.index.LagPorts.List(lag)))
	}
	fmt.Fprintf(w, "tunnel to bridge port map:\n")
	for _, tunnel := range s.index.TunnelPorts.Keys() {
		fmt.Fprintf(w, "  %s: %v\n", tunnel, idStrings(s.index.TunnelPorts.List(tunnel)))
	}
	fmt.Fprintf(w, "sub-ports: %d\n", s.index.SubPorts.Len())
	seen := make(map[sai.ObjectID]bool)
	s.bridgePorts.Walk(func(_ sai.ObjectID, bp *table.BridgePort) bool {
		port := bp.PortID()
		if bp.Type != sai.BridgePortTypeSubPort || seen[port] {
			return true
		}
		seen[port] = true
		for _, sp := range s.index.SubPorts.OfPort(port) {
			fmt.Fprintf(w, "  %s vlan %d: %s\n", port, sp.Vlan, sp.BridgePort)
		}
		return true
	})
}
