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

// lockSet selects the locks an operation needs. The guard always takes them
// in this order and releases them in reverse:
//
//	vlan -> l2mc -> router interface -> tunnel -> bridge -> lag | port
//
// The bridge lock is the innermost lock of the bridge module itself; the lag
// and port locks are taken only for Port and SubPort bridge ports.
type lockSet struct {
	vlan       bool
	l2mc       bool
	rif        bool
	tunnel     bool
	bridgeRead bool
	lag        bool
	port       bool
}

// lockSetFor returns the locks needed to create or remove a bridge port of
// type t attached to port (a physical port or a LAG, null otherwise).
func lockSetFor(t sai.BridgePortType, port sai.ObjectID) lockSet {
	var l lockSet
	switch t {
	case sai.BridgePortTypePort, sai.BridgePortTypeSubPort:
		if port.IsLag() {
			l.lag = true
		} else {
			l.port = true
		}
		if t == sai.BridgePortTypeSubPort {
			l.vlan = true
		}
	case sai.BridgePortType1QRouter, sai.BridgePortType1DRouter:
		l.rif = true
	case sai.BridgePortTypeTunnel:
		l.tunnel = true
	}
	return l
}

type guard struct {
	held []func()
}

func (s *BridgeServer) acquire(l lockSet) *guard {
	g := &guard{held: make([]func(), 0, 6)}
	take := func(m sync.Locker) {
		m.Lock()
		g.held = append(g.held, m.Unlock)
	}
	if l.vlan {
		take(s.vlans)
	}
	if l.l2mc {
		take(s.l2mc)
	}
	if l.rif {
		take(s.rifs)
	}
	if l.tunnel {
		take(s.tunnels)
	}
	if l.bridgeRead {
		take(s.mu.RLocker())
	} else {
		take(&s.mu)
	}
	if l.lag {
		take(s.lags)
	} else if l.port {
		take(s.ports)
	}
	return g
}

func (g *guard) release() {
	for i := len(g.held) - 1; i >= 0; i-- {
		g.held[i]()
	}
	g.held = nil
}
