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

package config

import "github.com/osrg/gosai/pkg/sai"

const (
	DefaultSwitchID  uint64 = 0x2100000000000000
	DefaultBackend          = "virtual"
	DefaultGrpcHosts        = ":50061"
)

// ConfigSet is the content of a gosaid configuration file. Objects refer to
// each other by name; an object id in its 0x%016x form is accepted too.
type ConfigSet struct {
	Global           Global            `mapstructure:"global" toml:"global"`
	Ports            []Port            `mapstructure:"ports" toml:"ports,omitempty"`
	Lags             []Lag             `mapstructure:"lags" toml:"lags,omitempty"`
	RouterInterfaces []RouterInterface `mapstructure:"router-interfaces" toml:"router-interfaces,omitempty"`
	Tunnels          []Tunnel          `mapstructure:"tunnels" toml:"tunnels,omitempty"`
	Vlans            []uint16          `mapstructure:"vlans" toml:"vlans,omitempty"`
	L2mcGroups       []L2mcGroup       `mapstructure:"l2mc-groups" toml:"l2mc-groups,omitempty"`
	Bridges          []Bridge          `mapstructure:"bridges" toml:"bridges,omitempty"`
}

type Global struct {
	SwitchID uint64 `mapstructure:"switch-id" toml:"switch-id"`
	Backend  string `mapstructure:"backend" toml:"backend"`
	// DiscoverLinks adds a port for every host link and a LAG for every
	// bond that the file does not name.
	DiscoverLinks bool   `mapstructure:"discover-links" toml:"discover-links,omitempty"`
	GrpcHosts     string `mapstructure:"grpc-hosts" toml:"grpc-hosts"`
}

type Port struct {
	Name        string `mapstructure:"name" toml:"name"`
	ID          string `mapstructure:"id" toml:"id,omitempty"`
	LagMemberOf string `mapstructure:"lag-member-of" toml:"lag-member-of,omitempty"`
}

type Lag struct {
	Name    string   `mapstructure:"name" toml:"name"`
	ID      string   `mapstructure:"id" toml:"id,omitempty"`
	Members []string `mapstructure:"members" toml:"members,omitempty"`
}

type RouterInterface struct {
	Name string `mapstructure:"name" toml:"name"`
	ID   string `mapstructure:"id" toml:"id,omitempty"`
}

type Tunnel struct {
	Name string `mapstructure:"name" toml:"name"`
	ID   string `mapstructure:"id" toml:"id,omitempty"`
}

type L2mcGroup struct {
	Name string `mapstructure:"name" toml:"name"`
	ID   string `mapstructure:"id" toml:"id,omitempty"`
}

type Flood struct {
	Control string `mapstructure:"control" toml:"control,omitempty"`
	Group   string `mapstructure:"group" toml:"group,omitempty"`
}

type FloodConfig struct {
	UnknownUnicast   Flood `mapstructure:"unknown-unicast" toml:"unknown-unicast,omitempty"`
	UnknownMulticast Flood `mapstructure:"unknown-multicast" toml:"unknown-multicast,omitempty"`
	Broadcast        Flood `mapstructure:"broadcast" toml:"broadcast,omitempty"`
}

// Of returns the flood settings of flood type t.
func (f *FloodConfig) Of(t sai.FloodType) *Flood {
	switch t {
	case sai.FloodTypeUnknownUnicast:
		return &f.UnknownUnicast
	case sai.FloodTypeUnknownMulticast:
		return &f.UnknownMulticast
	}
	return &f.Broadcast
}

// Bridge configures a 1D bridge, or with type "1q" the bridge ports of the
// default bridge.
type Bridge struct {
	Name                string       `mapstructure:"name" toml:"name"`
	Type                string       `mapstructure:"type" toml:"type"`
	LearnDisable        bool         `mapstructure:"learn-disable" toml:"learn-disable,omitempty"`
	MaxLearnedAddresses uint32       `mapstructure:"max-learned-addresses" toml:"max-learned-addresses,omitempty"`
	Flood               FloodConfig  `mapstructure:"flood" toml:"flood,omitempty"`
	Ports               []BridgePort `mapstructure:"ports" toml:"ports,omitempty"`
	State               BridgeState  `mapstructure:"-" toml:"-"`
}

type BridgeState struct {
	ID sai.ObjectID
}

type BridgePort struct {
	// Type is one of port, sub-port, router and tunnel.
	Type            string          `mapstructure:"type" toml:"type"`
	Port            string          `mapstructure:"port" toml:"port,omitempty"`
	Vlan            uint16          `mapstructure:"vlan" toml:"vlan,omitempty"`
	RouterInterface string          `mapstructure:"router-interface" toml:"router-interface,omitempty"`
	Tunnel          string          `mapstructure:"tunnel" toml:"tunnel,omitempty"`
	AdminState      bool            `mapstructure:"admin-state" toml:"admin-state,omitempty"`
	State           BridgePortState `mapstructure:"-" toml:"-"`
}

type BridgePortState struct {
	ID sai.ObjectID
}

// equal compares the configured part of two bridges.
func (b *Bridge) equal(o *Bridge) bool {
	if b.Name != o.Name || b.Type != o.Type || b.LearnDisable != o.LearnDisable ||
		b.MaxLearnedAddresses != o.MaxLearnedAddresses || b.Flood != o.Flood ||
		len(b.Ports) != len(o.Ports) {
		return false
	}
	for i := range b.Ports {
		p, q := b.Ports[i], o.Ports[i]
		p.State, q.State = BridgePortState{}, BridgePortState{}
		if p != q {
			return false
		}
	}
	return true
}
