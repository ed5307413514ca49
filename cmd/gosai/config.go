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

package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	api "github.com/osrg/gosai/api"
	"github.com/osrg/gosai/pkg/config"
	"github.com/osrg/gosai/pkg/sai"
)

// parseAttachment reads the attachment text of a bridge port back into
// its configuration fields.
func parseAttachment(s string, p *config.BridgePort) error {
	f := strings.Fields(s)
	switch {
	case len(f) == 2 && f[0] == "port":
		p.Port = f[1]
	case len(f) == 4 && f[0] == "port" && f[2] == "vlan":
		p.Port = f[1]
		vlan, err := strconv.ParseUint(f[3], 10, 16)
		if err != nil {
			return fmt.Errorf("attachment %q: %w", s, err)
		}
		p.Vlan = uint16(vlan)
	case len(f) == 2 && f[0] == "rif":
		p.RouterInterface = f[1]
	case len(f) == 2 && f[0] == "tunnel":
		p.Tunnel = f[1]
	default:
		return fmt.Errorf("unknown attachment %q", s)
	}
	return nil
}

func exportBridgePort(bp *api.BridgePort) (config.BridgePort, bool, error) {
	p := config.BridgePort{Type: bp.Type, AdminState: bp.AdminState}
	if err := parseAttachment(bp.Attachment, &p); err != nil {
		return p, false, err
	}
	switch bp.Type {
	case sai.BridgePortType1QRouter.String(), sai.BridgePortType1DRouter.String():
		p.Type = "router"
	case sai.BridgePortTypePort.String():
		// bridge ports of physical ports come back with the daemon itself
		id, err := sai.ParseObjectID(p.Port)
		if err != nil {
			return p, false, err
		}
		if id.Type() != sai.ObjectTypeLag {
			return p, false, nil
		}
	}
	return p, true, nil
}

func exportBridge(b *api.Bridge) (config.Bridge, error) {
	c := config.Bridge{Name: "br-" + b.Id, Type: b.Type}
	if b.Type == sai.BridgeType1Q.String() {
		c.Name = "default"
		return c, nil
	}
	null := sai.NullObjectID.String()
	for _, a := range b.Attributes {
		switch a.Name {
		case sai.BridgeAttrName(sai.BridgeAttrLearnDisable):
			c.LearnDisable = a.Value == "true"
		case sai.BridgeAttrName(sai.BridgeAttrMaxLearnedAddresses):
			n, err := strconv.ParseUint(a.Value, 10, 32)
			if err != nil {
				return c, fmt.Errorf("bridge %s %s: %w", b.Id, a.Name, err)
			}
			c.MaxLearnedAddresses = uint32(n)
		}
	}
	for t := sai.FloodType(0); t < sai.FloodTypeMax; t++ {
		f := c.Flood.Of(t)
		f.Control = attrValue(b.Attributes, sai.BridgeAttrName(sai.FloodControlAttr(t)))
		if f.Control == sai.FloodControlSubPorts.String() {
			f.Control = ""
		}
		if g := attrValue(b.Attributes, sai.BridgeAttrName(sai.FloodGroupAttr(t))); g != null {
			f.Group = g
		}
	}
	return c, nil
}

// exportConfig rebuilds a configuration from the live bridges and bridge
// ports. Switch objects are referred to by id.
func exportConfig(bridges []*api.Bridge, ports []*api.BridgePort) (*config.ConfigSet, error) {
	c := &config.ConfigSet{}
	byBridge := make(map[string][]*api.BridgePort)
	for _, bp := range ports {
		byBridge[bp.Bridge] = append(byBridge[bp.Bridge], bp)
	}
	for _, b := range bridges {
		cb, err := exportBridge(b)
		if err != nil {
			return nil, err
		}
		for _, bp := range byBridge[b.Id] {
			p, ok, err := exportBridgePort(bp)
			if err != nil {
				return nil, fmt.Errorf("bridge port %s: %w", bp.Id, err)
			}
			if !ok {
				continue
			}
			if p.Vlan != 0 && !slices.Contains(c.Vlans, p.Vlan) {
				c.Vlans = append(c.Vlans, p.Vlan)
			}
			cb.Ports = append(cb.Ports, p)
		}
		c.Bridges = append(c.Bridges, cb)
	}
	slices.Sort(c.Vlans)
	if err := config.SetDefaultConfigValues(nil, c); err != nil {
		return nil, err
	}
	return c, nil
}

func newConfigCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   cmdExport,
		Short: "write the running bridges as a gosaid configuration",
		Run: func(cmd *cobra.Command, args []string) {
			bridges, err := listBridges("")
			if err != nil {
				exitWithError(err)
			}
			ports, err := listBridgePorts("", "")
			if err != nil {
				exitWithError(err)
			}
			c, err := exportConfig(bridges, ports)
			if err != nil {
				exitWithError(err)
			}
			if err := toml.NewEncoder(os.Stdout).Encode(c); err != nil {
				exitWithError(err)
			}
		},
	}

	configCmd := &cobra.Command{
		Use: cmdConfig,
	}
	configCmd.AddCommand(exportCmd)
	return configCmd
}
