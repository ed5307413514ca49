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

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/osrg/gosai/pkg/sai"
)

// ReadConfigFile parses a config file into a ConfigSet which can be applied
// using InitialConfig and UpdateConfig.
func ReadConfigFile(path, format string) (*ConfigSet, error) {
	c := &ConfigSet{}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(format)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.UnmarshalExact(c); err != nil {
		return nil, err
	}
	if err := SetDefaultConfigValues(v, c); err != nil {
		return nil, err
	}
	return c, nil
}

// WatchConfigFile calls the callback function anytime an update to the
// config file is detected.
func WatchConfigFile(path, format string, callBack func()) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(format)
	v.OnConfigChange(func(e fsnotify.Event) {
		callBack()
	})
	v.WatchConfig()
}

// SetDefaultConfigValues fills in what the file left out and rejects what
// can never be applied. v may be nil.
func SetDefaultConfigValues(v *viper.Viper, c *ConfigSet) error {
	if v == nil {
		v = viper.New()
	}
	if !v.IsSet("global.switch-id") {
		c.Global.SwitchID = DefaultSwitchID
	}
	if c.Global.Backend == "" {
		c.Global.Backend = DefaultBackend
	}
	if c.Global.Backend != DefaultBackend {
		return fmt.Errorf("unsupported backend %q", c.Global.Backend)
	}
	if c.Global.GrpcHosts == "" {
		c.Global.GrpcHosts = DefaultGrpcHosts
	}

	for _, vlan := range c.Vlans {
		if !sai.IsValidVlanID(vlan) {
			return fmt.Errorf("invalid vlan %d", vlan)
		}
	}

	names := make(map[string]bool)
	haveDefault := false
	for i := range c.Bridges {
		b := &c.Bridges[i]
		if b.Name == "" {
			return fmt.Errorf("bridge %d has no name", i)
		}
		if names[b.Name] {
			return fmt.Errorf("duplicate bridge %q", b.Name)
		}
		names[b.Name] = true

		if b.Type == "" {
			b.Type = sai.BridgeType1D.String()
		}
		t, err := sai.ParseBridgeType(b.Type)
		if err != nil {
			return fmt.Errorf("bridge %q: %w", b.Name, err)
		}
		b.Type = t.String()
		if t == sai.BridgeType1Q {
			if haveDefault {
				return fmt.Errorf("bridge %q: only one 1q bridge can be configured", b.Name)
			}
			haveDefault = true
		}
		for ft := sai.FloodType(0); ft < sai.FloodTypeMax; ft++ {
			f := b.Flood.Of(ft)
			if f.Control == "" {
				continue
			}
			ctrl, err := sai.ParseFloodControlType(f.Control)
			if err != nil {
				return fmt.Errorf("bridge %q %s flood: %w", b.Name, ft, err)
			}
			f.Control = ctrl.String()
		}

		for j := range b.Ports {
			p := &b.Ports[j]
			if p.Type == "" {
				if t == sai.BridgeType1Q {
					p.Type = sai.BridgePortTypePort.String()
				} else {
					p.Type = sai.BridgePortTypeSubPort.String()
				}
			}
			p.Type = strings.ToLower(p.Type)
			if _, err := bridgePortType(t, p.Type); err != nil {
				return fmt.Errorf("bridge %q port %d: %w", b.Name, j, err)
			}
		}
	}
	return nil
}

// bridgePortType maps a configured bridge port type to the type it has on
// a bridge of type t.
func bridgePortType(t sai.BridgeType, s string) (sai.BridgePortType, error) {
	var bt sai.BridgePortType
	switch s {
	case "router":
		bt = sai.BridgePortType1DRouter
		if t == sai.BridgeType1Q {
			bt = sai.BridgePortType1QRouter
		}
	default:
		var err error
		bt, err = sai.ParseBridgePortType(s)
		if err != nil {
			return 0, err
		}
	}
	if bt.BridgeType() != t {
		return 0, fmt.Errorf("%s bridge port cannot join a %s bridge", bt, t)
	}
	return bt, nil
}
