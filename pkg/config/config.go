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
	"context"
	"fmt"

	"github.com/scylladb/go-set/u64set"

	"github.com/osrg/gosai/internal/pkg/netutils"
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
	"github.com/osrg/gosai/pkg/server"
	"github.com/osrg/gosai/pkg/switchdb"
)

var discoverLinks = netutils.DiscoverLinks

func parseOptionalID(s string) (sai.ObjectID, error) {
	if s == "" {
		return sai.NullObjectID, nil
	}
	return sai.ParseObjectID(s)
}

// resolve looks ref up by name first and then as an object id. The result
// must be of one of the types given.
func resolve(db *switchdb.DB, ref string, types ...sai.ObjectType) (sai.ObjectID, error) {
	id, ok := db.ByName(ref)
	if !ok {
		var err error
		if id, err = sai.ParseObjectID(ref); err != nil || id.IsNull() {
			return sai.NullObjectID, fmt.Errorf("unknown object %q", ref)
		}
	}
	for _, t := range types {
		if id.Type() == t {
			return id, nil
		}
	}
	return sai.NullObjectID, fmt.Errorf("%q is a %s", ref, id.Type())
}

func addObject(logger log.Logger, db *switchdb.DB, kind, name, idStr string, add func(string, sai.ObjectID) (sai.ObjectID, error)) error {
	if _, ok := db.ByName(name); ok {
		return nil
	}
	want, err := parseOptionalID(idStr)
	if err != nil {
		return fmt.Errorf("%s %q: %w", kind, name, err)
	}
	id, err := add(name, want)
	if err != nil {
		return fmt.Errorf("%s %q: %w", kind, name, err)
	}
	logger.Debug("object registered", log.Fields{
		"Topic": "Config",
		"Key":   id,
		"Kind":  kind,
		"Name":  name,
	})
	return nil
}

// registerObjects adds the ports, LAGs, router interfaces, tunnels, VLANs
// and multicast groups of c that db does not know yet.
func registerObjects(logger log.Logger, db *switchdb.DB, c *ConfigSet) error {
	for _, p := range c.Ports {
		if err := addObject(logger, db, "port", p.Name, p.ID, db.Ports.AddPort); err != nil {
			return err
		}
	}
	members := make(map[string][]string)
	for _, l := range c.Lags {
		if err := addObject(logger, db, "lag", l.Name, l.ID, db.Lags.AddLag); err != nil {
			return err
		}
		members[l.Name] = append(members[l.Name], l.Members...)
	}
	for _, p := range c.Ports {
		if p.LagMemberOf != "" {
			members[p.LagMemberOf] = append(members[p.LagMemberOf], p.Name)
		}
	}

	if c.Global.DiscoverLinks {
		links, err := discoverLinks()
		if err != nil {
			return err
		}
		for _, link := range links {
			if link.Bond {
				continue
			}
			if err := addObject(logger, db, "port", link.Name, "", db.Ports.AddPort); err != nil {
				return err
			}
		}
		for bond, l := range netutils.Bonds(links) {
			if err := addObject(logger, db, "lag", bond, "", db.Lags.AddLag); err != nil {
				return err
			}
			members[bond] = append(members[bond], l...)
		}
	}

	for lagName, names := range members {
		lag, err := resolve(db, lagName, sai.ObjectTypeLag)
		if err != nil {
			return fmt.Errorf("lag members: %w", err)
		}
		ports := make([]sai.ObjectID, 0, len(names))
		for _, name := range names {
			p, err := resolve(db, name, sai.ObjectTypePort)
			if err != nil {
				return fmt.Errorf("lag %q: %w", lagName, err)
			}
			ports = append(ports, p)
		}
		if err := db.Lags.AddMembers(lag, ports...); err != nil {
			return fmt.Errorf("lag %q: %w", lagName, err)
		}
	}

	for _, r := range c.RouterInterfaces {
		if err := addObject(logger, db, "router interface", r.Name, r.ID, db.Rifs.AddRif); err != nil {
			return err
		}
	}
	for _, t := range c.Tunnels {
		if err := addObject(logger, db, "tunnel", t.Name, t.ID, db.Tunnels.AddTunnel); err != nil {
			return err
		}
	}
	for _, g := range c.L2mcGroups {
		if err := addObject(logger, db, "l2mc group", g.Name, g.ID, db.L2mc.AddGroup); err != nil {
			return err
		}
	}
	for _, vlan := range c.Vlans {
		db.Vlans.Lock()
		known := db.Vlans.IsVlanValid(vlan)
		db.Vlans.Unlock()
		if known {
			continue
		}
		if err := db.Vlans.AddVlan(vlan); err != nil {
			return fmt.Errorf("vlan %d: %w", vlan, err)
		}
	}
	return nil
}

func bridgeAttrs(db *switchdb.DB, b *Bridge) ([]sai.Attribute, error) {
	attrs := []sai.Attribute{sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D))}
	if b.LearnDisable {
		attrs = append(attrs, sai.BoolAttr(sai.BridgeAttrLearnDisable, true))
	}
	if b.MaxLearnedAddresses > 0 {
		attrs = append(attrs, sai.U32Attr(sai.BridgeAttrMaxLearnedAddresses, b.MaxLearnedAddresses))
	}
	for t := sai.FloodType(0); t < sai.FloodTypeMax; t++ {
		f := b.Flood.Of(t)
		if f.Control != "" {
			ctrl, err := sai.ParseFloodControlType(f.Control)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, sai.S32Attr(sai.FloodControlAttr(t), int32(ctrl)))
		}
		if f.Group != "" {
			group, err := resolve(db, f.Group, sai.ObjectTypeL2mcGroup)
			if err != nil {
				return nil, fmt.Errorf("%s flood group: %w", t, err)
			}
			attrs = append(attrs, sai.OIDAttr(sai.FloodGroupAttr(t), group))
		}
	}
	return attrs, nil
}

func bridgePortAttrs(db *switchdb.DB, bridgeType sai.BridgeType, bridge sai.ObjectID, p *BridgePort) ([]sai.Attribute, error) {
	t, err := bridgePortType(bridgeType, p.Type)
	if err != nil {
		return nil, err
	}
	attrs := []sai.Attribute{sai.S32Attr(sai.BridgePortAttrType, int32(t))}
	switch t {
	case sai.BridgePortTypePort, sai.BridgePortTypeSubPort:
		port, err := resolve(db, p.Port, sai.ObjectTypePort, sai.ObjectTypeLag)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, sai.OIDAttr(sai.BridgePortAttrPortID, port))
		if t == sai.BridgePortTypeSubPort {
			attrs = append(attrs,
				sai.U16Attr(sai.BridgePortAttrVlanID, p.Vlan),
				sai.OIDAttr(sai.BridgePortAttrBridgeID, bridge))
		}
	case sai.BridgePortType1QRouter, sai.BridgePortType1DRouter:
		rif, err := resolve(db, p.RouterInterface, sai.ObjectTypeRouterInterface)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs,
			sai.OIDAttr(sai.BridgePortAttrRifID, rif),
			sai.OIDAttr(sai.BridgePortAttrBridgeID, bridge))
	case sai.BridgePortTypeTunnel:
		tunnel, err := resolve(db, p.Tunnel, sai.ObjectTypeTunnel)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs,
			sai.OIDAttr(sai.BridgePortAttrTunnelID, tunnel),
			sai.OIDAttr(sai.BridgePortAttrBridgeID, bridge))
	}
	if p.AdminState {
		attrs = append(attrs, sai.BoolAttr(sai.BridgePortAttrAdminState, true))
	}
	return attrs, nil
}

// addBridge creates b and its bridge ports and records their ids in the
// State of b. On failure whatever was created is removed again.
func addBridge(s *server.BridgeServer, db *switchdb.DB, b *Bridge) error {
	t, err := sai.ParseBridgeType(b.Type)
	if err != nil {
		return err
	}
	if t == sai.BridgeType1Q {
		b.State.ID, err = s.DefaultBridgeID()
	} else {
		var attrs []sai.Attribute
		if attrs, err = bridgeAttrs(db, b); err == nil {
			b.State.ID, err = s.CreateBridge(attrs)
		}
	}
	if err != nil {
		return err
	}

	for i := range b.Ports {
		p := &b.Ports[i]
		attrs, err := bridgePortAttrs(db, t, b.State.ID, p)
		if err == nil {
			p.State.ID, err = s.CreateBridgePort(attrs)
		}
		if err != nil {
			deleteBridge(s, b)
			return fmt.Errorf("port %d: %w", i, err)
		}
	}
	return nil
}

// deleteBridge removes what addBridge created. The default bridge itself
// stays.
func deleteBridge(s *server.BridgeServer, b *Bridge) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i := len(b.Ports) - 1; i >= 0; i-- {
		p := &b.Ports[i]
		if p.State.ID.IsNull() {
			continue
		}
		if p.AdminState {
			keep(s.SetBridgePortAttribute(p.State.ID, sai.BoolAttr(sai.BridgePortAttrAdminState, false)))
		}
		if err := s.RemoveBridgePort(p.State.ID); err != nil {
			keep(err)
			continue
		}
		p.State.ID = sai.NullObjectID
	}
	if b.State.ID.IsNull() || firstErr != nil {
		return firstErr
	}
	if def, err := s.DefaultBridgeID(); err == nil && def == b.State.ID {
		b.State.ID = sai.NullObjectID
		return nil
	}
	if err := s.RemoveBridge(b.State.ID); err != nil {
		return err
	}
	b.State.ID = sai.NullObjectID
	return nil
}

func addBridges(logger log.Logger, s *server.BridgeServer, db *switchdb.DB, l []*Bridge) {
	for _, b := range l {
		logger.Info("Add Bridge", log.Fields{
			"Topic": "Config",
			"Key":   b.Name,
		})
		if err := addBridge(s, db, b); err != nil {
			logger.Error("Failed to add Bridge", log.Fields{
				"Topic": "Config",
				"Key":   b.Name,
				"Error": err,
			})
		}
	}
}

func deleteBridges(logger log.Logger, s *server.BridgeServer, l []*Bridge) {
	for _, b := range l {
		logger.Info("Delete Bridge", log.Fields{
			"Topic": "Config",
			"Key":   b.Name,
		})
		if err := deleteBridge(s, b); err != nil {
			logger.Error("Failed to delete Bridge", log.Fields{
				"Topic": "Config",
				"Key":   b.Name,
				"Error": err,
			})
		}
	}
}

func bridgePointers(c *ConfigSet) []*Bridge {
	l := make([]*Bridge, 0, len(c.Bridges))
	for i := range c.Bridges {
		l = append(l, &c.Bridges[i])
	}
	return l
}

// addDefaultBridgePorts gives every physical port not in known, other than
// LAG members, its Port bridge port on the default bridge.
func addDefaultBridgePorts(logger log.Logger, s *server.BridgeServer, db *switchdb.DB, known []sai.ObjectID) {
	old := u64set.New()
	for _, p := range known {
		old.Add(uint64(p))
	}
	var bare []sai.ObjectID
	db.Ports.Lock()
	for _, p := range db.Ports.ValidPorts() {
		if old.Has(uint64(p)) || db.Ports.IsLagMember(p) {
			continue
		}
		if db.Ports.DefaultBridgePort(p).IsNull() {
			bare = append(bare, p)
		}
	}
	db.Ports.Unlock()

	for _, p := range bare {
		bp, err := s.AddDefaultBridgePort(p)
		if err != nil {
			logger.Warn("Failed to add default bridge port", log.Fields{
				"Topic": "Config",
				"Key":   p,
				"Error": err,
			})
			continue
		}
		logger.Debug("default bridge port added", log.Fields{
			"Topic":      "Config",
			"Key":        p,
			"BridgePort": bp,
		})
	}
}

// InitialConfig registers the objects of newConfig in db, initializes a
// pristine bridge server and creates the configured bridges. It can only be
// called once for a server. Subsequent changes to the configuration can be
// applied using UpdateConfig. The ConfigSet can be obtained by calling
// ReadConfigFile.
func InitialConfig(ctx context.Context, s *server.BridgeServer, db *switchdb.DB, newConfig *ConfigSet) (*ConfigSet, error) {
	logger := s.Logger()
	if err := registerObjects(logger, db, newConfig); err != nil {
		logger.Error("failed to register switch objects", log.Fields{
			"Topic": "Config",
			"Error": err,
		})
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addBridges(logger, s, db, bridgePointers(newConfig))
	return newConfig, nil
}

// UpdateConfig updates the configuration of a running bridge server.
// InitialConfig must have been called once before. Objects new to the file
// are registered; objects dropped from it are left alone. Bridges are
// matched by name: deleted ones are removed, new ones added and changed ones
// removed and added again.
func UpdateConfig(ctx context.Context, s *server.BridgeServer, db *switchdb.DB, c, newConfig *ConfigSet) (*ConfigSet, error) {
	logger := s.Logger()
	db.Ports.Lock()
	known := db.Ports.ValidPorts()
	db.Ports.Unlock()
	if err := registerObjects(logger, db, newConfig); err != nil {
		logger.Error("failed to register switch objects", log.Fields{
			"Topic": "Config",
			"Error": err,
		})
		return c, err
	}
	addDefaultBridgePorts(logger, s, db, known)

	cur := make(map[string]*Bridge, len(c.Bridges))
	for _, b := range bridgePointers(c) {
		cur[b.Name] = b
	}
	var added, deleted []*Bridge
	for _, b := range bridgePointers(newConfig) {
		old, ok := cur[b.Name]
		switch {
		case !ok:
			added = append(added, b)
		case old.equal(b):
			b.State = old.State
			for i := range b.Ports {
				b.Ports[i].State = old.Ports[i].State
			}
		default:
			deleted = append(deleted, old)
			added = append(added, b)
		}
		delete(cur, b.Name)
	}
	for _, b := range bridgePointers(c) {
		if _, ok := cur[b.Name]; ok {
			deleted = append(deleted, b)
		}
	}

	deleteBridges(logger, s, deleted)
	if err := ctx.Err(); err != nil {
		return newConfig, err
	}
	addBridges(logger, s, db, added)
	return newConfig, nil
}
