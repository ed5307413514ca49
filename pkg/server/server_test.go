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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/backend/virtual"
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
	"github.com/osrg/gosai/pkg/switchdb"
)

type fixture struct {
	s      *BridgeServer
	db     *switchdb.DB
	be     *virtual.Backend
	logger *log.TestLogger
	ports  []sai.ObjectID
}

func newFixture(t *testing.T, nports int, opts ...ServerOption) *fixture {
	t.Helper()
	return newFixtureWithDB(t, switchdb.New(), nports, opts...)
}

func newFixtureWithDB(t *testing.T, db *switchdb.DB, nports int, opts ...ServerOption) *fixture {
	t.Helper()
	f := &fixture{
		db:     db,
		be:     virtual.New(),
		logger: log.NewTestLogger(),
	}
	for i := 0; i < nports; i++ {
		p, err := f.db.Ports.AddPort("", sai.NullObjectID)
		require.NoError(t, err)
		f.ports = append(f.ports, p)
	}
	opts = append([]ServerOption{
		SwitchDBOption(f.db),
		BackendOption(f.be),
		LoggerOption(f.logger),
	}, opts...)
	f.s = NewBridgeServer(opts...)
	return f
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	require.NoError(t, f.s.Init(context.Background()))
}

func (f *fixture) defaultBridge(t *testing.T) sai.ObjectID {
	t.Helper()
	id, err := f.s.DefaultBridgeID()
	require.NoError(t, err)
	return id
}

func (f *fixture) create1D(t *testing.T, attrs ...sai.Attribute) sai.ObjectID {
	t.Helper()
	attrs = append([]sai.Attribute{sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D))}, attrs...)
	id, err := f.s.CreateBridge(attrs)
	require.NoError(t, err)
	return id
}

func (f *fixture) defaultBridgePortOf(port sai.ObjectID) sai.ObjectID {
	f.db.Ports.Lock()
	defer f.db.Ports.Unlock()
	return f.db.Ports.DefaultBridgePort(port)
}

func portAttrs(port sai.ObjectID) []sai.Attribute {
	return []sai.Attribute{
		sai.S32Attr(sai.BridgePortAttrType, int32(sai.BridgePortTypePort)),
		sai.OIDAttr(sai.BridgePortAttrPortID, port),
	}
}

func subPortAttrs(port sai.ObjectID, vlan uint16, bridge sai.ObjectID) []sai.Attribute {
	return []sai.Attribute{
		sai.S32Attr(sai.BridgePortAttrType, int32(sai.BridgePortTypeSubPort)),
		sai.OIDAttr(sai.BridgePortAttrPortID, port),
		sai.U16Attr(sai.BridgePortAttrVlanID, vlan),
		sai.OIDAttr(sai.BridgePortAttrBridgeID, bridge),
	}
}

func routerAttrs(t sai.BridgePortType, rif, bridge sai.ObjectID) []sai.Attribute {
	return []sai.Attribute{
		sai.S32Attr(sai.BridgePortAttrType, int32(t)),
		sai.OIDAttr(sai.BridgePortAttrRifID, rif),
		sai.OIDAttr(sai.BridgePortAttrBridgeID, bridge),
	}
}

func tunnelAttrs(tunnel, bridge sai.ObjectID) []sai.Attribute {
	return []sai.Attribute{
		sai.S32Attr(sai.BridgePortAttrType, int32(sai.BridgePortTypeTunnel)),
		sai.OIDAttr(sai.BridgePortAttrTunnelID, tunnel),
		sai.OIDAttr(sai.BridgePortAttrBridgeID, bridge),
	}
}

// assertRefCounts checks that every bridge counts exactly the bridge ports
// it owns and every port, LAG, router interface and tunnel counts exactly
// the bridge ports bound to it.
func assertRefCounts(t *testing.T, f *fixture) {
	t.Helper()
	bridges, err := listAll(f.s.BridgeCount, f.s.ListBridges)
	require.NoError(t, err)
	for _, id := range bridges {
		b, err := f.s.BridgeInfo(id)
		require.NoError(t, err)
		assert.Equal(t, uint32(len(f.s.BridgePortsOf(id))), b.RefCount, "bridge %s", id)
	}

	bound := make(map[sai.ObjectID]uint32)
	bps, err := listAll(f.s.BridgePortCount, f.s.ListBridgePorts)
	require.NoError(t, err)
	for _, id := range bps {
		bp, err := f.s.BridgePortInfo(id)
		require.NoError(t, err)
		switch a := bp.Attachment.(type) {
		case table.PortAttachment:
			bound[a.Port]++
		case table.SubPortAttachment:
			bound[a.Port]++
		case table.RouterAttachment:
			bound[a.Rif]++
		case table.TunnelAttachment:
			bound[a.Tunnel]++
		}
	}

	check := func(m interface {
		Lock()
		Unlock()
		IDs() []sai.ObjectID
		RefCount(sai.ObjectID) uint32
	}) {
		m.Lock()
		defer m.Unlock()
		for _, id := range m.IDs() {
			assert.Equal(t, bound[id], m.RefCount(id), "%s", id)
		}
	}
	check(f.db.Ports)
	check(f.db.Lags)
	check(f.db.Rifs)
	check(f.db.Tunnels)
}

func TestInitDeinit(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 4)
	ctx := context.Background()

	_, err := f.s.DefaultBridgeID()
	assert.Equal(sai.StatusUninitialized, sai.StatusOf(err))
	_, err = f.s.CreateBridge([]sai.Attribute{sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D))})
	assert.Equal(sai.StatusUninitialized, sai.StatusOf(err))
	assert.Equal(sai.StatusUninitialized, sai.StatusOf(f.s.Deinit(ctx)))

	var events []BridgePortEventType
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleVlan, sai.AllBridgePortTypes, func(ev *BridgePortEvent) error {
		events = append(events, ev.Type)
		return nil
	}))

	f.init(t)
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(f.s.Init(ctx)))

	def := f.defaultBridge(t)
	b, err := f.s.BridgeInfo(def)
	require.NoError(t, err)
	assert.Equal(sai.BridgeType1Q, b.Type)
	assert.Equal(uint32(4), b.RefCount)
	assert.Equal(4, f.s.BridgePortCount())
	assert.Equal([]BridgePortEventType{
		BridgePortEventInitCreate,
		BridgePortEventInitCreate,
		BridgePortEventInitCreate,
		BridgePortEventInitCreate,
	}, events)

	for _, p := range f.ports {
		bp := f.defaultBridgePortOf(p)
		require.False(t, bp.IsNull())
		info, err := f.s.BridgePortInfo(bp)
		require.NoError(t, err)
		assert.Equal(sai.BridgePortTypePort, info.Type)
		assert.Equal(def, info.BridgeID)
		assert.False(info.AdminState)
	}
	assertRefCounts(t, f)

	br := f.create1D(t)
	assert.NoError(f.s.Deinit(ctx))
	assert.Equal(0, f.s.BridgeCount())
	assert.Equal(0, f.s.BridgePortCount())
	assert.False(f.s.bridges.Exists(br))
	for _, p := range f.ports {
		assert.True(f.defaultBridgePortOf(p).IsNull())
	}
	assertRefCounts(t, f)

	f.init(t)
	assert.Equal(4, f.s.BridgePortCount())
	assert.NoError(f.s.Deinit(ctx))
}

func TestInitSkipsLagMembers(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 3)
	lag, err := f.db.Lags.AddLag("po1", sai.NullObjectID)
	require.NoError(t, err)
	require.NoError(t, f.db.Lags.AddMembers(lag, f.ports[0]))

	f.init(t)
	assert.Equal(2, f.s.BridgePortCount())
	assert.True(f.defaultBridgePortOf(f.ports[0]).IsNull())
	assert.False(f.defaultBridgePortOf(f.ports[1]).IsNull())
}

func TestInitRollsBackOnFailure(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 2)
	f.be.FailOn(virtual.OpCreateBridgePort, sai.NewError(sai.StatusInsufficientResources, "full"))

	err := f.s.Init(context.Background())
	assert.Equal(sai.StatusInsufficientResources, sai.StatusOf(err))
	assert.Equal(0, f.s.BridgeCount())
	assert.Equal(0, f.s.BridgePortCount())
	_, err = f.s.DefaultBridgeID()
	assert.Equal(sai.StatusUninitialized, sai.StatusOf(err))
	assert.True(f.logger.Contains("error", "failed to create default bridge port"))

	f.be.ClearFailures()
	f.init(t)
	assert.Equal(2, f.s.BridgePortCount())
}

func TestBridgeLifecycle(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)
	f.init(t)
	def := f.defaultBridge(t)

	_, err := f.s.CreateBridge([]sai.Attribute{sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1Q))})
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))

	_, err = f.s.CreateBridge([]sai.Attribute{sai.BoolAttr(sai.BridgeAttrLearnDisable, true)})
	assert.Equal(sai.StatusMandatoryAttributeMissing, sai.StatusOf(err))

	_, err = f.s.CreateBridge([]sai.Attribute{sai.S32Attr(sai.BridgeAttrType, 7)})
	assert.Equal(sai.StatusInvalidAttrValue, sai.StatusOf(err))

	br := f.create1D(t, sai.S32Attr(sai.BridgeAttrBroadcastFloodControlType, int32(sai.FloodControlNone)))
	assert.Equal(sai.ObjectTypeBridge, br.Type())
	b, err := f.s.BridgeInfo(br)
	require.NoError(t, err)
	assert.Equal(sai.BridgeType1D, b.Type)
	assert.Equal(sai.FloodControlNone, b.FloodControl[sai.FloodTypeBroadcast])
	assert.Equal(sai.FloodControlSubPorts, b.FloodControl[sai.FloodTypeUnknownUnicast])

	ids, err := f.s.ListBridges(1)
	assert.Equal(sai.StatusBufferOverflow, sai.StatusOf(err))
	assert.Equal(2, sai.RequiredOf(err))
	ids, err = f.s.ListBridges(2)
	assert.NoError(err)
	assert.ElementsMatch([]sai.ObjectID{def, br}, ids)

	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridge(def)))
	assert.Equal(sai.StatusInvalidObjectType, sai.StatusOf(f.s.RemoveBridge(f.ports[0])))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(f.s.RemoveBridge(sai.NewObjectID(sai.ObjectTypeBridge, 99))))

	assert.NoError(f.s.RemoveBridge(br))
	assert.Equal(1, f.s.BridgeCount())
}

func TestCreateBridgeBackendFailure(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)
	group, err := f.db.L2mc.AddGroup("flood", sai.NullObjectID)
	require.NoError(t, err)

	f.be.FailOn(virtual.OpCreateBridge, sai.NewError(sai.StatusInsufficientResources, "full"))
	_, err = f.s.CreateBridge([]sai.Attribute{
		sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D)),
		sai.OIDAttr(sai.BridgeAttrBroadcastFloodGroup, group),
	})
	assert.Equal(sai.StatusInsufficientResources, sai.StatusOf(err))
	assert.Equal(1, f.s.BridgeCount())
	f.be.ClearFailures()

	// a missing group is found after the backend call and rolled back
	removes := f.be.Calls(virtual.OpRemoveBridge)
	_, err = f.s.CreateBridge([]sai.Attribute{
		sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D)),
		sai.OIDAttr(sai.BridgeAttrUnknownUnicastFloodGroup, sai.NewObjectID(sai.ObjectTypeL2mcGroup, 42)),
	})
	assert.Equal(sai.StatusInvalidAttrValue, sai.StatusOf(err))
	idx, ok := sai.AttrIndexOf(err)
	assert.True(ok)
	assert.Equal(1, idx)
	assert.Equal(removes+1, f.be.Calls(virtual.OpRemoveBridge))
	assert.Equal(1, f.s.BridgeCount())
}

func TestBridgeFloodGroups(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)
	g1, _ := f.db.L2mc.AddGroup("g1", sai.NullObjectID)
	g2, _ := f.db.L2mc.AddGroup("g2", sai.NullObjectID)
	groupRefs := func(g sai.ObjectID) uint32 {
		f.db.L2mc.Lock()
		defer f.db.L2mc.Unlock()
		return f.db.L2mc.RefCount(g)
	}

	br := f.create1D(t,
		sai.S32Attr(sai.BridgeAttrBroadcastFloodControlType, int32(sai.FloodControlL2mcGroup)),
		sai.OIDAttr(sai.BridgeAttrBroadcastFloodGroup, g1),
		sai.OIDAttr(sai.BridgeAttrUnknownMulticastFloodGroup, g1),
	)
	assert.Equal(uint32(2), groupRefs(g1))

	// each flood type is handled on its own
	assert.NoError(f.s.SetBridgeAttribute(br, sai.OIDAttr(sai.BridgeAttrBroadcastFloodGroup, g2)))
	assert.Equal(uint32(1), groupRefs(g1))
	assert.Equal(uint32(1), groupRefs(g2))
	b, _ := f.s.BridgeInfo(br)
	assert.Equal(g2, b.FloodGroup[sai.FloodTypeBroadcast])
	assert.Equal(g1, b.FloodGroup[sai.FloodTypeUnknownMulticast])
	assert.Equal(sai.NullObjectID, b.FloodGroup[sai.FloodTypeUnknownUnicast])

	assert.NoError(f.s.SetBridgeAttribute(br, sai.OIDAttr(sai.BridgeAttrUnknownMulticastFloodGroup, sai.NullObjectID)))
	assert.Equal(uint32(0), groupRefs(g1))

	err := f.s.SetBridgeAttribute(br, sai.OIDAttr(sai.BridgeAttrUnknownUnicastFloodGroup, sai.NewObjectID(sai.ObjectTypePort, 1)))
	assert.Equal(sai.StatusInvalidAttrValue, sai.StatusOf(err))

	// flood attributes are not supported on the 1Q bridge
	err = f.s.SetBridgeAttribute(f.defaultBridge(t), sai.OIDAttr(sai.BridgeAttrBroadcastFloodGroup, g1))
	assert.Equal(sai.StatusAttrNotSupported, sai.StatusOf(err))

	assert.NoError(f.s.RemoveBridge(br))
	assert.Equal(uint32(0), groupRefs(g2))
	assert.NoError(f.db.L2mc.RemoveGroup(g2))
}

func TestBridgeAttributes(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 3)
	f.init(t)
	def := f.defaultBridge(t)

	attrs := []sai.Attribute{
		sai.OIDListAttr(sai.BridgeAttrPortList, 1),
		{ID: sai.BridgeAttrType},
	}
	err := f.s.GetBridgeAttribute(def, attrs)
	assert.Equal(sai.StatusBufferOverflow, sai.StatusOf(err))
	assert.Equal(3, sai.RequiredOf(err))
	assert.Equal(uint32(3), attrs[0].Value.U32)

	attrs[0] = sai.OIDListAttr(sai.BridgeAttrPortList, 3)
	require.NoError(t, f.s.GetBridgeAttribute(def, attrs))
	assert.Len(attrs[0].Value.OIDList, 3)
	assert.Equal(int32(sai.BridgeType1Q), attrs[1].Value.S32)

	err = f.s.GetBridgeAttribute(def, []sai.Attribute{{ID: 0x9999}})
	assert.Equal(sai.StatusUnknownAttribute, sai.StatusOf(err))
	err = f.s.GetBridgeAttribute(def, nil)
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(err))

	err = f.s.SetBridgeAttribute(def, sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D)))
	assert.Equal(sai.StatusInvalidAttribute, sai.StatusOf(err))
	idx, ok := sai.AttrIndexOf(err)
	assert.True(ok)
	assert.Equal(0, idx)

	_, err = f.s.GetBridgeStats(def, nil)
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(err))
	counters, err := f.s.GetBridgeStats(def, []sai.BridgeStat{sai.BridgeStatInOctets})
	assert.NoError(err)
	assert.Equal([]uint64{0}, counters)
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(f.s.ClearBridgeStats(def, nil)))
	assert.NoError(f.s.ClearBridgeStats(def, []sai.BridgeStat{sai.BridgeStatInOctets}))
}

func TestBridgePortKindCompatibility(t *testing.T) {
	f := newFixture(t, 2)
	f.init(t)
	def := f.defaultBridge(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	rif, _ := f.db.Rifs.AddRif("rif1", sai.NullObjectID)
	tunnel, _ := f.db.Tunnels.AddTunnel("vxlan1", sai.NullObjectID)
	extra, _ := f.db.Ports.AddPort("extra", sai.NullObjectID)

	tests := []struct {
		name  string
		attrs []sai.Attribute
		index int
	}{
		{"port on 1d", append(portAttrs(extra), sai.OIDAttr(sai.BridgePortAttrBridgeID, br)), 2},
		{"sub-port on 1q", subPortAttrs(f.ports[0], 10, def), 3},
		{"1q router on 1d", routerAttrs(sai.BridgePortType1QRouter, rif, br), 2},
		{"1d router on 1q", routerAttrs(sai.BridgePortType1DRouter, rif, def), 2},
		{"tunnel on 1q", tunnelAttrs(tunnel, def), 2},
		{"missing bridge", tunnelAttrs(tunnel, sai.NewObjectID(sai.ObjectTypeBridge, 99)), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.s.BridgePortCount()
			_, err := f.s.CreateBridgePort(tt.attrs)
			assert.Equal(t, sai.StatusInvalidAttrValue, sai.StatusOf(err))
			idx, ok := sai.AttrIndexOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.index, idx)
			assert.Equal(t, before, f.s.BridgePortCount())
		})
	}
	assertRefCounts(t, f)
}

func TestBridgePortValidation(t *testing.T) {
	f := newFixture(t, 1)
	f.init(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))

	tests := []struct {
		name   string
		attrs  []sai.Attribute
		status sai.Status
	}{
		{"no type", []sai.Attribute{sai.OIDAttr(sai.BridgePortAttrPortID, f.ports[0])}, sai.StatusMandatoryAttributeMissing},
		{"bad type", []sai.Attribute{sai.S32Attr(sai.BridgePortAttrType, 9)}, sai.StatusInvalidAttrValue},
		{"missing port", portAttrs(sai.NullObjectID)[:1], sai.StatusMandatoryAttributeMissing},
		{"port is not a port", portAttrs(br), sai.StatusInvalidAttrValue},
		{"unknown port", portAttrs(sai.NewObjectID(sai.ObjectTypePort, 77)), sai.StatusInvalidAttrValue},
		{"unknown lag", portAttrs(sai.NewObjectID(sai.ObjectTypeLag, 77)), sai.StatusInvalidAttrValue},
		{"vlan out of range", subPortAttrs(f.ports[0], 4095, br), sai.StatusInvalidAttrValue},
		{"unknown vlan", subPortAttrs(f.ports[0], 20, br), sai.StatusInvalidAttrValue},
		{"vlan on port", append(portAttrs(f.ports[0]), sai.U16Attr(sai.BridgePortAttrVlanID, 10)), sai.StatusInvalidAttribute},
		{"unknown attribute", append(portAttrs(f.ports[0]), sai.Attribute{ID: 0x7777}), sai.StatusUnknownAttribute},
		{"unsupported attribute", append(portAttrs(f.ports[0]), sai.U32Attr(sai.BridgePortAttrMaxLearnedAddresses, 10)), sai.StatusAttrNotImplemented},
		{"bad tagging", append(subPortAttrs(f.ports[0], 10, br), sai.S32Attr(sai.BridgePortAttrTaggingMode, 5)), sai.StatusInvalidAttrValue},
		{"unknown rif", routerAttrs(sai.BridgePortType1DRouter, sai.NewObjectID(sai.ObjectTypeRouterInterface, 5), br), sai.StatusInvalidAttrValue},
		{"unknown tunnel", tunnelAttrs(sai.NewObjectID(sai.ObjectTypeTunnel, 5), br), sai.StatusInvalidAttrValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.s.BridgePortCount()
			_, err := f.s.CreateBridgePort(tt.attrs)
			assert.Equal(t, tt.status, sai.StatusOf(err), "%v", err)
			assert.Equal(t, before, f.s.BridgePortCount())
		})
	}
}

func TestBridgePortUniqueness(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 2)
	f.init(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))

	// ports got their default bridge port on Init
	_, err := f.s.CreateBridgePort(portAttrs(f.ports[0]))
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))
	_, err = f.s.AddDefaultBridgePort(f.ports[0])
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))

	bp, err := f.s.CreateBridgePort(subPortAttrs(f.ports[0], 10, br))
	require.NoError(t, err)
	_, err = f.s.CreateBridgePort(subPortAttrs(f.ports[0], 10, br))
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))
	other, err := f.s.CreateBridgePort(subPortAttrs(f.ports[1], 10, br))
	assert.NoError(err)

	got, ok := f.s.SubPortOf(f.ports[0], 10)
	assert.True(ok)
	assert.Equal(bp, got)
	assert.Equal([]table.SubPort{{Vlan: 10, BridgePort: other}}, f.s.SubPortsOf(f.ports[1]))

	rif, _ := f.db.Rifs.AddRif("rif1", sai.NullObjectID)
	rbp, err := f.s.CreateBridgePort(routerAttrs(sai.BridgePortType1DRouter, rif, br))
	require.NoError(t, err)
	_, err = f.s.CreateBridgePort(routerAttrs(sai.BridgePortType1DRouter, rif, br))
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))
	f.db.Rifs.Lock()
	assert.Equal(rbp, f.db.Rifs.AttachedBridgePort(rif))
	f.db.Rifs.Unlock()

	tunnel, _ := f.db.Tunnels.AddTunnel("vxlan1", sai.NullObjectID)
	t1, err := f.s.CreateBridgePort(tunnelAttrs(tunnel, br))
	require.NoError(t, err)
	t2, err := f.s.CreateBridgePort(tunnelAttrs(tunnel, br))
	require.NoError(t, err)
	assert.Equal([]sai.ObjectID{t1, t2}, f.s.TunnelBridgePorts(tunnel))
	assert.True(f.s.IsBridgeConnectedToTunnel(br, tunnel))
	assert.False(f.s.IsBridgeConnectedToTunnel(f.defaultBridge(t), tunnel))

	assertRefCounts(t, f)
}

func TestSubPortVlanConflict(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)
	f.init(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	require.NoError(t, f.db.Vlans.AddVlan(20))

	def := f.defaultBridgePortOf(f.ports[0])
	require.NoError(t, f.db.Vlans.AddVlanMember(10, def))

	_, err := f.s.CreateBridgePort(subPortAttrs(f.ports[0], 10, br))
	assert.Equal(sai.StatusFailure, sai.StatusOf(err))
	_, err = f.s.CreateBridgePort(subPortAttrs(f.ports[0], 20, br))
	assert.NoError(err)
}

func TestBridgePortOnLag(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)
	f.init(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	lag, _ := f.db.Lags.AddLag("po1", sai.NullObjectID)

	bp, err := f.s.AddDefaultBridgePort(lag)
	require.NoError(t, err)
	sub, err := f.s.CreateBridgePort(subPortAttrs(lag, 10, br))
	require.NoError(t, err)

	onLag, err := f.s.IsBridgePortOnLag(sub)
	assert.NoError(err)
	assert.True(onLag)
	onLag, err = f.s.IsBridgePortOnLag(f.defaultBridgePortOf(f.ports[0]))
	assert.NoError(err)
	assert.False(onLag)

	f.db.Lags.Lock()
	assert.Equal(bp, f.db.Lags.DefaultBridgePort(lag))
	f.db.Lags.Unlock()
	assert.Equal([]sai.ObjectID{bp, sub}, f.s.index.LagPorts.List(lag))
	assertRefCounts(t, f)

	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.db.Lags.RemoveLag(lag)))
	assert.NoError(f.s.RemoveBridgePort(sub))
	assert.NoError(f.s.RemoveBridgePort(bp))
	assert.Empty(f.s.index.LagPorts.List(lag))
	assert.NoError(f.db.Lags.RemoveLag(lag))
}

func TestRemoveBridgePortPreconditions(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)
	f.init(t)
	bp := f.defaultBridgePortOf(f.ports[0])

	require.NoError(t, f.s.SetBridgePortAttribute(bp, sai.BoolAttr(sai.BridgePortAttrAdminState, true)))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	require.NoError(t, f.s.SetBridgePortAttribute(bp, sai.BoolAttr(sai.BridgePortAttrAdminState, false)))

	member := sai.NewObjectID(sai.ObjectTypeVlanMember, 1)
	require.NoError(t, f.s.AddVlanMember(bp, member))
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(f.s.AddVlanMember(bp, member)))
	assert.Equal([]sai.ObjectID{member}, f.s.VlanMembers(bp))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	require.NoError(t, f.s.RemoveVlanMember(bp, member))

	stp := sai.NewObjectID(sai.ObjectTypeStpPort, 1)
	require.NoError(t, f.s.AddStpPort(bp, stp))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	require.NoError(t, f.s.RemoveStpPort(bp, stp))
	assert.Empty(f.s.StpPorts(bp))

	l2 := sai.NewObjectID(sai.ObjectTypeL2mcGroupMember, 1)
	require.NoError(t, f.s.AddL2mcMember(bp, l2))
	info, _ := f.s.BridgePortInfo(bp)
	assert.Equal(uint32(1), info.RefCount)
	require.NoError(t, f.s.RemoveL2mcMember(bp, l2))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(f.s.RemoveL2mcMember(bp, l2)))

	require.NoError(t, f.s.IncFdbCount(bp))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	require.NoError(t, f.s.DecFdbCount(bp))
	assert.Equal(sai.StatusFailure, sai.StatusOf(f.s.DecFdbCount(bp)))

	assert.NoError(f.s.RemoveBridgePort(bp))
	_, err := f.s.BridgePortInfo(bp)
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(err))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	assert.Equal(sai.StatusInvalidObjectType, sai.StatusOf(f.s.RemoveBridgePort(f.ports[0])))
	assertRefCounts(t, f)
}

func TestRefCountInvariant(t *testing.T) {
	f := newFixture(t, 4)
	f.init(t)
	br1 := f.create1D(t)
	br2 := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	require.NoError(t, f.db.Vlans.AddVlan(20))
	rif, _ := f.db.Rifs.AddRif("rif1", sai.NullObjectID)
	tunnel, _ := f.db.Tunnels.AddTunnel("vxlan1", sai.NullObjectID)

	var created []sai.ObjectID
	create := func(attrs []sai.Attribute) {
		id, err := f.s.CreateBridgePort(attrs)
		require.NoError(t, err)
		created = append(created, id)
		assertRefCounts(t, f)
	}
	create(subPortAttrs(f.ports[0], 10, br1))
	create(subPortAttrs(f.ports[0], 20, br2))
	create(subPortAttrs(f.ports[1], 10, br1))
	create(routerAttrs(sai.BridgePortType1DRouter, rif, br2))
	create(tunnelAttrs(tunnel, br1))
	create(tunnelAttrs(tunnel, br2))

	assert.Equal(t, sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridge(br1)))

	for _, id := range created {
		require.NoError(t, f.s.RemoveBridgePort(id))
		assertRefCounts(t, f)
	}
	for _, p := range f.ports[:2] {
		require.NoError(t, f.s.RemoveBridgePort(f.defaultBridgePortOf(p)))
		assertRefCounts(t, f)
	}
	assert.NoError(t, f.s.RemoveBridge(br1))
	assert.NoError(t, f.s.RemoveBridge(br2))
	assertRefCounts(t, f)
}

func TestBridgePortAttributes(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)
	f.init(t)
	bp := f.defaultBridgePortOf(f.ports[0])

	for _, attr := range []sai.Attribute{
		sai.S32Attr(sai.BridgePortAttrType, int32(sai.BridgePortTypeSubPort)),
		sai.OIDAttr(sai.BridgePortAttrPortID, f.ports[0]),
		sai.OIDAttr(sai.BridgePortAttrBridgeID, f.defaultBridge(t)),
	} {
		err := f.s.SetBridgePortAttribute(bp, attr)
		assert.Equal(sai.StatusInvalidAttribute, sai.StatusOf(err), sai.BridgePortAttrName(attr.ID))
		idx, ok := sai.AttrIndexOf(err)
		assert.True(ok)
		assert.Equal(0, idx)
	}

	require.NoError(t, f.s.SetBridgePortAttribute(bp, sai.S32Attr(sai.BridgePortAttrFdbLearningMode, int32(sai.FdbLearnModeDisable))))
	require.NoError(t, f.s.SetBridgePortAttribute(bp, sai.BoolAttr(sai.BridgePortAttrIngressFiltering, true)))

	attrs := []sai.Attribute{
		{ID: sai.BridgePortAttrType},
		{ID: sai.BridgePortAttrPortID},
		{ID: sai.BridgePortAttrFdbLearningMode},
		{ID: sai.BridgePortAttrIngressFiltering},
		{ID: sai.BridgePortAttrAdminState},
	}
	require.NoError(t, f.s.GetBridgePortAttribute(bp, attrs))
	assert.Equal(int32(sai.BridgePortTypePort), attrs[0].Value.S32)
	assert.Equal(f.ports[0], attrs[1].Value.OID)
	assert.Equal(int32(sai.FdbLearnModeDisable), attrs[2].Value.S32)
	assert.True(attrs[3].Value.Bool)
	assert.False(attrs[4].Value.Bool)

	err := f.s.GetBridgePortAttribute(bp, []sai.Attribute{{ID: sai.BridgePortAttrVlanID}})
	assert.Equal(sai.StatusInvalidAttribute, sai.StatusOf(err))

	_, err = f.s.GetBridgePortStats(bp, nil)
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(err))
	counters, err := f.s.GetBridgePortStats(bp, []sai.BridgePortStat{sai.BridgePortStatInOctets, sai.BridgePortStatOutOctets})
	assert.NoError(err)
	assert.Len(counters, 2)
	assert.NoError(f.s.ClearBridgePortStats(bp, []sai.BridgePortStat{sai.BridgePortStatInOctets}))
}

func TestDuplicateSetSingleBackendCall(t *testing.T) {
	assert := assert.New(t)
	be := newMockBackend()
	f := newFixture(t, 1, BackendOption(be))
	f.init(t)
	bp := f.defaultBridgePortOf(f.ports[0])
	br := f.create1D(t)

	admin := sai.BoolAttr(sai.BridgePortAttrAdminState, true)
	be.On("SetBridgePortAttribute", bp, admin).Return(nil).Once()
	assert.NoError(f.s.SetBridgePortAttribute(bp, admin))
	assert.NoError(f.s.SetBridgePortAttribute(bp, admin))
	be.AssertNumberOfCalls(t, "SetBridgePortAttribute", 1)

	ctrl := sai.S32Attr(sai.BridgeAttrBroadcastFloodControlType, int32(sai.FloodControlNone))
	be.On("SetBridgeAttribute", br, ctrl).Return(nil).Once()
	assert.NoError(f.s.SetBridgeAttribute(br, ctrl))
	assert.NoError(f.s.SetBridgeAttribute(br, ctrl))
	be.AssertNumberOfCalls(t, "SetBridgeAttribute", 1)
	be.AssertExpectations(t)
}

func TestSetAttributeBackendFailure(t *testing.T) {
	assert := assert.New(t)
	be := newMockBackend()
	f := newFixture(t, 1, BackendOption(be))
	f.init(t)
	bp := f.defaultBridgePortOf(f.ports[0])

	admin := sai.BoolAttr(sai.BridgePortAttrAdminState, true)
	be.On("SetBridgePortAttribute", bp, admin).Return(sai.NewError(sai.StatusFailure, "hw")).Once()
	assert.Equal(sai.StatusFailure, sai.StatusOf(f.s.SetBridgePortAttribute(bp, admin)))
	up, err := f.s.AdminState(bp)
	assert.NoError(err)
	assert.False(up)
}

func TestCreateBridgePortRollback(t *testing.T) {
	assert := assert.New(t)
	db := switchdb.New()
	ports := &failingPorts{Ports: db.Ports}
	f := newFixtureWithDB(t, db, 0, PortModuleOption(ports))
	f.init(t)
	def := f.defaultBridge(t)

	p, err := db.Ports.AddPort("eth9", sai.NullObjectID)
	require.NoError(t, err)
	ports.failSetDefault = true
	removes := f.be.Calls(virtual.OpRemoveBridgePort)

	_, err = f.s.CreateBridgePort(portAttrs(p))
	assert.Equal(sai.StatusFailure, sai.StatusOf(err))
	assert.Equal(0, f.s.BridgePortCount())
	assert.Equal(removes+1, f.be.Calls(virtual.OpRemoveBridgePort))
	b, _ := f.s.BridgeInfo(def)
	assert.Equal(uint32(0), b.RefCount)
	assert.Empty(f.s.BridgePortsOf(def))
	db.Ports.Lock()
	assert.Equal(uint32(0), db.Ports.RefCount(p))
	db.Ports.Unlock()
}

func TestRemoveBridgePortRollback(t *testing.T) {
	assert := assert.New(t)
	db := switchdb.New()
	ports := &failingPorts{Ports: db.Ports}
	f := newFixtureWithDB(t, db, 0, PortModuleOption(ports))
	f.init(t)

	p, _ := db.Ports.AddPort("eth9", sai.NullObjectID)
	bp, err := f.s.CreateBridgePort(portAttrs(p))
	require.NoError(t, err)

	ports.failSetDefault = true
	creates := f.be.Calls(virtual.OpCreateBridgePort)
	assert.Equal(sai.StatusFailure, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	assert.Equal(creates+1, f.be.Calls(virtual.OpCreateBridgePort))
	info, err := f.s.BridgePortInfo(bp)
	require.NoError(t, err)
	assert.Equal(bp, info.ID)
	assertRefCounts(t, f)
	assert.Zero(f.logger.Count("error"))

	// the backend cannot hand the same id back
	f.be.ReissueDifferentID = true
	assert.Equal(sai.StatusFailure, sai.StatusOf(f.s.RemoveBridgePort(bp)))
	assert.True(f.logger.Contains("error", "backend reissued a different bridge port id"))
	assert.True(f.logger.Contains("error", "rollback failed"))

	f.be.ReissueDifferentID = false
	ports.failSetDefault = false
}

func TestScenarioAdminStateBlocksRemove(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)

	p1, err := f.db.Ports.AddPort("eth1", sai.NullObjectID)
	require.NoError(t, err)
	bp1, err := f.s.CreateBridgePort(portAttrs(p1))
	require.NoError(t, err)
	assert.Equal(bp1, f.defaultBridgePortOf(p1))

	require.NoError(t, f.s.SetBridgePortAttribute(bp1, sai.BoolAttr(sai.BridgePortAttrAdminState, true)))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(f.s.RemoveBridgePort(bp1)))
	require.NoError(t, f.s.SetBridgePortAttribute(bp1, sai.BoolAttr(sai.BridgePortAttrAdminState, false)))
	assert.NoError(f.s.RemoveBridgePort(bp1))
	assert.Equal(sai.NullObjectID, f.defaultBridgePortOf(p1))
}

func TestScenarioDuplicateSubPort(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 2)
	f.init(t)
	p2 := f.ports[1]
	require.NoError(t, f.db.Vlans.AddVlan(10))

	br1 := f.create1D(t)
	bp2, err := f.s.CreateBridgePort(subPortAttrs(p2, 10, br1))
	require.NoError(t, err)
	_, err = f.s.CreateBridgePort(subPortAttrs(p2, 10, br1))
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))

	info, err := f.s.BridgePortInfo(bp2)
	require.NoError(t, err)
	assert.Equal(table.SubPortAttachment{Port: p2, Vlan: 10}, info.Attachment)
	assert.Equal(br1, info.BridgeID)
	assert.Equal([]sai.ObjectID{bp2}, f.s.BridgePortsOf(br1))
	b, _ := f.s.BridgeInfo(br1)
	assert.Equal(uint32(1), b.RefCount)
}
