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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/backend/virtual"
	"github.com/osrg/gosai/pkg/sai"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []*BridgePortEvent
}

func (r *eventRecorder) record(ev *BridgePortEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) ofType(t BridgePortEventType) []*BridgePortEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var l []*BridgePortEvent
	for _, ev := range r.events {
		if ev.Type == t {
			l = append(l, ev)
		}
	}
	return l
}

func TestRegisterBridgePortEvent(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)

	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(f.s.RegisterBridgePortEvent(sai.ModuleMax, sai.AllBridgePortTypes, nil)))
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(f.s.RegisterBridgePortEvent(sai.ModuleStp, 1<<20, nil)))

	first, second := &eventRecorder{}, &eventRecorder{}
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleStp, sai.AllBridgePortTypes, first.record))
	// a later registration replaces the earlier one
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleStp, sai.BridgePortTypePort.Bit(), second.record))

	f.init(t)
	assert.Empty(first.events)
	assert.Len(second.ofType(BridgePortEventInitCreate), 1)

	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleStp, 0, nil))
	require.NoError(t, f.s.RemoveBridgePort(f.defaultBridgePortOf(f.ports[0])))
	assert.Empty(second.ofType(BridgePortEventRemove))
}

func TestNotifyByKind(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 1)
	f.init(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	tunnel, _ := f.db.Tunnels.AddTunnel("vxlan1", sai.NullObjectID)

	subs, tunnels := &eventRecorder{}, &eventRecorder{}
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleVlan, sai.BridgePortTypeSubPort.Bit(), subs.record))
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleTunnel, sai.BridgePortTypeTunnel.Bit(), tunnels.record))

	sub, err := f.s.CreateBridgePort(subPortAttrs(f.ports[0], 10, br))
	require.NoError(t, err)
	tun, err := f.s.CreateBridgePort(tunnelAttrs(tunnel, br))
	require.NoError(t, err)
	require.NoError(t, f.s.RemoveBridgePort(sub))

	created := subs.ofType(BridgePortEventCreate)
	require.Len(t, created, 1)
	assert.Equal(sub, created[0].BridgePort.ID)
	assert.Equal(uint16(10), created[0].BridgePort.VlanID())
	removed := subs.ofType(BridgePortEventRemove)
	require.Len(t, removed, 1)
	assert.Equal(sub, removed[0].BridgePort.ID)

	require.Len(t, tunnels.events, 1)
	assert.Equal(tun, tunnels.events[0].BridgePort.ID)
	assert.Equal(tunnel, tunnels.events[0].BridgePort.TunnelID())
}

func TestSubscriberFailureIsLogged(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleFdb, sai.AllBridgePortTypes, func(*BridgePortEvent) error {
		return errors.New("subscriber is busy")
	}))

	p, _ := f.db.Ports.AddPort("eth1", sai.NullObjectID)
	bp, err := f.s.AddDefaultBridgePort(p)
	assert.NoError(err)
	_, err = f.s.BridgePortInfo(bp)
	assert.NoError(err)
	assert.True(f.logger.Contains("warn", "bridge port event subscriber failed"))
}

func TestNotifyAfterLocksReleased(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleVlan, sai.AllBridgePortTypes, func(ev *BridgePortEvent) error {
		// a subscriber may call back into the bridge server
		_, err := f.s.BridgePortInfo(ev.BridgePort.ID)
		if ev.Type == BridgePortEventRemove {
			assert.Equal(t, sai.StatusItemNotFound, sai.StatusOf(err))
			return nil
		}
		return err
	}))
	f.init(t)
	require.NoError(t, f.s.RemoveBridgePort(f.defaultBridgePortOf(f.ports[0])))
	assert.Zero(t, f.logger.Count("warn"))
}

// lagFixture builds a LAG over two member ports with a Port bridge port and
// two sub-ports attached to it.
func lagFixture(t *testing.T, f *fixture) (sai.ObjectID, []sai.ObjectID) {
	t.Helper()
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	require.NoError(t, f.db.Vlans.AddVlan(20))
	lag, err := f.db.Lags.AddLag("po1", sai.NullObjectID)
	require.NoError(t, err)

	var bps []sai.ObjectID
	bp, err := f.s.AddDefaultBridgePort(lag)
	require.NoError(t, err)
	bps = append(bps, bp)
	for _, vlan := range []uint16{10, 20} {
		bp, err := f.s.CreateBridgePort(subPortAttrs(lag, vlan, br))
		require.NoError(t, err)
		bps = append(bps, bp)
	}
	return lag, bps
}

func TestLagCascade(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)
	lag, bps := lagFixture(t, f)
	p1, _ := f.db.Ports.AddPort("eth1", sai.NullObjectID)
	p2, _ := f.db.Ports.AddPort("eth2", sai.NullObjectID)

	subs := &eventRecorder{}
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleStp, sai.BridgePortTypeSubPort.Bit(), subs.record))
	all := &eventRecorder{}
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleVlan, sai.AllBridgePortTypes, all.record))

	require.NoError(t, f.db.Lags.AddMembers(lag, p1, p2))
	assert.Equal(len(bps), f.be.Calls(virtual.OpLagHandler))

	mods := subs.ofType(BridgePortEventLagModify)
	require.Len(t, mods, 2)
	for _, ev := range mods {
		assert.Equal(sai.BridgePortTypeSubPort, ev.BridgePort.Type)
		assert.Equal(lag, ev.Lag)
		assert.True(ev.Add)
		assert.Equal([]sai.ObjectID{p1, p2}, ev.Ports)
	}
	assert.Len(all.ofType(BridgePortEventLagModify), 3)

	require.NoError(t, f.db.Lags.RemoveMembers(lag, p2))
	mods = subs.ofType(BridgePortEventLagModify)
	require.Len(t, mods, 4)
	for _, ev := range mods[2:] {
		assert.False(ev.Add)
		assert.Equal([]sai.ObjectID{p2}, ev.Ports)
	}

	// operations other than membership changes are ignored
	assert.NoError(f.s.HandleLagMembership(lag, sai.LagOperationCreate, nil))
	assert.Len(subs.events, 4)
}

func TestLagModifySnapshot(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)
	lag, bps := lagFixture(t, f)
	p1, _ := f.db.Ports.AddPort("eth1", sai.NullObjectID)
	require.NoError(t, f.s.SetBridgePortAttribute(bps[0], sai.BoolAttr(sai.BridgePortAttrAdminState, true)))

	// everything a subscriber needs is in the event; it never calls back
	seen := make(map[sai.ObjectID]table.BridgePort)
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleStp, sai.AllBridgePortTypes, func(ev *BridgePortEvent) error {
		if ev.Type == BridgePortEventLagModify {
			seen[ev.BridgePort.ID] = ev.BridgePort
		}
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- f.db.Lags.AddMembers(lag, p1) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lag membership change did not return")
	}

	require.Len(t, seen, len(bps))
	for id, snap := range seen {
		info, err := f.s.BridgePortInfo(id)
		require.NoError(t, err)
		assert.Equal(info, snap)
		assert.True(snap.IsOnLag())
	}
	first := seen[bps[0]]
	assert.True(first.AdminState)
	assert.Equal(lag, first.PortID())
}

func TestLagCascadeWithoutBridgePorts(t *testing.T) {
	f := newFixture(t, 0)
	f.init(t)
	lag, _ := f.db.Lags.AddLag("po1", sai.NullObjectID)
	p1, _ := f.db.Ports.AddPort("eth1", sai.NullObjectID)
	all := &eventRecorder{}
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleVlan, sai.AllBridgePortTypes, all.record))

	require.NoError(t, f.db.Lags.AddMembers(lag, p1))
	assert.Zero(t, f.be.Calls(virtual.OpLagHandler))
	assert.Empty(t, all.events)
}

func TestLagCascadeBackendFailure(t *testing.T) {
	assert := assert.New(t)
	be := newMockBackend()
	f := newFixture(t, 0, BackendOption(be))
	f.init(t)
	lag, bps := lagFixture(t, f)
	p1, _ := f.db.Ports.AddPort("eth1", sai.NullObjectID)
	all := &eventRecorder{}
	require.NoError(t, f.s.RegisterBridgePortEvent(sai.ModuleVlan, sai.AllBridgePortTypes, all.record))

	errHw := sai.NewError(sai.StatusFailure, "hw")
	be.On("LagHandler", bps[0], lag, true, mock.Anything).Return(nil).Once()
	be.On("LagHandler", bps[1], lag, true, mock.Anything).Return(errHw).Once()

	err := f.db.Lags.AddMembers(lag, p1)
	assert.Equal(sai.StatusFailure, sai.StatusOf(err))
	be.AssertNumberOfCalls(t, "LagHandler", 2)
	assert.Empty(all.events)
	assert.True(f.logger.Contains("error", "backend failed to apply lag membership"))
}

func TestWatcher(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, 0)
	f.init(t)
	br := f.create1D(t)
	require.NoError(t, f.db.Vlans.AddVlan(10))
	p1, _ := f.db.Ports.AddPort("eth1", sai.NullObjectID)

	_, err := f.s.Watch(0)
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(err))

	w, err := f.s.Watch(sai.BridgePortTypeSubPort.Bit())
	require.NoError(t, err)
	other, err := f.s.Watch(sai.AllBridgePortTypes)
	require.NoError(t, err)
	assert.NotEqual(w.ID(), other.ID())

	_, err = f.s.AddDefaultBridgePort(p1)
	require.NoError(t, err)
	sub, err := f.s.CreateBridgePort(subPortAttrs(p1, 10, br))
	require.NoError(t, err)

	next := func(w *Watcher) *BridgePortEvent {
		select {
		case ev := <-w.Event():
			return ev
		case <-time.After(5 * time.Second):
			t.Fatal("no event")
		}
		return nil
	}

	ev := next(w)
	assert.Equal(BridgePortEventCreate, ev.Type)
	assert.Equal(sub, ev.BridgePort.ID)

	assert.Equal(sai.BridgePortTypePort, next(other).BridgePort.Type)
	assert.Equal(sai.BridgePortTypeSubPort, next(other).BridgePort.Type)

	w.Stop()
	w.Stop()
	other.Stop()
	f.s.subMu.RLock()
	assert.Nil(f.s.subscribers[sai.ModuleApi].cb)
	f.s.subMu.RUnlock()
}
