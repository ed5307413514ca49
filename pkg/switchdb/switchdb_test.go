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

package switchdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osrg/gosai/pkg/sai"
)

func TestPorts(t *testing.T) {
	assert := assert.New(t)
	db := New()

	p1, err := db.Ports.AddPort("eth1", sai.NullObjectID)
	require.NoError(t, err)
	assert.Equal(sai.NewObjectID(sai.ObjectTypePort, 1), p1)
	p5, err := db.Ports.AddPort("eth5", sai.NewObjectID(sai.ObjectTypePort, 5))
	require.NoError(t, err)

	_, err = db.Ports.AddPort("eth1", sai.NullObjectID)
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))
	_, err = db.Ports.AddPort("x", p5)
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(err))
	_, err = db.Ports.AddPort("y", sai.NewObjectID(sai.ObjectTypeLag, 1))
	assert.Equal(sai.StatusInvalidObjectType, sai.StatusOf(err))

	db.Ports.Lock()
	assert.Equal([]sai.ObjectID{p1, p5}, db.Ports.ValidPorts())
	assert.True(db.Ports.IsValid(p1))
	assert.NoError(db.Ports.IncRef(p1))
	assert.Equal(uint32(1), db.Ports.RefCount(p1))
	db.Ports.Unlock()

	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(db.Ports.RemovePort(p1)))

	db.Ports.Lock()
	assert.NoError(db.Ports.DecRef(p1))
	assert.Equal(sai.StatusFailure, sai.StatusOf(db.Ports.DecRef(p1)))
	db.Ports.Unlock()

	assert.NoError(db.Ports.RemovePort(p1))
	_, ok := db.ByName("eth1")
	assert.False(ok)
	id, ok := db.ByName("eth5")
	assert.True(ok)
	assert.Equal(p5, id)
}

func TestLagMembership(t *testing.T) {
	assert := assert.New(t)
	db := New()
	p1, _ := db.Ports.AddPort("eth1", sai.NullObjectID)
	p2, _ := db.Ports.AddPort("eth2", sai.NullObjectID)

	type call struct {
		lag   sai.ObjectID
		op    sai.LagOperation
		ports []sai.ObjectID
	}
	var calls []call
	db.Lags.RegisterMembershipHandler(func(lag sai.ObjectID, op sai.LagOperation, ports []sai.ObjectID) error {
		// the LAG lock must be free while the handler runs
		db.Lags.Lock()
		db.Lags.Unlock()
		calls = append(calls, call{lag, op, ports})
		return nil
	})

	lag, err := db.Lags.AddLag("po1", sai.NullObjectID)
	require.NoError(t, err)
	require.NoError(t, db.Lags.AddMembers(lag, p1, p2))
	require.NoError(t, db.Lags.AddMembers(lag, p1))
	require.NoError(t, db.Lags.RemoveMembers(lag, p2))

	assert.Equal([]call{
		{lag, sai.LagOperationCreate, nil},
		{lag, sai.LagOperationAddPorts, []sai.ObjectID{p1, p2}},
		{lag, sai.LagOperationDelPorts, []sai.ObjectID{p2}},
	}, calls)

	db.Ports.Lock()
	assert.True(db.Ports.IsLagMember(p1))
	assert.False(db.Ports.IsLagMember(p2))
	db.Ports.Unlock()

	db.Lags.Lock()
	assert.Equal([]sai.ObjectID{p1}, db.Lags.Members(lag))
	db.Lags.Unlock()

	other, _ := db.Lags.AddLag("po2", sai.NullObjectID)
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(db.Lags.AddMembers(other, p1)))
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(db.Lags.AddMembers(other, sai.NewObjectID(sai.ObjectTypePort, 99))))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(db.Ports.RemovePort(p1)))
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(db.Lags.RemoveLag(lag)))

	require.NoError(t, db.Lags.RemoveMembers(lag, p1))
	assert.NoError(db.Lags.RemoveLag(lag))
}

func TestDefaultBridgePortCell(t *testing.T) {
	assert := assert.New(t)
	db := New()
	p1, _ := db.Ports.AddPort("eth1", sai.NullObjectID)
	bp := sai.NewObjectID(sai.ObjectTypeBridgePort, 1)

	db.Ports.Lock()
	assert.Equal(sai.NullObjectID, db.Ports.DefaultBridgePort(p1))
	assert.NoError(db.Ports.SetDefaultBridgePort(p1, bp))
	assert.Equal(bp, db.Ports.DefaultBridgePort(p1))
	db.Ports.Unlock()
	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(db.Ports.RemovePort(p1)))

	rif, _ := db.Rifs.AddRif("rif1", sai.NullObjectID)
	db.Rifs.Lock()
	assert.NoError(db.Rifs.SetAttachedBridgePort(rif, bp))
	assert.Equal(bp, db.Rifs.AttachedBridgePort(rif))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(db.Rifs.SetAttachedBridgePort(sai.NewObjectID(sai.ObjectTypeRouterInterface, 9), bp)))
	db.Rifs.Unlock()
}

func TestVlans(t *testing.T) {
	assert := assert.New(t)
	db := New()
	bp := sai.NewObjectID(sai.ObjectTypeBridgePort, 1)

	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(db.Vlans.AddVlan(0)))
	assert.Equal(sai.StatusInvalidParameter, sai.StatusOf(db.Vlans.AddVlan(4095)))
	assert.NoError(db.Vlans.AddVlan(10))
	assert.Equal(sai.StatusItemAlreadyExists, sai.StatusOf(db.Vlans.AddVlan(10)))
	assert.NoError(db.Vlans.AddVlanMember(10, bp))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(db.Vlans.AddVlanMember(20, bp)))

	db.Vlans.Lock()
	assert.True(db.Vlans.IsVlanValid(10))
	assert.False(db.Vlans.IsVlanValid(20))
	assert.True(db.Vlans.IsMember(10, bp))
	db.Vlans.Unlock()

	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(db.Vlans.RemoveVlan(10)))
	assert.NoError(db.Vlans.RemoveVlanMember(10, bp))
	assert.NoError(db.Vlans.RemoveVlan(10))
}

func TestL2mc(t *testing.T) {
	assert := assert.New(t)
	db := New()
	group, err := db.L2mc.AddGroup("flood", sai.NullObjectID)
	require.NoError(t, err)
	br := sai.NewObjectID(sai.ObjectTypeBridge, 1)

	db.L2mc.Lock()
	assert.NoError(db.L2mc.AddBridge(group, br))
	assert.NoError(db.L2mc.AddBridge(group, br))
	assert.Equal([]sai.ObjectID{br}, db.L2mc.Bridges(group))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(db.L2mc.AddBridge(sai.NewObjectID(sai.ObjectTypeL2mcGroup, 9), br)))
	db.L2mc.Unlock()

	assert.Equal(sai.StatusObjectInUse, sai.StatusOf(db.L2mc.RemoveGroup(group)))

	db.L2mc.Lock()
	assert.NoError(db.L2mc.RemoveBridge(group, br))
	assert.Equal([]sai.ObjectID{br}, db.L2mc.Bridges(group))
	assert.NoError(db.L2mc.RemoveBridge(group, br))
	assert.Empty(db.L2mc.Bridges(group))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(db.L2mc.RemoveBridge(group, br)))
	db.L2mc.Unlock()

	assert.NoError(db.L2mc.RemoveGroup(group))
}
