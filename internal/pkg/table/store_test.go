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

package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osrg/gosai/pkg/sai"
)

func bridgeID(seq uint64) sai.ObjectID {
	return sai.NewObjectID(sai.ObjectTypeBridge, seq)
}

func TestStoreReadWrite(t *testing.T) {
	assert := assert.New(t)
	s := NewStore((*Bridge).Clone)

	b := NewDefaultBridge(0)
	b.ID = bridgeID(1)
	s.Write(b.ID, b)
	assert.True(s.Exists(b.ID))
	assert.Equal(1, s.Count())

	got, err := s.Read(b.ID)
	require.NoError(t, err)
	assert.Equal(b, got)

	_, err = s.Read(bridgeID(2))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(err))

	assert.NoError(s.Delete(b.ID))
	assert.False(s.Exists(b.ID))
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(s.Delete(b.ID)))
}

func TestStoreCopyOut(t *testing.T) {
	assert := assert.New(t)
	s := NewStore((*Bridge).Clone)

	b := NewDefaultBridge(0)
	b.ID = bridgeID(1)
	s.Write(b.ID, b)

	// mutating the written record or a read copy must not leak in
	b.RefCount = 10
	got, _ := s.Read(b.ID)
	assert.Equal(uint32(0), got.RefCount)
	got.RefCount = 20
	again, _ := s.Read(b.ID)
	assert.Equal(uint32(0), again.RefCount)

	// grow the map; earlier copies stay valid
	for i := uint64(2); i < 1000; i++ {
		n := NewDefaultBridge(0)
		n.ID = bridgeID(i)
		s.Write(n.ID, n)
	}
	assert.Equal(uint32(20), got.RefCount)
	assert.Equal(999, s.Count())
}

func TestStoreUpdate(t *testing.T) {
	assert := assert.New(t)
	s := NewStore((*Bridge).Clone)

	b := NewDefaultBridge(0)
	b.ID = bridgeID(1)
	s.Write(b.ID, b)

	assert.NoError(s.Update(b.ID, func(v *Bridge) error {
		v.RefCount++
		return nil
	}))
	got, _ := s.Read(b.ID)
	assert.Equal(uint32(1), got.RefCount)

	errFail := errors.New("fail")
	assert.Equal(errFail, s.Update(b.ID, func(v *Bridge) error {
		v.RefCount = 100
		return errFail
	}))
	got, _ = s.Read(b.ID)
	assert.Equal(uint32(1), got.RefCount)

	err := s.Update(bridgeID(9), func(v *Bridge) error { return nil })
	assert.Equal(sai.StatusItemNotFound, sai.StatusOf(err))
}

func TestStoreList(t *testing.T) {
	assert := assert.New(t)
	s := NewStore((*Bridge).Clone)
	for _, i := range []uint64{3, 1, 2} {
		b := NewDefaultBridge(0)
		b.ID = bridgeID(i)
		s.Write(b.ID, b)
	}

	_, err := s.List(2)
	assert.Equal(sai.StatusBufferOverflow, sai.StatusOf(err))
	assert.Equal(3, sai.RequiredOf(err))

	ids, err := s.List(3)
	assert.NoError(err)
	assert.Equal([]sai.ObjectID{bridgeID(1), bridgeID(2), bridgeID(3)}, ids)

	var walked []sai.ObjectID
	s.Walk(func(id sai.ObjectID, b *Bridge) bool {
		walked = append(walked, id)
		return len(walked) < 2
	})
	assert.Equal([]sai.ObjectID{bridgeID(1), bridgeID(2)}, walked)
}

func TestDefaultRecords(t *testing.T) {
	assert := assert.New(t)

	b := NewDefaultBridge(1)
	assert.Equal(sai.BridgeType1Q, b.Type)
	for i := sai.FloodType(0); i < sai.FloodTypeMax; i++ {
		assert.Equal(sai.FloodControlSubPorts, b.FloodControl[i])
		assert.Equal(sai.NullObjectID, b.FloodGroup[i])
	}
	assert.Empty(b.AttachedFloodGroups())

	bp := NewDefaultBridgePort(1)
	assert.Equal(sai.FdbLearnModeHw, bp.FdbLearnMode)
	assert.Equal(sai.PacketActionDrop, bp.LearnLimitViolationAction)
	assert.Equal(sai.TaggingModeTagged, bp.TaggingMode)
	assert.False(bp.AdminState)
	assert.False(bp.IngressFiltering)
	assert.False(bp.EgressFiltering)
}

func TestBridgeAttrValue(t *testing.T) {
	assert := assert.New(t)

	b := NewDefaultBridge(0)
	group := sai.NewObjectID(sai.ObjectTypeL2mcGroup, 1)

	attr := sai.OIDAttr(sai.BridgeAttrBroadcastFloodGroup, group)
	assert.False(b.IsDuplicate(&attr))
	assert.True(b.Apply(&attr))
	assert.True(b.IsDuplicate(&attr))
	assert.Equal(group, b.FloodGroup[sai.FloodTypeBroadcast])
	assert.Equal(sai.NullObjectID, b.FloodGroup[sai.FloodTypeUnknownUnicast])
	assert.Equal([]sai.ObjectID{group}, b.AttachedFloodGroups())

	ctrl := sai.S32Attr(sai.BridgeAttrUnknownMulticastFloodControlType, int32(sai.FloodControlL2mcGroup))
	assert.True(b.Apply(&ctrl))
	get := sai.Attribute{ID: sai.BridgeAttrUnknownMulticastFloodControlType}
	assert.True(b.AttrValue(&get))
	assert.Equal(int32(sai.FloodControlL2mcGroup), get.Value.S32)
	get = sai.Attribute{ID: sai.BridgeAttrBroadcastFloodControlType}
	assert.True(b.AttrValue(&get))
	assert.Equal(int32(sai.FloodControlSubPorts), get.Value.S32)

	typ := sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1D))
	assert.False(b.Apply(&typ))
	get = sai.Attribute{ID: sai.BridgeAttrPortList}
	assert.False(b.AttrValue(&get))
}

func TestBridgePortAttachment(t *testing.T) {
	assert := assert.New(t)

	port := sai.NewObjectID(sai.ObjectTypePort, 1)
	lag := sai.NewObjectID(sai.ObjectTypeLag, 1)
	rif := sai.NewObjectID(sai.ObjectTypeRouterInterface, 1)
	tunnel := sai.NewObjectID(sai.ObjectTypeTunnel, 1)

	bp := NewDefaultBridgePort(0)
	bp.Attachment = PortAttachment{Port: port}
	assert.Equal(port, bp.PortID())
	assert.Equal(uint16(0), bp.VlanID())
	assert.False(bp.IsOnLag())

	bp.Type = sai.BridgePortTypeSubPort
	bp.Attachment = SubPortAttachment{Port: lag, Vlan: 10}
	assert.Equal(lag, bp.PortID())
	assert.Equal(uint16(10), bp.VlanID())
	assert.True(bp.IsOnLag())
	assert.Equal(sai.NullObjectID, bp.RifID())

	bp.Type = sai.BridgePortType1DRouter
	bp.Attachment = RouterAttachment{Rif: rif}
	assert.Equal(rif, bp.RifID())
	assert.Equal(sai.NullObjectID, bp.PortID())

	bp.Type = sai.BridgePortTypeTunnel
	bp.Attachment = TunnelAttachment{Tunnel: tunnel}
	assert.Equal(tunnel, bp.TunnelID())

	assert.IsType(PortAttachment{}, NewAttachment(sai.BridgePortTypePort))
	assert.IsType(RouterAttachment{}, NewAttachment(sai.BridgePortType1QRouter))
	assert.Nil(NewAttachment(sai.BridgePortType(42)))
}

func TestBridgePortImmutableAttrs(t *testing.T) {
	assert := assert.New(t)
	bp := NewDefaultBridgePort(0)

	for _, id := range []uint32{
		sai.BridgePortAttrType,
		sai.BridgePortAttrPortID,
		sai.BridgePortAttrVlanID,
		sai.BridgePortAttrRifID,
		sai.BridgePortAttrTunnelID,
		sai.BridgePortAttrBridgeID,
	} {
		attr := sai.Attribute{ID: id}
		assert.False(bp.Apply(&attr), sai.BridgePortAttrName(id))
		assert.False(bp.IsDuplicate(&attr), sai.BridgePortAttrName(id))
	}

	admin := sai.BoolAttr(sai.BridgePortAttrAdminState, true)
	assert.False(bp.IsDuplicate(&admin))
	assert.True(bp.Apply(&admin))
	assert.True(bp.AdminState)
	assert.True(bp.IsDuplicate(&admin))
}
