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

package virtual

import (
	"github.com/osrg/gosai/pkg/backend"
	"github.com/osrg/gosai/pkg/sai"
)

// attr builds one capability row. The flag order is mandatory on create,
// valid for create, set and get, implemented, supported.
func attr(id uint32, mc, vc, vs, vg, imp, sup bool) backend.AttrCapability {
	return backend.AttrCapability{
		ID:                id,
		MandatoryOnCreate: mc,
		ValidForCreate:    vc,
		ValidForSet:       vs,
		ValidForGet:       vg,
		Implemented:       imp,
		Supported:         sup,
	}
}

const (
	y = true
	n = false
)

var subPortAttrTable = backend.AttrTable{
	attr(sai.BridgePortAttrType, y, y, n, y, y, y),
	attr(sai.BridgePortAttrPortID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrTaggingMode, n, y, y, y, y, y),
	attr(sai.BridgePortAttrVlanID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrRifID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrTunnelID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrBridgeID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrFdbLearningMode, n, y, y, y, y, y),
	attr(sai.BridgePortAttrMaxLearnedAddresses, n, y, y, y, n, n),
	attr(sai.BridgePortAttrFdbLearningLimitViolationPacketAction, n, y, y, y, n, n),
	attr(sai.BridgePortAttrAdminState, n, y, y, y, y, y),
	attr(sai.BridgePortAttrIngressFiltering, n, y, y, y, y, n),
	attr(sai.BridgePortAttrEgressFiltering, n, y, y, y, y, n),
	attr(sai.BridgePortAttrIngressSplitHorizonID, n, y, y, y, y, y),
	attr(sai.BridgePortAttrEgressSplitHorizonID, n, y, y, y, y, y),
}

var portAttrTable = backend.AttrTable{
	attr(sai.BridgePortAttrType, y, y, n, y, y, y),
	attr(sai.BridgePortAttrPortID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrTaggingMode, n, n, n, n, y, y),
	attr(sai.BridgePortAttrVlanID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrRifID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrTunnelID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrBridgeID, n, y, n, y, y, y),
	attr(sai.BridgePortAttrFdbLearningMode, n, y, y, y, y, y),
	attr(sai.BridgePortAttrMaxLearnedAddresses, n, y, y, y, n, n),
	attr(sai.BridgePortAttrFdbLearningLimitViolationPacketAction, n, y, y, y, n, n),
	attr(sai.BridgePortAttrAdminState, n, y, y, y, y, y),
	attr(sai.BridgePortAttrIngressFiltering, n, y, y, y, y, y),
	attr(sai.BridgePortAttrEgressFiltering, n, y, y, y, y, y),
}

var tunnelAttrTable = backend.AttrTable{
	attr(sai.BridgePortAttrType, y, y, n, y, y, y),
	attr(sai.BridgePortAttrPortID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrTaggingMode, n, n, n, n, y, y),
	attr(sai.BridgePortAttrVlanID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrRifID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrTunnelID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrBridgeID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrFdbLearningMode, n, y, y, y, y, y),
	attr(sai.BridgePortAttrMaxLearnedAddresses, n, y, y, y, n, n),
	attr(sai.BridgePortAttrFdbLearningLimitViolationPacketAction, n, y, y, y, n, n),
	attr(sai.BridgePortAttrAdminState, n, y, y, y, y, y),
	attr(sai.BridgePortAttrIngressFiltering, n, y, y, y, y, n),
	attr(sai.BridgePortAttrEgressFiltering, n, y, y, y, y, n),
	attr(sai.BridgePortAttrIngressSplitHorizonID, n, y, y, y, y, y),
	attr(sai.BridgePortAttrEgressSplitHorizonID, n, y, y, y, y, y),
}

var router1DAttrTable = backend.AttrTable{
	attr(sai.BridgePortAttrType, y, y, n, y, y, y),
	attr(sai.BridgePortAttrPortID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrTaggingMode, n, n, n, n, y, y),
	attr(sai.BridgePortAttrVlanID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrRifID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrTunnelID, n, n, n, n, y, y),
	attr(sai.BridgePortAttrBridgeID, y, y, n, y, y, y),
	attr(sai.BridgePortAttrFdbLearningMode, n, y, y, y, y, y),
	attr(sai.BridgePortAttrMaxLearnedAddresses, n, y, y, y, n, n),
	attr(sai.BridgePortAttrFdbLearningLimitViolationPacketAction, n, y, y, y, n, n),
	attr(sai.BridgePortAttrAdminState, n, y, y, y, y, y),
	attr(sai.BridgePortAttrIngressFiltering, n, y, y, y, y, n),
	attr(sai.BridgePortAttrEgressFiltering, n, y, y, y, y, n),
	attr(sai.BridgePortAttrIngressSplitHorizonID, n, y, y, y, y, y),
	attr(sai.BridgePortAttrEgressSplitHorizonID, n, y, y, y, y, y),
}

var bridge1QAttrTable = backend.AttrTable{
	attr(sai.BridgeAttrType, y, y, n, y, y, y),
	attr(sai.BridgeAttrPortList, n, n, n, y, y, y),
	attr(sai.BridgeAttrMaxLearnedAddresses, n, y, y, y, y, n),
	attr(sai.BridgeAttrLearnDisable, n, y, y, y, y, n),
	attr(sai.BridgeAttrUnknownUnicastFloodControlType, n, n, n, n, y, n),
	attr(sai.BridgeAttrUnknownUnicastFloodGroup, n, n, n, n, y, n),
	attr(sai.BridgeAttrUnknownMulticastFloodControlType, n, n, n, n, y, n),
	attr(sai.BridgeAttrUnknownMulticastFloodGroup, n, n, n, n, y, n),
	attr(sai.BridgeAttrBroadcastFloodControlType, n, n, n, n, y, n),
	attr(sai.BridgeAttrBroadcastFloodGroup, n, n, n, n, y, n),
}

var bridge1DAttrTable = backend.AttrTable{
	attr(sai.BridgeAttrType, y, y, n, y, y, y),
	attr(sai.BridgeAttrPortList, n, n, n, y, y, y),
	attr(sai.BridgeAttrMaxLearnedAddresses, n, y, y, y, y, n),
	attr(sai.BridgeAttrLearnDisable, n, y, y, y, y, n),
	attr(sai.BridgeAttrUnknownUnicastFloodControlType, n, y, y, y, y, y),
	attr(sai.BridgeAttrUnknownUnicastFloodGroup, n, y, y, y, y, y),
	attr(sai.BridgeAttrUnknownMulticastFloodControlType, n, y, y, y, y, y),
	attr(sai.BridgeAttrUnknownMulticastFloodGroup, n, y, y, y, y, y),
	attr(sai.BridgeAttrBroadcastFloodControlType, n, y, y, y, y, y),
	attr(sai.BridgeAttrBroadcastFloodGroup, n, y, y, y, y, y),
}
