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
	"github.com/stretchr/testify/mock"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/backend/virtual"
	"github.com/osrg/gosai/pkg/sai"
	"github.com/osrg/gosai/pkg/switchdb"
)

// mockBackend records attribute writes and lag reprogramming. Everything
// else is served by the virtual backend.
type mockBackend struct {
	mock.Mock
	*virtual.Backend
}

func newMockBackend() *mockBackend {
	return &mockBackend{Backend: virtual.New()}
}

func (m *mockBackend) SetBridgeAttribute(b *table.Bridge, attr sai.Attribute) error {
	return m.Called(b.ID, attr).Error(0)
}

func (m *mockBackend) SetBridgePortAttribute(bp *table.BridgePort, attr sai.Attribute) error {
	return m.Called(bp.ID, attr).Error(0)
}

func (m *mockBackend) LagHandler(bp *table.BridgePort, lag sai.ObjectID, add bool, ports []sai.ObjectID) error {
	return m.Called(bp.ID, lag, add, ports).Error(0)
}

// failingPorts is a port module whose default bridge port cell can be made
// to reject writes.
type failingPorts struct {
	*switchdb.Ports
	failSetDefault bool
}

func (p *failingPorts) SetDefaultBridgePort(port, bridgePort sai.ObjectID) error {
	if p.failSetDefault {
		return sai.NewError(sai.StatusFailure, "default bridge port of %s is locked", port)
	}
	return p.Ports.SetDefaultBridgePort(port, bridgePort)
}
