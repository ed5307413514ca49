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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osrg/gosai/pkg/sai"
	"github.com/osrg/gosai/pkg/server"
)

type bridgeCollector struct {
	server *server.BridgeServer
}

var (
	bridgeLabels     = []string{"bridge", "type"}
	bridgePortLabels = []string{"bridge_port", "type"}

	saiBridgeCountDesc     = prometheus.NewDesc("sai_bridge_count", "Number of bridges", nil, nil)
	saiBridgePortCountDesc = prometheus.NewDesc("sai_bridge_port_count", "Number of bridge ports", nil, nil)

	saiBridgeRefCountDesc = prometheus.NewDesc(
		"sai_bridge_ref_count",
		"Number of bridge ports attached to bridge",
		bridgeLabels, nil,
	)
	saiBridgePortRefCountDesc = prometheus.NewDesc(
		"sai_bridge_port_ref_count",
		"Number of objects referring to bridge port",
		bridgePortLabels, nil,
	)
	saiBridgePortFdbCountDesc = prometheus.NewDesc(
		"sai_bridge_port_fdb_count",
		"Number of FDB entries learned on bridge port",
		[]string{"bridge_port"}, nil,
	)
	saiBridgePortAdminStateDesc = prometheus.NewDesc(
		"sai_bridge_port_admin_state",
		"Admin state of bridge port (1 is up)",
		[]string{"bridge_port"}, nil,
	)
)

func NewBridgeCollector(s *server.BridgeServer) prometheus.Collector {
	return &bridgeCollector{server: s}
}

func (c *bridgeCollector) Describe(out chan<- *prometheus.Desc) {
	out <- saiBridgeCountDesc
	out <- saiBridgePortCountDesc
	out <- saiBridgeRefCountDesc
	out <- saiBridgePortRefCountDesc
	out <- saiBridgePortFdbCountDesc
	out <- saiBridgePortAdminStateDesc
}

// list retries while objects are created between the count and the copy.
func list(count func() int, get func(int) ([]sai.ObjectID, error)) ([]sai.ObjectID, error) {
	n := count()
	for range 3 {
		ids, err := get(n)
		if sai.StatusOf(err) != sai.StatusBufferOverflow {
			return ids, err
		}
		n = sai.RequiredOf(err)
	}
	return get(n)
}

func (c *bridgeCollector) Collect(out chan<- prometheus.Metric) {
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		out <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	bridges, err := list(c.server.BridgeCount, c.server.ListBridges)
	if err != nil {
		out <- prometheus.NewInvalidMetric(prometheus.NewDesc("error", "error during metric collection", nil, nil), err)
		return
	}
	gauge(saiBridgeCountDesc, float64(len(bridges)))
	for _, id := range bridges {
		b, err := c.server.BridgeInfo(id)
		if err != nil {
			// removed since the list was taken
			continue
		}
		gauge(saiBridgeRefCountDesc, float64(b.RefCount), id.String(), b.Type.String())
	}

	ports, err := list(c.server.BridgePortCount, c.server.ListBridgePorts)
	if err != nil {
		out <- prometheus.NewInvalidMetric(prometheus.NewDesc("error", "error during metric collection", nil, nil), err)
		return
	}
	gauge(saiBridgePortCountDesc, float64(len(ports)))
	for _, id := range ports {
		bp, err := c.server.BridgePortInfo(id)
		if err != nil {
			continue
		}
		name := id.String()
		gauge(saiBridgePortRefCountDesc, float64(bp.RefCount), name, bp.Type.String())
		gauge(saiBridgePortFdbCountDesc, float64(bp.FdbCount), name)
		admin := 0.0
		if bp.AdminState {
			admin = 1
		}
		gauge(saiBridgePortAdminStateDesc, admin, name)
	}
}
