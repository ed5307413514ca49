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

package gosaiapi

// Attribute is one attribute in its textual form, for example
// {"name": "admin-state", "value": "true"}.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Empty struct{}

type Bridge struct {
	Id          string       `json:"id"`
	Type        string       `json:"type"`
	RefCount    uint32       `json:"ref_count"`
	BridgePorts []string     `json:"bridge_ports,omitempty"`
	Attributes  []*Attribute `json:"attributes,omitempty"`
}

type BridgePort struct {
	Id         string       `json:"id"`
	Type       string       `json:"type"`
	Bridge     string       `json:"bridge"`
	Attachment string       `json:"attachment"`
	AdminState bool         `json:"admin_state"`
	RefCount   uint32       `json:"ref_count"`
	FdbCount   uint32       `json:"fdb_count"`
	Attributes []*Attribute `json:"attributes,omitempty"`
}

type CreateBridgeRequest struct {
	Attributes []*Attribute `json:"attributes"`
}

type DeleteBridgeRequest struct {
	Id string `json:"id"`
}

// ListBridgeRequest lists every bridge, or only the one named by Id.
type ListBridgeRequest struct {
	Id string `json:"id,omitempty"`
}

type SetBridgeRequest struct {
	Id        string     `json:"id"`
	Attribute *Attribute `json:"attribute"`
}

type CreateBridgePortRequest struct {
	Attributes []*Attribute `json:"attributes"`
}

type DeleteBridgePortRequest struct {
	Id string `json:"id"`
}

type ListBridgePortRequest struct {
	Id     string `json:"id,omitempty"`
	Bridge string `json:"bridge,omitempty"`
}

type SetBridgePortRequest struct {
	Id        string     `json:"id"`
	Attribute *Attribute `json:"attribute"`
}

// MonitorBridgePortRequest selects the bridge port types to monitor. An
// empty list monitors all of them.
type MonitorBridgePortRequest struct {
	Types []string `json:"types,omitempty"`
}

type BridgePortEvent struct {
	Type       string      `json:"type"`
	BridgePort *BridgePort `json:"bridge_port"`
	Lag        string      `json:"lag,omitempty"`
	Add        bool        `json:"add,omitempty"`
	Ports      []string    `json:"ports,omitempty"`
}

type DumpRequest struct {
	Id string `json:"id,omitempty"`
}

type DumpResponse struct {
	Text string `json:"text"`
}

type SetLogLevelRequest struct {
	Level string `json:"level"`
}
