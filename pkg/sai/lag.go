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

package sai

// LagOperation is the kind of change a LAG module reports.
type LagOperation int

const (
	LagOperationCreate LagOperation = iota
	LagOperationRemove
	LagOperationAddPorts
	LagOperationDelPorts
)

func (o LagOperation) String() string {
	switch o {
	case LagOperationCreate:
		return "create"
	case LagOperationRemove:
		return "remove"
	case LagOperationAddPorts:
		return "add-ports"
	case LagOperationDelPorts:
		return "del-ports"
	}
	return "unknown"
}

// LagMembershipHandler is called by a LAG module after the membership of
// lag changed. ports holds only the ports that were added or removed.
type LagMembershipHandler func(lag ObjectID, op LagOperation, ports []ObjectID) error
