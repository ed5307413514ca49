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

// Package netutils discovers the host links that back switch ports.
package netutils

// Link is a host network link usable as a switch port or, for bonds, as a
// LAG.
type Link struct {
	Name  string
	Index int
	MTU   int
	Up    bool
	Bond  bool
	// Master is the name of the bond the link is enslaved to.
	Master string
}

// Bonds returns the bond links of l, each with its member names.
func Bonds(l []Link) map[string][]string {
	m := make(map[string][]string)
	for _, link := range l {
		if link.Bond {
			if _, ok := m[link.Name]; !ok {
				m[link.Name] = nil
			}
		}
	}
	for _, link := range l {
		if link.Master == "" {
			continue
		}
		if _, ok := m[link.Master]; ok {
			m[link.Master] = append(m[link.Master], link.Name)
		}
	}
	return m
}
