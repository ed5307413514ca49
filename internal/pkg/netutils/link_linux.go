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

//go:build linux

package netutils

import (
	"fmt"
	"net"
	"sort"

	"github.com/vishvananda/netlink"
)

var portLinkTypes = map[string]bool{
	"device": true,
	"veth":   true,
	"bond":   true,
}

// DiscoverLinks lists the physical, veth and bond links of the host.
// Loopback links are skipped.
func DiscoverLinks() ([]Link, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return toLinks(links), nil
}

func toLinks(links []netlink.Link) []Link {
	names := make(map[int]string, len(links))
	for _, link := range links {
		names[link.Attrs().Index] = link.Attrs().Name
	}

	l := make([]Link, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if !portLinkTypes[link.Type()] || attrs.Flags&net.FlagLoopback != 0 {
			continue
		}
		l = append(l, Link{
			Name:   attrs.Name,
			Index:  attrs.Index,
			MTU:    attrs.MTU,
			Up:     attrs.Flags&net.FlagUp != 0,
			Bond:   link.Type() == "bond",
			Master: names[attrs.MasterIndex],
		})
	}
	sort.Slice(l, func(i, j int) bool { return l[i].Index < l[j].Index })
	return l
}
