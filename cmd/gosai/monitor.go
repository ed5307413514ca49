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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	api "github.com/osrg/gosai/api"
)

func formatEvent(ev *api.BridgePortEvent) string {
	bp := ev.BridgePort
	if bp == nil {
		bp = &api.BridgePort{}
	}
	s := fmt.Sprintf("[%s] %s %s bridge %s %s", strings.ToUpper(ev.Type), bp.Type, bp.Id, bp.Bridge, bp.Attachment)
	if ev.Type == "lag-modify" {
		op := "del"
		if ev.Add {
			op = "add"
		}
		s += fmt.Sprintf(" lag %s %s %s", ev.Lag, op, strings.Join(ev.Ports, ","))
	}
	return s
}

func newMonitorCmd() *cobra.Command {
	bridgePortCmd := &cobra.Command{
		Use:   cmdBridgePort + " [<type>]...",
		Short: "stream bridge port events",
		Run: func(cmd *cobra.Command, args []string) {
			stream, err := client.MonitorBridgePort(ctx, &api.MonitorBridgePortRequest{Types: args})
			if err != nil {
				exitWithError(err)
			}
			for {
				ev, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					return
				}
				if err != nil {
					exitWithError(err)
				}
				if globalOpts.Json {
					printJSON(os.Stdout, ev)
					continue
				}
				fmt.Println(formatEvent(ev))
			}
		},
	}

	monitorCmd := &cobra.Command{
		Use: cmdMonitor,
	}
	monitorCmd.AddCommand(bridgePortCmd)
	return monitorCmd
}
