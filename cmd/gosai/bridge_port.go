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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	api "github.com/osrg/gosai/api"
)

func listBridgePorts(id, bridge string) ([]*api.BridgePort, error) {
	stream, err := client.ListBridgePort(ctx, &api.ListBridgePortRequest{Id: id, Bridge: bridge})
	if err != nil {
		return nil, err
	}
	return recvAll[api.BridgePort](stream)
}

func adminString(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func printBridgePorts(w io.Writer, l []*api.BridgePort) error {
	if globalOpts.Json {
		return printJSON(w, l)
	}
	fmt.Fprintf(w, "%-20s %-10s %-20s %-5s %s\n", "ID", "Type", "Bridge", "Admin", "Attachment")
	for _, bp := range l {
		fmt.Fprintf(w, "%-20s %-10s %-20s %-5s %s\n", bp.Id, bp.Type, bp.Bridge, adminString(bp.AdminState), bp.Attachment)
	}
	return nil
}

func showBridgePort(w io.Writer, bp *api.BridgePort) error {
	if globalOpts.Json {
		return printJSON(w, bp)
	}
	fmt.Fprintf(w, "Bridge port: %s\n", bp.Id)
	fmt.Fprintf(w, "  Type: %s\n", bp.Type)
	fmt.Fprintf(w, "  Bridge: %s\n", bp.Bridge)
	fmt.Fprintf(w, "  Attachment: %s\n", bp.Attachment)
	fmt.Fprintf(w, "  Admin state: %s\n", adminString(bp.AdminState))
	fmt.Fprintf(w, "  References: %d\n", bp.RefCount)
	fmt.Fprintf(w, "  FDB entries: %d\n", bp.FdbCount)
	for _, a := range bp.Attributes {
		fmt.Fprintf(w, "  %s: %s\n", a.Name, a.Value)
	}
	return nil
}

// parseBridgePortAddArgs reads "<type> [<attr> <value>]...".
func parseBridgePortAddArgs(args []string) ([]*api.Attribute, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: %s %s <type> [<attr> <value>]...", cmdBridgePort, cmdAdd)
	}
	attrs, err := pairsToAttributes(args[1:])
	if err != nil {
		return nil, err
	}
	return append([]*api.Attribute{{Name: "type", Value: args[0]}}, attrs...), nil
}

func newBridgePortCmd() *cobra.Command {
	var bridge string
	bridgePortCmd := &cobra.Command{
		Use: cmdBridgePort,
		Run: func(cmd *cobra.Command, args []string) {
			l, err := listBridgePorts("", bridge)
			if err == nil {
				err = printBridgePorts(os.Stdout, l)
			}
			if err != nil {
				exitWithError(err)
			}
		},
	}
	bridgePortCmd.PersistentFlags().StringVarP(&bridge, "bridge", "b", "", "only the bridge ports of this bridge")

	listCmd := &cobra.Command{
		Use: cmdList,
		Run: bridgePortCmd.Run,
	}

	showCmd := &cobra.Command{
		Use:  cmdShow + " <id>",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			l, err := listBridgePorts(args[0], "")
			if err == nil && len(l) != 1 {
				err = fmt.Errorf("bridge port %s not found", args[0])
			}
			if err == nil {
				err = showBridgePort(os.Stdout, l[0])
			}
			if err != nil {
				exitWithError(err)
			}
		},
	}

	addCmd := &cobra.Command{
		Use:   cmdAdd + " <type> [<attr> <value>]...",
		Short: "e.g. add sub-port port-id <id> vlan-id 10 bridge-id <id> admin-state up",
		Run: func(cmd *cobra.Command, args []string) {
			attrs, err := parseBridgePortAddArgs(args)
			if err != nil {
				exitWithError(err)
			}
			bp, err := client.CreateBridgePort(ctx, &api.CreateBridgePortRequest{Attributes: attrs})
			if err != nil {
				exitWithError(err)
			}
			if globalOpts.Json {
				printJSON(os.Stdout, bp)
				return
			}
			fmt.Println(bp.Id)
		},
	}

	delCmd := &cobra.Command{
		Use:  cmdDel + " <id>",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := client.DeleteBridgePort(ctx, &api.DeleteBridgePortRequest{Id: args[0]}); err != nil {
				exitWithError(err)
			}
		},
	}

	setCmd := &cobra.Command{
		Use:  cmdSet + " <id> <attr> <value>",
		Args: cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			_, err := client.SetBridgePort(ctx, &api.SetBridgePortRequest{
				Id:        args[0],
				Attribute: &api.Attribute{Name: args[1], Value: args[2]},
			})
			if err != nil {
				exitWithError(err)
			}
		},
	}

	bridgePortCmd.AddCommand(listCmd, showCmd, addCmd, delCmd, setCmd)
	return bridgePortCmd
}
