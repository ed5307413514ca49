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
	"strings"

	"github.com/spf13/cobra"

	api "github.com/osrg/gosai/api"
)

func listBridges(id string) ([]*api.Bridge, error) {
	stream, err := client.ListBridge(ctx, &api.ListBridgeRequest{Id: id})
	if err != nil {
		return nil, err
	}
	return recvAll[api.Bridge](stream)
}

func printBridges(w io.Writer, l []*api.Bridge) error {
	if globalOpts.Json {
		return printJSON(w, l)
	}
	fmt.Fprintf(w, "%-20s %-4s %5s\n", "ID", "Type", "Ports")
	for _, b := range l {
		fmt.Fprintf(w, "%-20s %-4s %5d\n", b.Id, b.Type, b.RefCount)
	}
	return nil
}

func showBridge(w io.Writer, b *api.Bridge) error {
	if globalOpts.Json {
		return printJSON(w, b)
	}
	fmt.Fprintf(w, "Bridge: %s\n", b.Id)
	fmt.Fprintf(w, "  Type: %s\n", b.Type)
	fmt.Fprintf(w, "  Bridge ports: %d\n", b.RefCount)
	for _, p := range b.BridgePorts {
		fmt.Fprintf(w, "    %s\n", p)
	}
	for _, a := range b.Attributes {
		fmt.Fprintf(w, "  %s: %s\n", a.Name, a.Value)
	}
	return nil
}

// parseBridgeAddArgs reads "<1q|1d> [learn-disable] [max-learned N] [attr value]...".
func parseBridgeAddArgs(args []string) ([]*api.Attribute, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: %s %s <1q|1d> [learn-disable] [max-learned <n>] [<attr> <value>]...", cmdBridge, cmdAdd)
	}
	attrs := []*api.Attribute{{Name: "type", Value: strings.ToLower(args[0])}}
	var rest []string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "learn-disable":
			attrs = append(attrs, &api.Attribute{Name: "learn-disable", Value: "true"})
		case "max-learned":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("max-learned needs a value")
			}
			attrs = append(attrs, &api.Attribute{Name: "max-learned-addresses", Value: args[i+1]})
			i++
		default:
			rest = append(rest, args[i])
		}
	}
	extra, err := pairsToAttributes(rest)
	if err != nil {
		return nil, err
	}
	return append(attrs, extra...), nil
}

func newBridgeCmd() *cobra.Command {
	bridgeCmd := &cobra.Command{
		Use: cmdBridge,
		Run: func(cmd *cobra.Command, args []string) {
			l, err := listBridges("")
			if err == nil {
				err = printBridges(os.Stdout, l)
			}
			if err != nil {
				exitWithError(err)
			}
		},
	}

	listCmd := &cobra.Command{
		Use: cmdList,
		Run: bridgeCmd.Run,
	}

	showCmd := &cobra.Command{
		Use:  cmdShow + " <id>",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			l, err := listBridges(args[0])
			if err == nil && len(l) != 1 {
				err = fmt.Errorf("bridge %s not found", args[0])
			}
			if err == nil {
				err = showBridge(os.Stdout, l[0])
			}
			if err != nil {
				exitWithError(err)
			}
		},
	}

	addCmd := &cobra.Command{
		Use: cmdAdd + " <1q|1d> [learn-disable] [max-learned <n>] [<attr> <value>]...",
		Run: func(cmd *cobra.Command, args []string) {
			attrs, err := parseBridgeAddArgs(args)
			if err != nil {
				exitWithError(err)
			}
			b, err := client.CreateBridge(ctx, &api.CreateBridgeRequest{Attributes: attrs})
			if err != nil {
				exitWithError(err)
			}
			if globalOpts.Json {
				printJSON(os.Stdout, b)
				return
			}
			fmt.Println(b.Id)
		},
	}

	delCmd := &cobra.Command{
		Use:  cmdDel + " <id>",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := client.DeleteBridge(ctx, &api.DeleteBridgeRequest{Id: args[0]}); err != nil {
				exitWithError(err)
			}
		},
	}

	setCmd := &cobra.Command{
		Use:  cmdSet + " <id> <attr> <value>",
		Args: cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			_, err := client.SetBridge(ctx, &api.SetBridgeRequest{
				Id:        args[0],
				Attribute: &api.Attribute{Name: args[1], Value: args[2]},
			})
			if err != nil {
				exitWithError(err)
			}
		},
	}

	bridgeCmd.AddCommand(listCmd, showCmd, addCmd, delCmd, setCmd)
	return bridgeCmd
}
