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

	"github.com/spf13/cobra"

	api "github.com/osrg/gosai/api"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   cmdDump + " [<id>]",
		Short: "print the server's bridge and bridge port tables",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &api.DumpRequest{}
			if len(args) == 1 {
				req.Id = args[0]
			}
			res, err := client.Dump(ctx, req)
			if err != nil {
				exitWithError(err)
			}
			fmt.Print(res.Text)
		},
	}
}
