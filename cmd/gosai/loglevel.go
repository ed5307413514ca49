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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	api "github.com/osrg/gosai/api"
)

func newLogLevelCmd() *cobra.Command {
	llCmd := &cobra.Command{
		Use: cmdLoglevel,
	}

	for _, l := range []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
		logrus.TraceLevel,
	} {
		subcmd := &cobra.Command{
			Use: l.String(),
			Run: func(cmd *cobra.Command, args []string) {
				if _, err := client.SetLogLevel(ctx, &api.SetLogLevelRequest{Level: cmd.Use}); err != nil {
					exitWithError(err)
				}
			},
		}
		llCmd.AddCommand(subcmd)
	}
	return llCmd
}
