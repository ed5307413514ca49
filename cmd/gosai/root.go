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
	"context"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	api "github.com/osrg/gosai/api"
)

var globalOpts struct {
	Host   string
	Port   int
	Json   bool
	TLS    bool
	CaFile string
}

var (
	client api.GosaiApiClient
	ctx    context.Context
)

func newConn() (*grpc.ClientConn, error) {
	target := net.JoinHostPort(globalOpts.Host, strconv.Itoa(globalOpts.Port))
	creds := insecure.NewCredentials()
	if globalOpts.TLS {
		creds = credentials.NewClientTLSFromCert(nil, "")
		if globalOpts.CaFile != "" {
			var err error
			if creds, err = credentials.NewClientTLSFromFile(globalOpts.CaFile, ""); err != nil {
				return nil, err
			}
		}
	}
	return grpc.NewClient(target, grpc.WithTransportCredentials(creds))
}

func newRootCmd() *cobra.Command {
	cobra.EnablePrefixMatching = true
	cleanup := func() {}

	rootCmd := &cobra.Command{
		Use:          "gosai",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			conn, err := newConn()
			if err != nil {
				exitWithError(err)
			}
			var cancel context.CancelFunc
			ctx, cancel = context.WithCancel(context.Background())
			client = api.NewGosaiApiClient(conn)
			cleanup = func() {
				conn.Close()
				cancel()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			cleanup()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalOpts.Host, "host", "u", "127.0.0.1", "host")
	rootCmd.PersistentFlags().IntVarP(&globalOpts.Port, "port", "p", 50061, "port")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Json, "json", "j", false, "use json format to output format")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.TLS, "tls", "", false, "connection uses TLS if true, else plain TCP")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.CaFile, "tls-ca-file", "", "", "The file containing the CA root cert file")

	rootCmd.AddCommand(
		newBridgeCmd(),
		newBridgePortCmd(),
		newMonitorCmd(),
		newDumpCmd(),
		newConfigCmd(),
		newLogLevelCmd(),
	)
	return rootCmd
}
