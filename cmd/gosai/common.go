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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	api "github.com/osrg/gosai/api"
)

const (
	cmdBridge     = "bridge"
	cmdBridgePort = "bridge-port"
	cmdList       = "list"
	cmdShow       = "show"
	cmdAdd        = "add"
	cmdDel        = "del"
	cmdSet        = "set"
	cmdMonitor    = "monitor"
	cmdDump       = "dump"
	cmdConfig     = "config"
	cmdExport     = "export"
	cmdLoglevel   = "loglevel"
)

func printError(err error) {
	if globalOpts.Json {
		j, _ := json.Marshal(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
		fmt.Println(string(j))
	} else {
		fmt.Println(err)
	}
}

func exitWithError(err error) {
	printError(err)
	os.Exit(1)
}

func printJSON(w io.Writer, v interface{}) error {
	j, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}

type receiver[T any] interface {
	Recv() (*T, error)
}

// recvAll drains a server stream.
func recvAll[T any](stream receiver[T]) ([]*T, error) {
	var l []*T
	for {
		m, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return l, nil
		}
		if err != nil {
			return nil, err
		}
		l = append(l, m)
	}
}

// pairsToAttributes turns "name value name value ..." into attributes.
func pairsToAttributes(args []string) ([]*api.Attribute, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("attribute %q has no value", args[len(args)-1])
	}
	attrs := make([]*api.Attribute, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		attrs = append(attrs, &api.Attribute{Name: args[i], Value: args[i+1]})
	}
	return attrs, nil
}

func attrValue(attrs []*api.Attribute, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}
