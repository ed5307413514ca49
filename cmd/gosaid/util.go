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

//go:build !windows

package main

import (
	"fmt"
	"log/syslog"
	"strings"

	lSyslog "github.com/sirupsen/logrus/hooks/syslog"
)

var facilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"authpriv": syslog.LOG_AUTHPRIV,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

// syslogTarget splits "network:addr"; a bare value means the local daemon.
func syslogTarget(host string) (network, addr string) {
	if n, a, ok := strings.Cut(host, ":"); ok {
		return n, a
	}
	return "", ""
}

func syslogPriority(facility string) (syslog.Priority, error) {
	if facility == "" {
		return syslog.LOG_INFO, nil
	}
	p, ok := facilities[facility]
	if !ok {
		return 0, fmt.Errorf("unknown syslog facility %q", facility)
	}
	return syslog.LOG_INFO | p, nil
}

func addSyslogHook(host, facility string) error {
	network, addr := syslogTarget(host)
	priority, err := syslogPriority(facility)
	if err != nil {
		return err
	}
	hook, err := lSyslog.NewSyslogHook(network, addr, priority, "said")
	if err != nil {
		return err
	}
	logger.AddHook(hook)
	return nil
}
