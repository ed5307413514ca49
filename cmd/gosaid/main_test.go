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
	"bytes"
	"log/syslog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osrg/gosai/pkg/log"
)

func TestSyslogTarget(t *testing.T) {
	n, a := syslogTarget("udp:127.0.0.1:514")
	assert.Equal(t, "udp", n)
	assert.Equal(t, "127.0.0.1:514", a)

	n, a = syslogTarget("yes")
	assert.Empty(t, n)
	assert.Empty(t, a)
}

func TestSyslogPriority(t *testing.T) {
	p, err := syslogPriority("local3")
	require.NoError(t, err)
	assert.Equal(t, syslog.LOG_INFO|syslog.LOG_LOCAL3, p)

	p, err = syslogPriority("")
	require.NoError(t, err)
	assert.Equal(t, syslog.LOG_INFO, p)

	_, err = syslogPriority("mainframe")
	assert.Error(t, err)
}

func TestBuiltinLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	b := &builtinLogger{logger: l}

	b.SetLevel(log.WarnLevel)
	assert.Equal(t, log.WarnLevel, b.GetLevel())
	b.Info("dropped", nil)
	assert.Zero(t, buf.Len())

	b.Warn("bridge port event subscriber failed", log.Fields{"Topic": "Bridge"})
	assert.Contains(t, buf.String(), `"Topic":"Bridge"`)
	assert.Contains(t, buf.String(), "bridge port event subscriber failed")
}
