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

package log

import "sync"

// TestLogger records every message per level so tests can assert on what
// was logged. It is safe for concurrent use.
type TestLogger struct {
	mu       sync.Mutex
	Logger   *DefaultLogger
	Messages map[string][]string
	Level    LogLevel
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		Logger:   NewDefaultLogger(),
		Messages: make(map[string][]string),
		Level:    InfoLevel,
	}
}

func (m *TestLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = make(map[string][]string)
}

func (m *TestLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[level] = append(m.Messages[level], msg)
}

// Count returns how many messages were logged at level.
func (m *TestLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[level])
}

// Contains reports whether msg was logged at level.
func (m *TestLogger) Contains(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Messages[level] {
		if s == msg {
			return true
		}
	}
	return false
}

func (m *TestLogger) Panic(msg string, fields Fields) {
	m.Logger.Panic(msg, fields)
	m.record("panic", msg)
}

func (m *TestLogger) Fatal(msg string, fields Fields) {
	m.Logger.Fatal(msg, fields)
	m.record("fatal", msg)
}

func (m *TestLogger) Error(msg string, fields Fields) {
	m.Logger.Error(msg, fields)
	m.record("error", msg)
}

func (m *TestLogger) Warn(msg string, fields Fields) {
	m.Logger.Warn(msg, fields)
	m.record("warn", msg)
}

func (m *TestLogger) Info(msg string, fields Fields) {
	m.Logger.Info(msg, fields)
	m.record("info", msg)
}

func (m *TestLogger) Debug(msg string, fields Fields) {
	m.Logger.Debug(msg, fields)
	m.record("debug", msg)
}

func (m *TestLogger) SetLevel(level LogLevel) {
	m.Logger.SetLevel(level)
	m.mu.Lock()
	m.Level = level
	m.mu.Unlock()
}

func (m *TestLogger) GetLevel() LogLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Level
}
