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

package server

import (
	"github.com/osrg/gosai/pkg/log"
)

type undoStep struct {
	name string
	f    func() error
}

// undoStack records the inverse of every committed step of an operation.
// Unless commit is called, unwind runs them newest first.
type undoStack struct {
	logger log.Logger
	topic  string
	key    string
	steps  []undoStep
}

func newUndoStack(logger log.Logger, topic string) *undoStack {
	return &undoStack{
		logger: logger,
		topic:  topic,
	}
}

func (u *undoStack) setKey(key string) {
	u.key = key
}

func (u *undoStack) push(name string, f func() error) {
	u.steps = append(u.steps, undoStep{name: name, f: f})
}

func (u *undoStack) commit() {
	u.steps = nil
}

func (u *undoStack) unwind() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		step := u.steps[i]
		if err := step.f(); err != nil {
			u.logger.Error("rollback failed", log.Fields{
				"Topic": u.topic,
				"Key":   u.key,
				"Step":  step.name,
				"Error": err,
			})
		}
	}
	u.steps = nil
}
