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
	"github.com/eapache/channels"
	"github.com/google/uuid"

	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
)

// Watcher receives the bridge port events of the types it watches. Events
// are queued without bound so a slow reader never blocks the bridge server.
type Watcher struct {
	id     string
	types  uint32
	s      *BridgeServer
	ch     *channels.InfiniteChannel
	realCh chan *BridgePortEvent
}

func (w *Watcher) ID() string {
	return w.id
}

func (w *Watcher) Event() <-chan *BridgePortEvent {
	return w.realCh
}

func (w *Watcher) notify(ev *BridgePortEvent) {
	w.ch.In() <- ev
}

func (w *Watcher) loop() {
	for ev := range w.ch.Out() {
		if ev == nil {
			break
		}
		w.realCh <- ev.(*BridgePortEvent)
	}
	close(w.realCh)
}

func (w *Watcher) Stop() {
	s := w.s
	s.watchMu.Lock()
	if _, ok := s.watchers[w.id]; !ok {
		s.watchMu.Unlock()
		return
	}
	delete(s.watchers, w.id)
	last := len(s.watchers) == 0
	s.watchMu.Unlock()

	if last {
		if err := s.RegisterBridgePortEvent(sai.ModuleApi, 0, nil); err != nil {
			s.logger.Warn("failed to unsubscribe watchers", log.Fields{
				"Topic": "Notify",
				"Error": err,
			})
		}
	}

	cleanInfiniteChannel(w.ch)
	// the loop goroutine might be blocked writing to realCh.
	for range w.realCh {
	}
	s.logger.Debug("watcher stopped", log.Fields{
		"Topic": "Notify",
		"Key":   w.id,
	})
}

func cleanInfiniteChannel(ch *channels.InfiniteChannel) {
	ch.Close()
	// drain all remaining items
	for range ch.Out() {
	}
}

// Watch starts a watcher for the bridge port types in the types bitmap.
// The watcher must be stopped by the caller.
func (s *BridgeServer) Watch(types uint32) (*Watcher, error) {
	if types == 0 || types&^sai.AllBridgePortTypes != 0 {
		return nil, sai.NewError(sai.StatusInvalidParameter, "bridge port type bitmap 0x%x", types)
	}
	w := &Watcher{
		id:     uuid.New().String(),
		types:  types,
		s:      s,
		ch:     channels.NewInfiniteChannel(),
		realCh: make(chan *BridgePortEvent, 8),
	}

	s.watchMu.Lock()
	first := len(s.watchers) == 0
	s.watchers[w.id] = w
	s.watchMu.Unlock()

	if first {
		if err := s.RegisterBridgePortEvent(sai.ModuleApi, sai.AllBridgePortTypes, s.dispatchToWatchers); err != nil {
			s.watchMu.Lock()
			delete(s.watchers, w.id)
			s.watchMu.Unlock()
			return nil, err
		}
	}
	go w.loop()

	s.logger.Debug("watcher started", log.Fields{
		"Topic": "Notify",
		"Key":   w.id,
		"Types": types,
	})
	return w, nil
}

func (s *BridgeServer) dispatchToWatchers(ev *BridgePortEvent) error {
	bit := ev.BridgePort.Type.Bit()
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, w := range s.watchers {
		if w.types&bit != 0 {
			w.notify(ev)
		}
	}
	return nil
}
