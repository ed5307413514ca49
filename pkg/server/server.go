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
	"context"
	"sync"

	"google.golang.org/grpc"

	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/backend"
	"github.com/osrg/gosai/pkg/backend/virtual"
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
	"github.com/osrg/gosai/pkg/switchdb"
)

// DefaultSwitchID is the switch object every bridge is created on unless
// SwitchIDOption says otherwise.
const DefaultSwitchID = sai.ObjectID(0x2100000000000000)

type options struct {
	grpcAddress string
	grpcOption  []grpc.ServerOption
	logger      log.Logger
	backend     backend.Backend
	switchID    sai.ObjectID
	ports       PortModule
	lags        LagModule
	rifs        RifModule
	tunnels     TunnelModule
	vlans       VlanModule
	l2mc        L2mcModule
}

type ServerOption func(*options)

func GrpcListenAddress(addr string) ServerOption {
	return func(o *options) {
		o.grpcAddress = addr
	}
}

func GrpcOption(opt []grpc.ServerOption) ServerOption {
	return func(o *options) {
		o.grpcOption = opt
	}
}

func LoggerOption(logger log.Logger) ServerOption {
	return func(o *options) {
		o.logger = logger
	}
}

func BackendOption(b backend.Backend) ServerOption {
	return func(o *options) {
		o.backend = b
	}
}

func SwitchIDOption(id sai.ObjectID) ServerOption {
	return func(o *options) {
		o.switchID = id
	}
}

func PortModuleOption(m PortModule) ServerOption {
	return func(o *options) {
		o.ports = m
	}
}

func LagModuleOption(m LagModule) ServerOption {
	return func(o *options) {
		o.lags = m
	}
}

func RifModuleOption(m RifModule) ServerOption {
	return func(o *options) {
		o.rifs = m
	}
}

func TunnelModuleOption(m TunnelModule) ServerOption {
	return func(o *options) {
		o.tunnels = m
	}
}

func VlanModuleOption(m VlanModule) ServerOption {
	return func(o *options) {
		o.vlans = m
	}
}

func L2mcModuleOption(m L2mcModule) ServerOption {
	return func(o *options) {
		o.l2mc = m
	}
}

// SwitchDBOption wires every collaborator module from db.
func SwitchDBOption(db *switchdb.DB) ServerOption {
	return func(o *options) {
		o.ports = db.Ports
		o.lags = db.Lags
		o.rifs = db.Rifs
		o.tunnels = db.Tunnels
		o.vlans = db.Vlans
		o.l2mc = db.L2mc
	}
}

// BridgeServer owns every bridge and bridge port of one switch together
// with the mapping tables derived from them.
type BridgeServer struct {
	logger   log.Logger
	backend  backend.Backend
	switchID sai.ObjectID

	ports   PortModule
	lags    LagModule
	rifs    RifModule
	tunnels TunnelModule
	vlans   VlanModule
	l2mc    L2mcModule

	// initMu serializes Init and Deinit.
	initMu sync.Mutex

	// mu is the bridge lock. It guards everything below it.
	mu            sync.RWMutex
	bridges       *table.Store[table.Bridge]
	bridgePorts   *table.Store[table.BridgePort]
	index         *table.Index
	defaultBridge sai.ObjectID
	initialized   bool

	subMu       sync.RWMutex
	subscribers [sai.ModuleMax]subscriber

	watchMu  sync.Mutex
	watchers map[string]*Watcher

	grpcServer *grpc.Server
	grpcHosts  string
}

func NewBridgeServer(opt ...ServerOption) *BridgeServer {
	opts := options{
		switchID: DefaultSwitchID,
	}
	for _, o := range opt {
		o(&opts)
	}
	if opts.logger == nil {
		opts.logger = log.NewDefaultLogger()
	}
	if opts.backend == nil {
		opts.backend = virtual.New()
	}
	db := switchdb.New()
	if opts.ports == nil {
		opts.ports = db.Ports
	}
	if opts.lags == nil {
		opts.lags = db.Lags
	}
	if opts.rifs == nil {
		opts.rifs = db.Rifs
	}
	if opts.tunnels == nil {
		opts.tunnels = db.Tunnels
	}
	if opts.vlans == nil {
		opts.vlans = db.Vlans
	}
	if opts.l2mc == nil {
		opts.l2mc = db.L2mc
	}

	s := &BridgeServer{
		logger:        opts.logger,
		backend:       opts.backend,
		switchID:      opts.switchID,
		ports:         opts.ports,
		lags:          opts.lags,
		rifs:          opts.rifs,
		tunnels:       opts.tunnels,
		vlans:         opts.vlans,
		l2mc:          opts.l2mc,
		bridges:       table.NewStore((*table.Bridge).Clone),
		bridgePorts:   table.NewStore((*table.BridgePort).Clone),
		index:         table.NewIndex(),
		defaultBridge: sai.NullObjectID,
		watchers:      make(map[string]*Watcher),
	}
	s.lags.RegisterMembershipHandler(s.HandleLagMembership)
	if opts.grpcAddress != "" {
		grpcOpts := []grpc.ServerOption{grpc.MaxRecvMsgSize(grpcMaxMsgSize), grpc.MaxSendMsgSize(grpcMaxMsgSize)}
		grpcOpts = append(grpcOpts, opts.grpcOption...)
		s.grpcServer = grpc.NewServer(grpcOpts...)
		s.grpcHosts = opts.grpcAddress
		NewGrpcServer(s, s.grpcServer, s.grpcHosts)
	}
	return s
}

func (s *BridgeServer) Logger() log.Logger {
	return s.logger
}

func (s *BridgeServer) SwitchID() sai.ObjectID {
	return s.switchID
}

// Serve runs the gRPC API configured by GrpcListenAddress until Stop.
func (s *BridgeServer) Serve() error {
	if s.grpcServer == nil {
		return sai.NewError(sai.StatusUninitialized, "no grpc listen address")
	}
	return serveGrpc(s.logger, s.grpcServer, s.grpcHosts)
}

func (s *BridgeServer) Stop() {
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
}

// Init programs the backend, creates the default 1Q bridge and gives every
// valid physical port a Port bridge port on it.
func (s *BridgeServer) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()
	if initialized {
		return sai.NewError(sai.StatusItemAlreadyExists, "bridge module already initialized")
	}

	if err := s.backend.Init(true); err != nil {
		s.logger.Error("failed to initialize backend", log.Fields{
			"Topic": "Bridge",
			"Error": err,
		})
		return err
	}

	id, err := s.createBridge([]sai.Attribute{
		sai.S32Attr(sai.BridgeAttrType, int32(sai.BridgeType1Q)),
	})
	if err != nil {
		s.logger.Error("failed to create default bridge", log.Fields{
			"Topic": "Bridge",
			"Error": err,
		})
		if e := s.backend.Init(false); e != nil {
			s.logger.Warn("failed to disable backend", log.Fields{
				"Topic": "Bridge",
				"Error": e,
			})
		}
		return err
	}
	s.mu.Lock()
	s.defaultBridge = id
	s.initialized = true
	s.mu.Unlock()

	s.ports.Lock()
	ports := s.ports.ValidPorts()
	candidates := make([]sai.ObjectID, 0, len(ports))
	for _, p := range ports {
		if !s.ports.IsLagMember(p) {
			candidates = append(candidates, p)
		}
	}
	s.ports.Unlock()

	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			s.teardown()
			return err
		}
		if _, err := s.addDefaultBridgePort(p, BridgePortEventInitCreate); err != nil {
			s.logger.Error("failed to create default bridge port", log.Fields{
				"Topic": "BridgePort",
				"Key":   p,
				"Error": err,
			})
			s.teardown()
			return err
		}
	}

	s.logger.Info("bridge module initialized", log.Fields{
		"Topic":       "Bridge",
		"Key":         id,
		"BridgePorts": len(candidates),
	})
	return nil
}

// Deinit disables the backend and removes every bridge port and bridge.
func (s *BridgeServer) Deinit(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()
	if !initialized {
		return sai.NewError(sai.StatusUninitialized, "bridge module not initialized")
	}
	s.teardown()
	return nil
}

func (s *BridgeServer) teardown() {
	if err := s.backend.Init(false); err != nil {
		s.logger.Warn("failed to disable backend", log.Fields{
			"Topic": "Bridge",
			"Error": err,
		})
	}

	s.mu.RLock()
	bridgePorts := s.bridgePorts.Keys()
	bridges := s.bridges.Keys()
	def := s.defaultBridge
	s.mu.RUnlock()

	for _, id := range bridgePorts {
		if err := s.removeBridgePort(id, true); err != nil {
			s.logger.Error("failed to remove bridge port", log.Fields{
				"Topic": "BridgePort",
				"Key":   id,
				"Error": err,
			})
		}
	}
	for _, id := range bridges {
		if id == def {
			continue
		}
		if err := s.removeBridge(id, true); err != nil {
			s.logger.Error("failed to remove bridge", log.Fields{
				"Topic": "Bridge",
				"Key":   id,
				"Error": err,
			})
		}
	}
	if !def.IsNull() {
		if err := s.removeBridge(def, true); err != nil {
			s.logger.Error("failed to remove default bridge", log.Fields{
				"Topic": "Bridge",
				"Key":   def,
				"Error": err,
			})
		}
	}

	s.mu.Lock()
	s.defaultBridge = sai.NullObjectID
	s.initialized = false
	s.mu.Unlock()
}

// DefaultBridgeID returns the id of the default 1Q bridge.
func (s *BridgeServer) DefaultBridgeID() (sai.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return sai.NullObjectID, sai.NewError(sai.StatusUninitialized, "bridge module not initialized")
	}
	return s.defaultBridge, nil
}

func (s *BridgeServer) checkInitialized() error {
	if !s.initialized {
		return sai.NewError(sai.StatusUninitialized, "bridge module not initialized")
	}
	return nil
}
