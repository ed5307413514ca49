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
	"bytes"
	"context"
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	api "github.com/osrg/gosai/api"
	"github.com/osrg/gosai/internal/pkg/table"
	"github.com/osrg/gosai/pkg/log"
	"github.com/osrg/gosai/pkg/sai"
)

const grpcMaxMsgSize = 256 << 20

type Server struct {
	bridgeServer *BridgeServer
	grpcServer   *grpc.Server
	hosts        string
}

func NewGrpcServer(b *BridgeServer, g *grpc.Server, hosts string) *Server {
	s := &Server{
		bridgeServer: b,
		grpcServer:   g,
		hosts:        hosts,
	}
	api.RegisterGosaiApiServer(g, s)
	return s
}

func (s *Server) Serve() error {
	return serveGrpc(s.bridgeServer.logger, s.grpcServer, s.hosts)
}

func serveGrpc(logger log.Logger, g *grpc.Server, hosts string) error {
	var wg sync.WaitGroup
	l := strings.Split(hosts, ",")
	wg.Add(len(l))

	serve := func(host string) {
		defer wg.Done()
		lis, err := net.Listen("tcp", host)
		if err != nil {
			logger.Warn("listen failed", log.Fields{
				"Topic": "grpc",
				"Key":   host,
				"Error": err,
			})
			return
		}
		err = g.Serve(lis)
		logger.Warn("accept failed", log.Fields{
			"Topic": "grpc",
			"Key":   host,
			"Error": err,
		})
	}

	for _, host := range l {
		go serve(host)
	}
	wg.Wait()
	return nil
}

var statusToCode = map[sai.Status]codes.Code{
	sai.StatusNotSupported:              codes.Unimplemented,
	sai.StatusNoMemory:                  codes.ResourceExhausted,
	sai.StatusInsufficientResources:     codes.ResourceExhausted,
	sai.StatusInvalidParameter:          codes.InvalidArgument,
	sai.StatusItemAlreadyExists:         codes.AlreadyExists,
	sai.StatusItemNotFound:              codes.NotFound,
	sai.StatusBufferOverflow:            codes.OutOfRange,
	sai.StatusInvalidObjectID:           codes.InvalidArgument,
	sai.StatusInvalidObjectType:         codes.InvalidArgument,
	sai.StatusObjectInUse:               codes.FailedPrecondition,
	sai.StatusUninitialized:             codes.Unavailable,
	sai.StatusMandatoryAttributeMissing: codes.InvalidArgument,
	sai.StatusInvalidAttribute:          codes.InvalidArgument,
	sai.StatusInvalidAttrValue:          codes.InvalidArgument,
	sai.StatusAttrNotImplemented:        codes.Unimplemented,
	sai.StatusUnknownAttribute:          codes.InvalidArgument,
	sai.StatusAttrNotSupported:          codes.Unimplemented,
}

// toGrpcError converts a bridge error into a gRPC status error.
func toGrpcError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code, ok := statusToCode[sai.StatusOf(err)]
	if !ok {
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

func parseBridgeAttrs(l []*api.Attribute) ([]sai.Attribute, error) {
	attrs := make([]sai.Attribute, 0, len(l))
	for _, a := range l {
		attr, err := parseBridgeAttr(a)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseBridgeAttr(a *api.Attribute) (sai.Attribute, error) {
	if a == nil {
		return sai.Attribute{}, sai.NewError(sai.StatusInvalidParameter, "empty attribute")
	}
	id, err := sai.ParseBridgeAttr(a.Name)
	if err != nil {
		return sai.Attribute{}, sai.WrapError(sai.StatusInvalidParameter, err, "bridge attribute")
	}
	attr, err := sai.ParseBridgeAttrValue(id, a.Value)
	if err != nil {
		return sai.Attribute{}, sai.WrapError(sai.StatusInvalidParameter, err, "%s", a.Name)
	}
	return attr, nil
}

func parseBridgePortAttrs(l []*api.Attribute) ([]sai.Attribute, error) {
	attrs := make([]sai.Attribute, 0, len(l))
	for _, a := range l {
		attr, err := parseBridgePortAttr(a)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseBridgePortAttr(a *api.Attribute) (sai.Attribute, error) {
	if a == nil {
		return sai.Attribute{}, sai.NewError(sai.StatusInvalidParameter, "empty attribute")
	}
	id, err := sai.ParseBridgePortAttr(a.Name)
	if err != nil {
		return sai.Attribute{}, sai.WrapError(sai.StatusInvalidParameter, err, "bridge port attribute")
	}
	attr, err := sai.ParseBridgePortAttrValue(id, a.Value)
	if err != nil {
		return sai.Attribute{}, sai.WrapError(sai.StatusInvalidParameter, err, "%s", a.Name)
	}
	return attr, nil
}

func parseID(s string) (sai.ObjectID, error) {
	id, err := sai.ParseObjectID(s)
	if err != nil {
		return sai.NullObjectID, sai.WrapError(sai.StatusInvalidObjectID, err, "object id")
	}
	return id, nil
}

// listAll sizes the list from count and grows it when objects were created
// in between.
func listAll(count func() int, list func(int) ([]sai.ObjectID, error)) ([]sai.ObjectID, error) {
	n := count()
	for {
		ids, err := list(n)
		if sai.StatusOf(err) != sai.StatusBufferOverflow {
			return ids, err
		}
		n = sai.RequiredOf(err)
	}
}

func (s *Server) toApiBridge(b *table.Bridge) *api.Bridge {
	ports := s.bridgeServer.BridgePortsOf(b.ID)
	a := &api.Bridge{
		Id:          b.ID.String(),
		Type:        b.Type.String(),
		RefCount:    b.RefCount,
		BridgePorts: idStrings(ports),
	}
	for _, id := range []uint32{sai.BridgeAttrMaxLearnedAddresses, sai.BridgeAttrLearnDisable} {
		attr := sai.Attribute{ID: id}
		b.AttrValue(&attr)
		a.Attributes = append(a.Attributes, &api.Attribute{Name: sai.BridgeAttrName(id), Value: sai.FormatBridgeAttrValue(attr)})
	}
	for t := sai.FloodType(0); t < sai.FloodTypeMax; t++ {
		for _, id := range []uint32{sai.FloodControlAttr(t), sai.FloodGroupAttr(t)} {
			attr := sai.Attribute{ID: id}
			b.AttrValue(&attr)
			a.Attributes = append(a.Attributes, &api.Attribute{Name: sai.BridgeAttrName(id), Value: sai.FormatBridgeAttrValue(attr)})
		}
	}
	return a
}

func toApiBridgePort(bp *table.BridgePort) *api.BridgePort {
	a := &api.BridgePort{
		Id:         bp.ID.String(),
		Type:       bp.Type.String(),
		Bridge:     bp.BridgeID.String(),
		Attachment: bp.Attachment.String(),
		AdminState: bp.AdminState,
		RefCount:   bp.RefCount,
		FdbCount:   bp.FdbCount,
	}
	for _, id := range []uint32{
		sai.BridgePortAttrFdbLearningMode,
		sai.BridgePortAttrMaxLearnedAddresses,
		sai.BridgePortAttrFdbLearningLimitViolationPacketAction,
		sai.BridgePortAttrIngressFiltering,
		sai.BridgePortAttrEgressFiltering,
		sai.BridgePortAttrTaggingMode,
	} {
		attr := sai.Attribute{ID: id}
		bp.AttrValue(&attr)
		a.Attributes = append(a.Attributes, &api.Attribute{Name: sai.BridgePortAttrName(id), Value: sai.FormatBridgePortAttrValue(attr)})
	}
	return a
}

func (s *Server) CreateBridge(ctx context.Context, r *api.CreateBridgeRequest) (*api.Bridge, error) {
	attrs, err := parseBridgeAttrs(r.Attributes)
	if err != nil {
		return nil, toGrpcError(err)
	}
	id, err := s.bridgeServer.CreateBridge(attrs)
	if err != nil {
		return nil, toGrpcError(err)
	}
	b, err := s.bridgeServer.BridgeInfo(id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	return s.toApiBridge(&b), nil
}

func (s *Server) DeleteBridge(ctx context.Context, r *api.DeleteBridgeRequest) (*api.Empty, error) {
	id, err := parseID(r.Id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	return &api.Empty{}, toGrpcError(s.bridgeServer.RemoveBridge(id))
}

func (s *Server) ListBridge(r *api.ListBridgeRequest, stream api.GosaiApi_ListBridgeServer) error {
	var ids []sai.ObjectID
	if r.Id != "" {
		id, err := parseID(r.Id)
		if err != nil {
			return toGrpcError(err)
		}
		ids = []sai.ObjectID{id}
	} else {
		var err error
		ids, err = listAll(s.bridgeServer.BridgeCount, s.bridgeServer.ListBridges)
		if err != nil {
			return toGrpcError(err)
		}
	}
	for _, id := range ids {
		b, err := s.bridgeServer.BridgeInfo(id)
		if err != nil {
			if r.Id != "" {
				return toGrpcError(err)
			}
			continue
		}
		if err := stream.Send(s.toApiBridge(&b)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) SetBridge(ctx context.Context, r *api.SetBridgeRequest) (*api.Empty, error) {
	id, err := parseID(r.Id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	attr, err := parseBridgeAttr(r.Attribute)
	if err != nil {
		return nil, toGrpcError(err)
	}
	return &api.Empty{}, toGrpcError(s.bridgeServer.SetBridgeAttribute(id, attr))
}

func (s *Server) CreateBridgePort(ctx context.Context, r *api.CreateBridgePortRequest) (*api.BridgePort, error) {
	attrs, err := parseBridgePortAttrs(r.Attributes)
	if err != nil {
		return nil, toGrpcError(err)
	}
	id, err := s.bridgeServer.CreateBridgePort(attrs)
	if err != nil {
		return nil, toGrpcError(err)
	}
	bp, err := s.bridgeServer.BridgePortInfo(id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	return toApiBridgePort(&bp), nil
}

func (s *Server) DeleteBridgePort(ctx context.Context, r *api.DeleteBridgePortRequest) (*api.Empty, error) {
	id, err := parseID(r.Id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	return &api.Empty{}, toGrpcError(s.bridgeServer.RemoveBridgePort(id))
}

func (s *Server) ListBridgePort(r *api.ListBridgePortRequest, stream api.GosaiApi_ListBridgePortServer) error {
	var ids []sai.ObjectID
	switch {
	case r.Id != "":
		id, err := parseID(r.Id)
		if err != nil {
			return toGrpcError(err)
		}
		ids = []sai.ObjectID{id}
	case r.Bridge != "":
		bridge, err := parseID(r.Bridge)
		if err != nil {
			return toGrpcError(err)
		}
		ids = s.bridgeServer.BridgePortsOf(bridge)
	default:
		var err error
		ids, err = listAll(s.bridgeServer.BridgePortCount, s.bridgeServer.ListBridgePorts)
		if err != nil {
			return toGrpcError(err)
		}
	}
	for _, id := range ids {
		bp, err := s.bridgeServer.BridgePortInfo(id)
		if err != nil {
			if r.Id != "" {
				return toGrpcError(err)
			}
			continue
		}
		if err := stream.Send(toApiBridgePort(&bp)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) SetBridgePort(ctx context.Context, r *api.SetBridgePortRequest) (*api.Empty, error) {
	id, err := parseID(r.Id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	attr, err := parseBridgePortAttr(r.Attribute)
	if err != nil {
		return nil, toGrpcError(err)
	}
	return &api.Empty{}, toGrpcError(s.bridgeServer.SetBridgePortAttribute(id, attr))
}

func toApiBridgePortEvent(ev *BridgePortEvent) *api.BridgePortEvent {
	a := &api.BridgePortEvent{
		Type:       ev.Type.String(),
		BridgePort: toApiBridgePort(&ev.BridgePort),
	}
	if ev.Type == BridgePortEventLagModify {
		a.Lag = ev.Lag.String()
		a.Add = ev.Add
		a.Ports = idStrings(ev.Ports)
	}
	return a
}

func (s *Server) MonitorBridgePort(r *api.MonitorBridgePortRequest, stream api.GosaiApi_MonitorBridgePortServer) error {
	types := sai.AllBridgePortTypes
	if len(r.Types) > 0 {
		types = 0
		for _, name := range r.Types {
			t, err := sai.ParseBridgePortType(name)
			if err != nil {
				return toGrpcError(sai.WrapError(sai.StatusInvalidParameter, err, "monitor"))
			}
			types |= t.Bit()
		}
	}
	w, err := s.bridgeServer.Watch(types)
	if err != nil {
		return toGrpcError(err)
	}
	defer w.Stop()

	for {
		select {
		case ev := <-w.Event():
			if err := stream.Send(toApiBridgePortEvent(ev)); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func (s *Server) Dump(ctx context.Context, r *api.DumpRequest) (*api.DumpResponse, error) {
	var buf bytes.Buffer
	if r.Id == "" {
		s.bridgeServer.DumpAll(&buf)
		return &api.DumpResponse{Text: buf.String()}, nil
	}
	id, err := parseID(r.Id)
	if err != nil {
		return nil, toGrpcError(err)
	}
	switch id.Type() {
	case sai.ObjectTypeBridge:
		err = s.bridgeServer.DumpBridge(&buf, id)
	case sai.ObjectTypeBridgePort:
		err = s.bridgeServer.DumpBridgePort(&buf, id)
	default:
		err = sai.NewError(sai.StatusInvalidObjectType, "%s", id)
	}
	if err != nil {
		return nil, toGrpcError(err)
	}
	return &api.DumpResponse{Text: buf.String()}, nil
}

func (s *Server) SetLogLevel(ctx context.Context, r *api.SetLogLevelRequest) (*api.Empty, error) {
	lvl, err := logrus.ParseLevel(r.Level)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.bridgeServer.logger.SetLevel(log.LogLevel(lvl))
	s.bridgeServer.logger.Info("log level changed", log.Fields{
		"Topic": "grpc",
		"Level": lvl,
	})
	return &api.Empty{}, nil
}
