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

package gosaiapi

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "gosaiapi.GosaiApi"

type GosaiApiServer interface {
	CreateBridge(context.Context, *CreateBridgeRequest) (*Bridge, error)
	DeleteBridge(context.Context, *DeleteBridgeRequest) (*Empty, error)
	ListBridge(*ListBridgeRequest, GosaiApi_ListBridgeServer) error
	SetBridge(context.Context, *SetBridgeRequest) (*Empty, error)
	CreateBridgePort(context.Context, *CreateBridgePortRequest) (*BridgePort, error)
	DeleteBridgePort(context.Context, *DeleteBridgePortRequest) (*Empty, error)
	ListBridgePort(*ListBridgePortRequest, GosaiApi_ListBridgePortServer) error
	SetBridgePort(context.Context, *SetBridgePortRequest) (*Empty, error)
	MonitorBridgePort(*MonitorBridgePortRequest, GosaiApi_MonitorBridgePortServer) error
	Dump(context.Context, *DumpRequest) (*DumpResponse, error)
	SetLogLevel(context.Context, *SetLogLevelRequest) (*Empty, error)
}

func RegisterGosaiApiServer(s *grpc.Server, srv GosaiApiServer) {
	s.RegisterService(&GosaiApi_ServiceDesc, srv)
}

type GosaiApi_ListBridgeServer interface {
	Send(*Bridge) error
	grpc.ServerStream
}

type GosaiApi_ListBridgePortServer interface {
	Send(*BridgePort) error
	grpc.ServerStream
}

type GosaiApi_MonitorBridgePortServer interface {
	Send(*BridgePortEvent) error
	grpc.ServerStream
}

type streamSender[T any] struct {
	grpc.ServerStream
}

func (x *streamSender[T]) Send(m *T) error {
	return x.ServerStream.SendMsg(m)
}

func unaryHandler[Req any](call func(srv interface{}, ctx context.Context, req *Req) (interface{}, error), method string) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _GosaiApi_ListBridge_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(ListBridgeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GosaiApiServer).ListBridge(m, &streamSender[Bridge]{stream})
}

func _GosaiApi_ListBridgePort_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(ListBridgePortRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GosaiApiServer).ListBridgePort(m, &streamSender[BridgePort]{stream})
}

func _GosaiApi_MonitorBridgePort_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(MonitorBridgePortRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GosaiApiServer).MonitorBridgePort(m, &streamSender[BridgePortEvent]{stream})
}

var GosaiApi_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*GosaiApiServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateBridge",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *CreateBridgeRequest) (interface{}, error) {
				return srv.(GosaiApiServer).CreateBridge(ctx, req)
			}, "CreateBridge"),
		},
		{
			MethodName: "DeleteBridge",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *DeleteBridgeRequest) (interface{}, error) {
				return srv.(GosaiApiServer).DeleteBridge(ctx, req)
			}, "DeleteBridge"),
		},
		{
			MethodName: "SetBridge",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *SetBridgeRequest) (interface{}, error) {
				return srv.(GosaiApiServer).SetBridge(ctx, req)
			}, "SetBridge"),
		},
		{
			MethodName: "CreateBridgePort",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *CreateBridgePortRequest) (interface{}, error) {
				return srv.(GosaiApiServer).CreateBridgePort(ctx, req)
			}, "CreateBridgePort"),
		},
		{
			MethodName: "DeleteBridgePort",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *DeleteBridgePortRequest) (interface{}, error) {
				return srv.(GosaiApiServer).DeleteBridgePort(ctx, req)
			}, "DeleteBridgePort"),
		},
		{
			MethodName: "SetBridgePort",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *SetBridgePortRequest) (interface{}, error) {
				return srv.(GosaiApiServer).SetBridgePort(ctx, req)
			}, "SetBridgePort"),
		},
		{
			MethodName: "Dump",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *DumpRequest) (interface{}, error) {
				return srv.(GosaiApiServer).Dump(ctx, req)
			}, "Dump"),
		},
		{
			MethodName: "SetLogLevel",
			Handler: unaryHandler(func(srv interface{}, ctx context.Context, req *SetLogLevelRequest) (interface{}, error) {
				return srv.(GosaiApiServer).SetLogLevel(ctx, req)
			}, "SetLogLevel"),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ListBridge",
			Handler:       _GosaiApi_ListBridge_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "ListBridgePort",
			Handler:       _GosaiApi_ListBridgePort_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "MonitorBridgePort",
			Handler:       _GosaiApi_MonitorBridgePort_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "gosai",
}
