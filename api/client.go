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

type GosaiApiClient interface {
	CreateBridge(ctx context.Context, in *CreateBridgeRequest, opts ...grpc.CallOption) (*Bridge, error)
	DeleteBridge(ctx context.Context, in *DeleteBridgeRequest, opts ...grpc.CallOption) (*Empty, error)
	ListBridge(ctx context.Context, in *ListBridgeRequest, opts ...grpc.CallOption) (GosaiApi_ListBridgeClient, error)
	SetBridge(ctx context.Context, in *SetBridgeRequest, opts ...grpc.CallOption) (*Empty, error)
	CreateBridgePort(ctx context.Context, in *CreateBridgePortRequest, opts ...grpc.CallOption) (*BridgePort, error)
	DeleteBridgePort(ctx context.Context, in *DeleteBridgePortRequest, opts ...grpc.CallOption) (*Empty, error)
	ListBridgePort(ctx context.Context, in *ListBridgePortRequest, opts ...grpc.CallOption) (GosaiApi_ListBridgePortClient, error)
	SetBridgePort(ctx context.Context, in *SetBridgePortRequest, opts ...grpc.CallOption) (*Empty, error)
	MonitorBridgePort(ctx context.Context, in *MonitorBridgePortRequest, opts ...grpc.CallOption) (GosaiApi_MonitorBridgePortClient, error)
	Dump(ctx context.Context, in *DumpRequest, opts ...grpc.CallOption) (*DumpResponse, error)
	SetLogLevel(ctx context.Context, in *SetLogLevelRequest, opts ...grpc.CallOption) (*Empty, error)
}

type GosaiApi_ListBridgeClient interface {
	Recv() (*Bridge, error)
	grpc.ClientStream
}

type GosaiApi_ListBridgePortClient interface {
	Recv() (*BridgePort, error)
	grpc.ClientStream
}

type GosaiApi_MonitorBridgePortClient interface {
	Recv() (*BridgePortEvent, error)
	grpc.ClientStream
}

type gosaiApiClient struct {
	cc grpc.ClientConnInterface
}

func NewGosaiApiClient(cc grpc.ClientConnInterface) GosaiApiClient {
	return &gosaiApiClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

type streamReceiver[T any] struct {
	grpc.ClientStream
}

func (x *streamReceiver[T]) Recv() (*T, error) {
	m := new(T)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func openStream[T any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, in interface{}, opts []grpc.CallOption) (*streamReceiver[T], error) {
	stream, err := cc.NewStream(ctx, desc, "/"+serviceName+"/"+desc.StreamName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &streamReceiver[T]{stream}, nil
}

func (c *gosaiApiClient) CreateBridge(ctx context.Context, in *CreateBridgeRequest, opts ...grpc.CallOption) (*Bridge, error) {
	return invoke[Bridge](ctx, c.cc, "CreateBridge", in, opts)
}

func (c *gosaiApiClient) DeleteBridge(ctx context.Context, in *DeleteBridgeRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteBridge", in, opts)
}

func (c *gosaiApiClient) ListBridge(ctx context.Context, in *ListBridgeRequest, opts ...grpc.CallOption) (GosaiApi_ListBridgeClient, error) {
	return openStream[Bridge](ctx, c.cc, &GosaiApi_ServiceDesc.Streams[0], in, opts)
}

func (c *gosaiApiClient) SetBridge(ctx context.Context, in *SetBridgeRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetBridge", in, opts)
}

func (c *gosaiApiClient) CreateBridgePort(ctx context.Context, in *CreateBridgePortRequest, opts ...grpc.CallOption) (*BridgePort, error) {
	return invoke[BridgePort](ctx, c.cc, "CreateBridgePort", in, opts)
}

func (c *gosaiApiClient) DeleteBridgePort(ctx context.Context, in *DeleteBridgePortRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteBridgePort", in, opts)
}

func (c *gosaiApiClient) ListBridgePort(ctx context.Context, in *ListBridgePortRequest, opts ...grpc.CallOption) (GosaiApi_ListBridgePortClient, error) {
	return openStream[BridgePort](ctx, c.cc, &GosaiApi_ServiceDesc.Streams[1], in, opts)
}

func (c *gosaiApiClient) SetBridgePort(ctx context.Context, in *SetBridgePortRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetBridgePort", in, opts)
}

func (c *gosaiApiClient) MonitorBridgePort(ctx context.Context, in *MonitorBridgePortRequest, opts ...grpc.CallOption) (GosaiApi_MonitorBridgePortClient, error) {
	return openStream[BridgePortEvent](ctx, c.cc, &GosaiApi_ServiceDesc.Streams[2], in, opts)
}

func (c *gosaiApiClient) Dump(ctx context.Context, in *DumpRequest, opts ...grpc.CallOption) (*DumpResponse, error) {
	return invoke[DumpResponse](ctx, c.cc, "Dump", in, opts)
}

func (c *gosaiApiClient) SetLogLevel(ctx context.Context, in *SetLogLevelRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetLogLevel", in, opts)
}
