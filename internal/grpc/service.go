package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the caption service.
const ServiceName = "captionexport.v1.CaptionService"

const (
	ListCaptionsMethod  = "/" + ServiceName + "/ListCaptions"
	RenderCaptionMethod = "/" + ServiceName + "/RenderCaption"
	RunBatchMethod      = "/" + ServiceName + "/RunBatch"
)

// CaptionServiceServer is the server API of the caption service. Every message is a
// google.protobuf.Struct; the field names are listed on each handler.
type CaptionServiceServer interface {
	ListCaptions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RenderCaption(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RunBatch(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// RegisterCaptionServiceServer registers srv on s.
func RegisterCaptionServiceServer(s grpc.ServiceRegistrar, srv CaptionServiceServer) {
	s.RegisterService(&CaptionServiceDesc, srv)
}

// CaptionServiceDesc describes the caption service for grpc.Server.
var CaptionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CaptionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCaptions", Handler: listCaptionsHandler},
		{MethodName: "RenderCaption", Handler: renderCaptionHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "RunBatch", Handler: runBatchHandler, ServerStreams: true},
	},
	Metadata: "captionexport/v1/caption_service.proto",
}

func listCaptionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CaptionServiceServer).ListCaptions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListCaptionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CaptionServiceServer).ListCaptions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func renderCaptionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CaptionServiceServer).RenderCaption(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RenderCaptionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CaptionServiceServer).RenderCaption(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func runBatchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(CaptionServiceServer).RunBatch(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// CaptionServiceClient is the client API of the caption service.
type CaptionServiceClient interface {
	ListCaptions(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RenderCaption(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RunBatch(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type captionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCaptionServiceClient creates a client over cc.
func NewCaptionServiceClient(cc grpc.ClientConnInterface) CaptionServiceClient {
	return &captionServiceClient{cc: cc}
}

func (c *captionServiceClient) ListCaptions(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListCaptionsMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *captionServiceClient) RenderCaption(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RenderCaptionMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *captionServiceClient) RunBatch(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &CaptionServiceDesc.Streams[0], RunBatchMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
