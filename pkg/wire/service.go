package wire

import (
	"context"

	"google.golang.org/grpc"

	"github.com/seawise/seawise/pkg/types"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "seawise.v1.PredictionService"

	// SendPredictionMethod is the full method path used for routing and
	// in interceptors' UnaryServerInfo.
	SendPredictionMethod = "/" + ServiceName + "/SendPrediction"
)

// PredictionServiceServer is implemented by the server-side receiver.
type PredictionServiceServer interface {
	SendPrediction(ctx context.Context, snap *types.PredictionSnapshot) (*types.SendResponse, error)
}

// PredictionServiceClient is the agent-side stub.
type PredictionServiceClient interface {
	SendPrediction(ctx context.Context, snap *types.PredictionSnapshot, opts ...grpc.CallOption) (*types.SendResponse, error)
}

type predictionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPredictionServiceClient returns a client that encodes calls with the
// JSON codec.
func NewPredictionServiceClient(cc grpc.ClientConnInterface) PredictionServiceClient {
	return &predictionServiceClient{cc: cc}
}

func (c *predictionServiceClient) SendPrediction(ctx context.Context, snap *types.PredictionSnapshot, opts ...grpc.CallOption) (*types.SendResponse, error) {
	out := new(types.SendResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, SendPredictionMethod, snap, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterPredictionServiceServer attaches srv to a gRPC server.
func RegisterPredictionServiceServer(s grpc.ServiceRegistrar, srv PredictionServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendPrediction",
			Handler:    sendPredictionHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "seawise/v1/prediction.json",
}

func sendPredictionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(types.PredictionSnapshot)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).SendPrediction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SendPredictionMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).SendPrediction(ctx, req.(*types.PredictionSnapshot))
	}
	return interceptor(ctx, in, info, handler)
}
