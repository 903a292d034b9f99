// Package server streams a running game to spectators over gRPC.
//
// The service has a single server streaming method, Watch. Messages are
// google.protobuf.Struct values, so no generated code is needed on either
// side: see Encode for the layout of a snapshot.
package server

import (
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "blockfall.Spectator"
	watchMethod = "/" + ServiceName + "/Watch"
)

type SpectatorServer interface {
	Watch(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SpectatorServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "blockfall/spectator",
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(SpectatorServer).Watch(req, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

type Server struct {
	feed   *Feed
	logger *slog.Logger
}

func New(feed *Feed, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{feed: feed, logger: logger}
}

func (s *Server) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&ServiceDesc, s)
}

// Watch sends the latest snapshot right away and then every new one until
// the spectator leaves or the feed is closed.
func (s *Server) Watch(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	name := req.GetFields()["name"].GetStringValue()
	id, ch, cancel := s.feed.Subscribe()
	defer cancel()
	s.logger.Info("spectator joined", slog.String("id", id.String()), slog.String("name", name))
	defer s.logger.Info("spectator gone", slog.String("id", id.String()), slog.String("name", name))

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(msg); err != nil {
				return fmt.Errorf("unable to send snapshot: %w", err)
			}
		}
	}
}
