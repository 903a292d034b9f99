package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"blockfall/tetris"
)

// Dial opens a plaintext connection to a spectator server.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	return conn, nil
}

type Client struct {
	conn   grpc.ClientConnInterface
	logger *slog.Logger
}

func NewClient(conn grpc.ClientConnInterface, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{conn: conn, logger: logger}
}

// Watch subscribes to the game feed. Snapshots arrive on the first channel
// until the stream ends; both channels are closed then. The error channel
// carries at most one error; a clean end or a cancelled ctx carries none.
func (c *Client) Watch(ctx context.Context, name string) (<-chan tetris.Snapshot, <-chan error) {
	snapCh := make(chan tetris.Snapshot)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(snapCh)
		if err := c.watch(ctx, name, snapCh); err != nil {
			errCh <- err
		}
	}()
	return snapCh, errCh
}

func (c *Client) watch(ctx context.Context, name string, out chan<- tetris.Snapshot) error {
	cs, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], watchMethod)
	if err != nil {
		return fmt.Errorf("unable to open Watch stream: %w", err)
	}
	stream := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: cs}

	req, err := structpb.NewStruct(map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("unable to build Watch request: %w", err)
	}
	if err := stream.SendMsg(req); err != nil {
		return fmt.Errorf("unable to send Watch request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("unable to close the send direction: %w", err)
	}

	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Debug("stream.Recv() closed with EOF")
				return nil
			}
			if st, ok := status.FromError(err); ok && st.Code() == codes.Canceled {
				c.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
				return nil
			}
			return fmt.Errorf("unable to receive snapshot: %w", err)
		}
		snap, err := Decode(msg)
		if err != nil {
			return err
		}
		select {
		case out <- snap:
		case <-ctx.Done():
			return nil
		}
	}
}
