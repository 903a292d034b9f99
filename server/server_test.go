package server

import (
	"context"
	"log"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"blockfall/tetris"
)

func testSnapshot(t *testing.T) tetris.Snapshot {
	t.Helper()
	s := tetris.NewSession(tetris.DefaultConfig(), tetris.SessionOptions{Rand: rand.New(rand.NewPCG(1, 2))})
	s.Handle(tetris.Start)
	for range 3 {
		s.Handle(tetris.HardDrop)
	}
	s.Handle(tetris.MoveLeft)
	return s.Snapshot()
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	t.Run("playing", func(t *testing.T) {
		t.Parallel()
		want := testSnapshot(t)
		st, err := Encode(want)
		require.NoError(t, err)
		got, err := Decode(st)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("I segments survive", func(t *testing.T) {
		t.Parallel()
		b := tetris.NewTestBoard(tetris.I)
		b.Drop()
		want := b.Snapshot()
		st, err := Encode(want)
		require.NoError(t, err)
		assert.Equal(t, "0000122300", st.GetFields()["segments"].GetListValue().GetValues()[19].GetStringValue())
		got, err := Decode(st)
		require.NoError(t, err)
		assert.Equal(t, want.Stack, got.Stack)
	})

	t.Run("rows are shape letters", func(t *testing.T) {
		t.Parallel()
		b := tetris.NewTestBoard(tetris.J)
		b.Drop()
		st, err := Encode(b.Snapshot())
		require.NoError(t, err)
		rows := st.GetFields()["rows"].GetListValue().GetValues()
		assert.Equal(t, "....J.....", rows[18].GetStringValue())
		assert.Equal(t, "....JJJ...", rows[19].GetStringValue())
	})

	t.Run("no current tetromino", func(t *testing.T) {
		t.Parallel()
		want := testSnapshot(t)
		want.Current = nil
		want.GhostY = 0
		st, err := Encode(want)
		require.NoError(t, err)
		assert.NotContains(t, st.GetFields(), "current")
		got, err := Decode(st)
		require.NoError(t, err)
		assert.Nil(t, got.Current)
	})
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(f map[string]*structpb.Value)
	}{
		{
			name:   "unknown state",
			modify: func(f map[string]*structpb.Value) { f["state"] = structpb.NewStringValue("paused") },
		},
		{
			name:   "missing rows",
			modify: func(f map[string]*structpb.Value) { delete(f, "rows") },
		},
		{
			name: "short row",
			modify: func(f map[string]*structpb.Value) {
				f["rows"].GetListValue().GetValues()[0] = structpb.NewStringValue("...")
			},
		},
		{
			name: "bad color",
			modify: func(f map[string]*structpb.Value) {
				f["rows"].GetListValue().GetValues()[0] = structpb.NewStringValue("Z.........")
				f["colors"].GetListValue().GetValues()[0].GetListValue().GetValues()[0] = structpb.NewStringValue("red")
			},
		},
		{
			name: "segment out of range",
			modify: func(f map[string]*structpb.Value) {
				f["rows"].GetListValue().GetValues()[0] = structpb.NewStringValue("Z.........")
				f["colors"].GetListValue().GetValues()[0].GetListValue().GetValues()[0] = structpb.NewStringValue("#ff0000")
				f["segments"].GetListValue().GetValues()[0] = structpb.NewStringValue("9000000000")
			},
		},
		{
			name: "segment not a digit",
			modify: func(f map[string]*structpb.Value) {
				f["rows"].GetListValue().GetValues()[0] = structpb.NewStringValue("Z.........")
				f["colors"].GetListValue().GetValues()[0].GetListValue().GetValues()[0] = structpb.NewStringValue("#ff0000")
				f["segments"].GetListValue().GetValues()[0] = structpb.NewStringValue("x000000000")
			},
		},
		{
			name: "zero width grid",
			modify: func(f map[string]*structpb.Value) {
				f["next"].GetStructValue().GetFields()["grid"] = structpb.NewListValue(&structpb.ListValue{
					Values: []*structpb.Value{structpb.NewStringValue("")},
				})
			},
		},
		{
			name: "ragged grid",
			modify: func(f map[string]*structpb.Value) {
				f["current"].GetStructValue().GetFields()["grid"] = structpb.NewListValue(&structpb.ListValue{
					Values: []*structpb.Value{structpb.NewStringValue("##"), structpb.NewStringValue("#")},
				})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st, err := Encode(testSnapshot(t))
			require.NoError(t, err)
			tt.modify(st.Fields)
			_, err = Decode(st)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFeed(t *testing.T) {
	t.Parallel()
	b := tetris.NewTestBoard(tetris.T)
	first := b.Snapshot()
	b.TryMove(1, 0)
	second := b.Snapshot()

	t.Run("new subscribers get the latest snapshot", func(t *testing.T) {
		t.Parallel()
		f := NewFeed(nil)
		f.Publish(first)
		_, ch, cancel := f.Subscribe()
		defer cancel()
		got, err := Decode(<-ch)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	})

	t.Run("stale snapshots are replaced", func(t *testing.T) {
		t.Parallel()
		f := NewFeed(nil)
		_, ch, cancel := f.Subscribe()
		defer cancel()
		f.Publish(first)
		f.Publish(second)
		got, err := Decode(<-ch)
		require.NoError(t, err)
		assert.Equal(t, second, got)
		select {
		case msg := <-ch:
			assert.Failf(t, "unexpected message", "wanted nothing else waiting, got %v", msg)
		default:
		}
	})

	t.Run("repeated snapshots are dropped", func(t *testing.T) {
		t.Parallel()
		f := NewFeed(nil)
		_, ch, cancel := f.Subscribe()
		defer cancel()
		f.Publish(first)
		<-ch
		f.Publish(first)
		select {
		case <-ch:
			assert.Fail(t, "wanted the repeated snapshot to be dropped")
		default:
		}
	})

	t.Run("cancel and close end subscriptions", func(t *testing.T) {
		t.Parallel()
		f := NewFeed(nil)
		_, ch1, cancel1 := f.Subscribe()
		_, ch2, cancel2 := f.Subscribe()
		defer cancel2()
		assert.Equal(t, 2, f.Subscribers())

		cancel1()
		cancel1()
		_, ok := <-ch1
		assert.False(t, ok)
		assert.Equal(t, 1, f.Subscribers())

		f.Close()
		_, ok = <-ch2
		assert.False(t, ok)
		assert.Zero(t, f.Subscribers())

		_, ch3, _ := f.Subscribe()
		_, ok = <-ch3
		assert.False(t, ok, "subscribing to a closed feed")
		f.Publish(second)
	})
}

func TestWatch(t *testing.T) {
	t.Parallel()
	b := tetris.NewTestBoard(tetris.L)
	first := b.Snapshot()
	b.TryRotate()
	second := b.Snapshot()

	t.Run("spectator follows the game until the feed closes", func(t *testing.T) {
		t.Parallel()
		feed := NewFeed(nil)
		feed.Publish(first)
		client, closer := testServer(t, feed)
		defer closer()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snapCh, errCh := client.Watch(ctx, "tester")

		require.Equal(t, first, <-snapCh)
		require.Eventually(t, func() bool { return feed.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
		feed.Publish(second)
		require.Equal(t, second, <-snapCh)

		feed.Close()
		_, ok := <-snapCh
		assert.False(t, ok)
		assert.NoError(t, <-errCh)
	})

	t.Run("spectator leaves", func(t *testing.T) {
		t.Parallel()
		feed := NewFeed(nil)
		feed.Publish(first)
		client, closer := testServer(t, feed)
		defer closer()

		ctx, cancel := context.WithCancel(context.Background())
		snapCh, errCh := client.Watch(ctx, "tester")
		<-snapCh
		cancel()

		for range snapCh {
		}
		assert.NoError(t, <-errCh)
		assert.Eventually(t, func() bool { return feed.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
	})
}

func testServer(t *testing.T, feed *Feed) (*Client, func()) {
	t.Helper()
	buffer := 101024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	New(feed, nil).Register(s)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		s.Stop()
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
	}
	return NewClient(conn, nil), closer
}
