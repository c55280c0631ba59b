package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil, Options{})
	go hub.Run(ctx)

	// Queues sized so join-time fan-out cannot overflow anyone before the
	// drain goroutines start.
	queue := recipients*4 + 16

	sender := NewClient("sender", queue)
	hub.RegisterClient(sender)
	hub.Send(&Command{Kind: CommandSetName, Client: sender, Name: "sender"})
	hub.Send(&Command{Kind: CommandJoinRoom, Client: sender, Room: "bench"})

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		c := NewClient(fmt.Sprintf("c%d", i), queue)
		hub.RegisterClient(c)
		hub.Send(&Command{Kind: CommandSetName, Client: c, Name: fmt.Sprintf("u%d", i)})
		hub.Send(&Command{Kind: CommandJoinRoom, Client: c, Room: "bench"})
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Send(&Command{Kind: CommandSendRoomMessage, Client: sender, Text: "payload"})
		for {
			ev := <-target.Events
			if ev.Kind == EventMessage {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
