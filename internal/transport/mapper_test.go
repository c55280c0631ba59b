package transport

import (
	"testing"
	"time"

	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/proto"
)

func TestInboundToCommandKinds(t *testing.T) {
	client := core.NewClient("c1", 0)

	tests := []struct {
		name string
		in   proto.Inbound
		kind core.CommandKind
	}{
		{name: "setname", in: proto.Inbound{Type: proto.TypeSetName, Name: "alice"}, kind: core.CommandSetName},
		{name: "join", in: proto.Inbound{Type: proto.TypeJoinRoom, Room: "Lobby"}, kind: core.CommandJoinRoom},
		{name: "leave", in: proto.Inbound{Type: proto.TypeLeaveRoom}, kind: core.CommandLeaveRoom},
		{name: "msg", in: proto.Inbound{Type: proto.TypeMsg, Room: "Lobby", Message: "hi"}, kind: core.CommandSendRoomMessage},
		{name: "pm", in: proto.Inbound{Type: proto.TypePM, To: "bob", Message: "psst"}, kind: core.CommandSendPrivate},
		{name: "file", in: proto.Inbound{Type: proto.TypeFile, Filename: "a.txt", Data: "aGk="}, kind: core.CommandSendFile},
		{name: "listreq", in: proto.Inbound{Type: proto.TypeListReq}, kind: core.CommandListUsers},
		{name: "listroomsreq", in: proto.Inbound{Type: proto.TypeListRoomsReq}, kind: core.CommandListRooms},
		{name: "historyreq", in: proto.Inbound{Type: proto.TypeHistoryReq, Room: "Lobby", Limit: 10}, kind: core.CommandHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, cerr := InboundToCommand(client, &tt.in)
			if cerr != nil {
				t.Fatalf("unexpected error: %+v", cerr)
			}
			if cmd.Kind != tt.kind {
				t.Fatalf("expected kind %v, got %v", tt.kind, cmd.Kind)
			}
			if cmd.Client != client {
				t.Fatal("command lost its client")
			}
		})
	}
}

func TestInboundToCommandRejectsUnknownType(t *testing.T) {
	client := core.NewClient("c1", 0)

	_, cerr := InboundToCommand(client, &proto.Inbound{Type: "SHOUT"})
	if cerr == nil || cerr.Code != core.ErrCodeUnsupportedMessage {
		t.Fatalf("expected unsupported_message, got %+v", cerr)
	}
}

func TestInboundToCommandRejectsPMWithoutRecipient(t *testing.T) {
	client := core.NewClient("c1", 0)

	_, cerr := InboundToCommand(client, &proto.Inbound{Type: proto.TypePM, Message: "hi"})
	if cerr == nil || cerr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", cerr)
	}
}

func TestOutboundFromEventTextMessage(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	out := OutboundFromEvent(&core.Event{
		Kind: core.EventMessage,
		Room: "Lobby",
		Message: &core.Message{
			Room:      "Lobby",
			From:      "alice",
			Body:      "hi",
			CreatedAt: ts,
		},
	})
	if out.Type != proto.TypeMsg || out.From != "alice" || out.Message != "hi" || out.TS != ts.Unix() {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	if out.Filename != "" || out.Data != "" {
		t.Fatalf("text message leaked file fields: %+v", out)
	}
}

func TestOutboundFromEventFileMessage(t *testing.T) {
	out := OutboundFromEvent(&core.Event{
		Kind: core.EventMessage,
		Message: &core.Message{
			From:      "alice",
			To:        "bob",
			Body:      "aGk=",
			Filename:  "hi.txt",
			Private:   true,
			CreatedAt: time.Now(),
		},
	})
	if out.Filename != "hi.txt" || out.Data != "aGk=" || !out.Private {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	if out.Message != "" {
		t.Fatalf("file message must not set message text: %+v", out)
	}
}

func TestOutboundFromEventHistory(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	out := OutboundFromEvent(&core.Event{
		Kind: core.EventHistory,
		Room: "Lobby",
		History: []*core.Message{
			{ID: 1, From: "alice", Body: "hi", CreatedAt: ts},
			{ID: 2, From: "bob", Body: "aGk=", Filename: "hi.txt", CreatedAt: ts},
		},
	})
	if out.Type != proto.TypeHistory || out.Room != "Lobby" || len(out.Messages) != 2 {
		t.Fatalf("unexpected outbound: %+v", out)
	}
	if out.Messages[0].Message != "hi" || out.Messages[0].Timestamp != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected first entry: %+v", out.Messages[0])
	}
	if out.Messages[1].Filename != "hi.txt" || out.Messages[1].Data != "aGk=" || out.Messages[1].Message != "" {
		t.Fatalf("unexpected file entry: %+v", out.Messages[1])
	}
}

func TestOutboundFromEventError(t *testing.T) {
	out := OutboundFromEvent(&core.Event{
		Kind:  core.EventError,
		Error: &core.CoreError{Code: core.ErrCodeNameTaken, Message: "Name already taken."},
	})
	if out.Type != proto.TypeErr || out.Code != core.ErrCodeNameTaken {
		t.Fatalf("unexpected outbound: %+v", out)
	}
}
