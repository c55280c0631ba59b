// Package transport maps between wire protocol messages and core commands
// and events. The TCP and WebSocket transports share it.
package transport

import (
	"time"

	"github.com/roomchat/roomchat-server/internal/core"
	"github.com/roomchat/roomchat-server/internal/proto"
)

// InboundToCommand translates a decoded wire message into a hub command.
// A non-nil CoreError means the message was understood but invalid; the
// caller replies with it and keeps the connection open.
func InboundToCommand(client *core.Client, in *proto.Inbound) (*core.Command, *core.CoreError) {
	switch in.Type {
	case proto.TypeSetName:
		return &core.Command{
			Kind:   core.CommandSetName,
			Client: client,
			Name:   in.Name,
		}, nil
	case proto.TypeJoinRoom:
		return &core.Command{
			Kind:   core.CommandJoinRoom,
			Client: client,
			Room:   in.Room,
		}, nil
	case proto.TypeLeaveRoom:
		return &core.Command{
			Kind:   core.CommandLeaveRoom,
			Client: client,
		}, nil
	case proto.TypeMsg:
		return &core.Command{
			Kind:   core.CommandSendRoomMessage,
			Client: client,
			Room:   in.Room,
			Text:   in.Message,
		}, nil
	case proto.TypePM:
		if in.To == "" {
			return nil, &core.CoreError{Code: core.ErrCodeBadRequest, Message: "Recipient is required."}
		}
		return &core.Command{
			Kind:   core.CommandSendPrivate,
			Client: client,
			To:     in.To,
			Text:   in.Message,
		}, nil
	case proto.TypeFile:
		return &core.Command{
			Kind:     core.CommandSendFile,
			Client:   client,
			Room:     in.Room,
			To:       in.To,
			Filename: in.Filename,
			Data:     in.Data,
		}, nil
	case proto.TypeListReq:
		return &core.Command{
			Kind:   core.CommandListUsers,
			Client: client,
		}, nil
	case proto.TypeListRoomsReq:
		return &core.Command{
			Kind:   core.CommandListRooms,
			Client: client,
		}, nil
	case proto.TypeHistoryReq:
		return &core.Command{
			Kind:   core.CommandHistory,
			Client: client,
			Room:   in.Room,
			Limit:  in.Limit,
		}, nil
	default:
		return nil, &core.CoreError{Code: core.ErrCodeUnsupportedMessage, Message: "Unknown command."}
	}
}

// OutboundFromEvent translates a hub event into a wire message.
func OutboundFromEvent(ev *core.Event) *proto.Outbound {
	switch ev.Kind {
	case core.EventOK:
		return &proto.Outbound{Type: proto.TypeOK, Message: ev.Text}
	case core.EventError:
		return &proto.Outbound{
			Type:    proto.TypeErr,
			Code:    ev.Error.Code,
			Message: ev.Error.Message,
		}
	case core.EventNotice:
		return &proto.Outbound{Type: proto.TypeNotice, Room: ev.Room, Message: ev.Text}
	case core.EventMessage:
		msg := ev.Message
		out := &proto.Outbound{
			Type:    proto.TypeMsg,
			From:    msg.From,
			Room:    msg.Room,
			Private: msg.Private,
			TS:      msg.CreatedAt.Unix(),
		}
		if msg.IsFile() {
			out.Filename = msg.Filename
			out.Data = msg.Body
		} else {
			out.Message = msg.Body
		}
		return out
	case core.EventUserList:
		return &proto.Outbound{Type: proto.TypeList, Room: ev.Room, Users: ev.Users}
	case core.EventRoomList:
		return &proto.Outbound{Type: proto.TypeListRooms, Rooms: ev.Rooms}
	case core.EventHistory:
		entries := make([]proto.HistoryEntry, 0, len(ev.History))
		for _, msg := range ev.History {
			entry := proto.HistoryEntry{
				ID:        msg.ID,
				Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
				From:      msg.From,
			}
			if msg.IsFile() {
				entry.Filename = msg.Filename
				entry.Data = msg.Body
			} else {
				entry.Message = msg.Body
			}
			entries = append(entries, entry)
		}
		return &proto.Outbound{
			Type:      proto.TypeHistory,
			Room:      ev.Room,
			Messages:  entries,
			Truncated: ev.Truncated,
		}
	default:
		return &proto.Outbound{
			Type:    proto.TypeErr,
			Code:    core.ErrCodeUnsupportedMessage,
			Message: "Unknown event.",
		}
	}
}
