package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/medguide-be/types"
)

// WebSocketService exposes the answer pipeline over a websocket
// connection for interactive front ends.
type WebSocketService struct {
	chat     *ChatService
	upgrader websocket.Upgrader
}

func NewWebSocketService(chat *ChatService) *WebSocketService {
	return &WebSocketService{
		chat: chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Unmarshal error:", err)
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Marshal error:", err)
			continue
		}

		switch req.Type {
		case types.TypeWebsocketAsk:
			var payload types.WebSocketAskPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				log.Println("Unmarshal error:", err)
				conn.WriteMessage(messageType, []byte("Error processing message"))
				continue
			}
			answer, retrieved, err := s.chat.Answer(ctx, payload.Question, payload.UserID, payload.SessionID)
			if err != nil {
				log.Println("Answer error:", err)
				errRes := types.WebSocketResponse{
					Type:    types.TypeWebsocketError,
					Payload: err.Error(),
				}
				conn.WriteJSON(errRes)
				continue
			}
			res := types.WebSocketResponse{
				Type: types.TypeWebsocketAsk,
				Payload: types.WebSocketAskResponse{
					Answer:        answer,
					RetrievedDocs: retrieved,
				},
			}
			if err := conn.WriteJSON(res); err != nil {
				log.Println("Write error:", err)
			}
		case types.TypeWebsocketPing:
			pongRes := types.WebSocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type")
		}
	}
}
