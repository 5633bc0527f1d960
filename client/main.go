package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeIdentify     = 2
	MsgTypeCreateMatch  = 101
	MsgTypeJoinMatch    = 102
	MsgTypeJoinSlot     = 104
	MsgTypePlayerAction = 201
	MsgTypeSaveMatch    = 202
)

// send frames and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return send(c, msgID, data)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	userID := flag.String("user", "", "user ID to identify as")
	nickname := flag.String("nickname", "", "nickname to register")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	if *userID != "" {
		req := map[string]string{"userId": *userID, "nickname": *nickname}
		if err := sendJSON(c, MsgTypeIdentify, req); err != nil {
			log.Println("Write error:", err)
			return
		}
	}

	log.Println("Commands: create | join <CODE> | slot <N> | start | play <throwerSlot> <result> | finish | save | quit")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				err = send(c, MsgTypeCreateMatch, []byte{})
			case "join":
				if len(fields) < 2 {
					log.Println("Usage: join <CODE>")
					continue
				}
				err = sendJSON(c, MsgTypeJoinMatch, map[string]string{"roomCode": strings.ToUpper(fields[1])})
			case "slot":
				if len(fields) < 2 {
					log.Println("Usage: slot <N>")
					continue
				}
				slot, convErr := strconv.Atoi(fields[1])
				if convErr != nil {
					log.Println("Slot must be a number 1-4")
					continue
				}
				err = sendJSON(c, MsgTypeJoinSlot, map[string]int{"slot": slot})
			case "start":
				err = sendJSON(c, MsgTypePlayerAction, map[string]string{"type": "start"})
			case "play":
				if len(fields) < 3 {
					log.Println("Usage: play <throwerSlot> <result>")
					continue
				}
				slot, convErr := strconv.Atoi(fields[1])
				if convErr != nil {
					log.Println("Thrower slot must be a number 1-4")
					continue
				}
				action := map[string]interface{}{
					"type": "play",
					"play": map[string]interface{}{
						"throwingPlayer": slot,
						"throwResult":    fields[2],
					},
				}
				err = sendJSON(c, MsgTypePlayerAction, action)
			case "finish":
				err = sendJSON(c, MsgTypePlayerAction, map[string]string{"type": "finish"})
			case "save":
				err = send(c, MsgTypeSaveMatch, []byte{})
			case "quit":
				return
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
