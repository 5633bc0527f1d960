package match

import (
	"math/rand"
	"regexp"
)

// RoomCodeLength is the length of the human-shareable join code.
const RoomCodeLength = 6

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// GenerateRoomCode draws a 6-character code uniformly from [A-Z0-9]. The
// code doubles as the store's lookup key for the live session.
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

// ValidRoomCode reports whether a client-supplied code has the expected
// shape before it is used as a store key.
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}
