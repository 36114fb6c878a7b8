package utils

import (
	"errors"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// RoomCodeAlphabet 排除容易混淆的 0/O、1/I
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 6
)

var ErrInvalidRoomCode = errors.New("room code must be 6 characters")

// GenerateRoomCode 產生 6 碼房間代碼；唯一性由資料庫的唯一索引保證
func GenerateRoomCode() (string, error) {
	return gonanoid.Generate(RoomCodeAlphabet, RoomCodeLength)
}

// NormalizeRoomCode 去除空白並轉成大寫，只檢查長度
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != RoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}
