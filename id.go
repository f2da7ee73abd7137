package main

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

const (
	convoIDShort  = 7
	convoIDMinLen = 4
)

var convoIDReg = regexp.MustCompile(`^[0-9a-f]{40}$`)

func newConversationID() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}
