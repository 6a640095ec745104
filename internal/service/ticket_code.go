package service

import (
	"crypto/rand"
	"fmt"

	"github.com/spec-kit/support-desk/internal/repository"
)

const (
	ticketCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ticketCodeLength   = 8
	maxCodeAttempts    = 5
)

// CodeGenerator yields candidate ticket codes.
type CodeGenerator func() (string, error)

// RandomTicketCode draws TKT- plus eight uniform characters from [A-Z0-9].
func RandomTicketCode() (string, error) {
	// 252 is the largest multiple of 36 below 256; higher bytes are rejected.
	const limit = 252
	out := make([]byte, 0, ticketCodeLength)
	buf := make([]byte, ticketCodeLength*2)
	for len(out) < ticketCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, ticketCodeAlphabet[int(b)%len(ticketCodeAlphabet)])
			if len(out) == ticketCodeLength {
				break
			}
		}
	}
	return repository.TicketCodePrefix + string(out), nil
}
