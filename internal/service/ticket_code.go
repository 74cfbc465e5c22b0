package service

import (
	"fmt"
	"math/rand"
	"time"
)

// CodeGenerator выдаёт код нового билета
type CodeGenerator func() string

// TicketCode формирует код вида T-<unix millis>-<0..999>
func TicketCode(now time.Time, n int) string {
	return fmt.Sprintf("T-%d-%d", now.UnixMilli(), n)
}

func defaultTicketCode() string {
	return TicketCode(time.Now(), rand.Intn(1000))
}
