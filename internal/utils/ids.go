package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TransactionID builds a display-only correlation token: "TXN" + unix millis
// + 9 random base-36 characters. It is not an idempotency key.
func TransactionID(now time.Time) string {
	var b strings.Builder
	b.WriteString("TXN")
	b.WriteString(fmt.Sprintf("%d", now.UnixMilli()))
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return b.String()
}

// BookingReference derives the cosmetic display code "SS" + last 6 digits of
// the unix millis + last 4 id characters, uppercased.
func BookingReference(id string, now time.Time) string {
	millis := fmt.Sprintf("%06d", now.UnixMilli()%1_000_000)
	return strings.ToUpper("SS" + millis + LastN(id, 4))
}
