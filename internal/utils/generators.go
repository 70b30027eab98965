package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateTicketNumber produces a human-readable ticket number, unique
// enough for display and support lookups (the ticket id is the real key).
func GenerateTicketNumber() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("TIX-%d-%06d", timestamp, randomNum.Int64())
}

// GenerateNotificationID creates an id for in-app notification rows.
func GenerateNotificationID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("ntf_%d_%09d", timestamp, randomNum.Int64())
}
