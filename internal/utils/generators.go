package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GenerateTicketID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("tkt_%d_%06d", timestamp, randomNum.Int64())
}

func GenerateEventID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("evt_%d_%06d", timestamp, randomNum.Int64())
}
