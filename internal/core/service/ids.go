package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var transactionIDLimit = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)

// generateTransactionID returns a 16-digit, zero-padded transaction id.
func generateTransactionID() string {
	n, err := rand.Int(rand.Reader, transactionIDLimit)
	if err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%016d", time.Now().UnixNano()%1e16)
	}
	return fmt.Sprintf("%016d", n)
}
