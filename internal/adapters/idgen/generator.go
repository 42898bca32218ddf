// Package idgen produces the identifiers stamped onto staging records.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

type Generator struct{}

func New() *Generator { return &Generator{} }

func (g *Generator) TransactionID() string {
	return uuid.NewString()
}

// ControlNumber returns a 9-digit numeric string. Interchange control
// numbers are fixed-width, so the value is zero-padded.
func (g *Generator) ControlNumber() string {
	max := big.NewInt(1_000_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		return fmt.Sprintf("%09d", uuid.New().ID()%1_000_000_000)
	}
	return fmt.Sprintf("%09d", n.Int64())
}
