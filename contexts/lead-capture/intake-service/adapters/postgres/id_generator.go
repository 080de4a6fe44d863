package postgresadapter

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// UUIDGenerator creates lead identifiers. The first 8 hex characters become
// the reference code echoed into notifications.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// SystemRandom hands each submission a freshly seeded randomness stream.
type SystemRandom struct{}

func (SystemRandom) NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
