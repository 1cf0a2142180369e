package postgresadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SystemClock reports UTC time at the microsecond precision timestamptz
// keeps, so a vote time read back from the table equals the one written.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// UUIDGenerator issues article, vote and outbox event ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
