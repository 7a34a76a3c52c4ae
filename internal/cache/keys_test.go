package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "mlbstats:payload:777001", payloadKey(777001))
	assert.Equal(t, "mlbstats:lock:ingest", lockKey("ingest"))
}
