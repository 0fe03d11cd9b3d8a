package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavshah/duty-roster-api/pkg/config"
)

func TestKey(t *testing.T) {
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "roster:ratelimit:key:7:2024-03-02", Key("key:7", late))
}

func TestNewLimiterUnreachable(t *testing.T) {
	l, err := NewLimiter(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, l)
}
