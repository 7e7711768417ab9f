package msgauth

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextLogger(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(bg))

	var buf bytes.Buffer
	logger := log.NewTMLogger(&buf)
	ctx := WithLogger(bg, logger)
	assert.Equal(t, logger, GetLogger(ctx))

	// Extending the info does not modify the parent context.
	ctx2 := WithLogInfo(ctx, "hash", "0xabc")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(ctx2))

	GetLogger(ctx2).Info("confirmed")
	assert.True(t, strings.Contains(buf.String(), "hash=0xabc"), buf.String())
}
