package msgauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	GitCommit = ""
	assert.Equal(t, "v0.1.0-dev", Version())

	GitCommit = "12345678"
	defer func() { GitCommit = "" }()
	assert.Equal(t, "v0.1.0-dev 12345678", Version())
}
