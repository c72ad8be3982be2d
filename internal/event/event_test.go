package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "ScanStarted", ScanStarted.String())
	assert.Equal(t, "PairCompared", PairCompared.String())
	assert.Equal(t, "RunComplete", RunComplete.String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(99).String())
}
