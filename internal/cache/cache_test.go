package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchKey(t *testing.T) {
	assert.Equal(t, "proofpop:batch:site-1::10", BatchKey("site-1", "", 10))
	assert.Equal(t, "proofpop:batch:site-1:w1:5", BatchKey("site-1", "w1", 5))
	assert.NotEqual(t, BatchKey("site-1", "", 5), BatchKey("site-1", "", 10))
}
