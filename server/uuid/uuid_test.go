package uuid_test

import (
	"testing"

	"github.com/mirrorcast/mirrorcast/server/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
