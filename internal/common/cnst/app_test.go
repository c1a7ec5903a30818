package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConstants(t *testing.T) {
	assert.Equal(t, "catalog", AppName)
	assert.Equal(t, "apiserver", CommandName)
}
