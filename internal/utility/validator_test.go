package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidator(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
	}
	v := NewRequestValidator()
	assert.NoError(t, v.Validate(req{Name: "x"}))
	assert.Error(t, v.Validate(req{}))
}
