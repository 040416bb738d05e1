package deleteengine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteOutcome_HasFailures(t *testing.T) {
	assert.False(t, DeleteOutcome{}.HasFailures())
	assert.True(t, DeleteOutcome{Failed: map[string]error{"a": errors.New("x")}}.HasFailures())
	assert.True(t, DeleteOutcome{Phantoms: []string{"a"}}.HasFailures())
}
