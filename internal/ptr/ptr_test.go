package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeref(t *testing.T) {
	assert.Equal(t, 3, Deref(To(3), 7))
	assert.Equal(t, 7, Deref[int](nil, 7))
	assert.Equal(t, "", Deref(To(""), "default"), "a set zero value wins")
}
