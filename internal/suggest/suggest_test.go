package suggest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treegrove/grove/internal/suggest"
)

func TestClosest(t *testing.T) {
	candidates := []string{"devices", "detector", "data"}

	assert.Equal(t, "devices", suggest.Closest("device", candidates))
	assert.Equal(t, "detector", suggest.Closest("detecter", candidates))
	assert.Equal(t, "", suggest.Closest("completely_different", candidates))
	assert.Equal(t, "", suggest.Closest("device", nil))
}

func TestDidYouMean(t *testing.T) {
	assert.Equal(t, `did you mean "devices"?`, suggest.DidYouMean("device", []string{"devices"}))
	assert.Equal(t, "", suggest.DidYouMean("zzzzzzzz", []string{"devices"}))
}
