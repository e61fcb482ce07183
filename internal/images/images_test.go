package images

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery(t *testing.T) {
	assert.Equal(t, "Japan food temples Luxury", Query("Japan", []string{"food", "temples"}, "Luxury"))
	assert.Equal(t, "Peru Relaxed", Query("Peru", nil, "Relaxed"))
	assert.Equal(t, "Italy art Cultural", Query(" Italy ", []string{"", "art "}, "Cultural"))
}

func TestNoop(t *testing.T) {
	got := Noop{}.Search(context.Background(), "anything")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
