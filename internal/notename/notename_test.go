package notename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromMIDI(t *testing.T) {
	tests := []struct {
		note uint32
		want string
	}{
		{60, "c-4"},
		{69, "a-4"},
		{61, "c#4"},
		{0, "c-1"},
		{128, "---"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromMIDI(tt.note), "note %d", tt.note)
	}
}
