package lexical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
)

func TestCursorHandsOutTokensOnce(t *testing.T) {
	t.Parallel()

	cursor := lexical.NewCursor([]lexical.Token{{Text: "cat", Tag: "NN"}, {Text: "runs", Tag: "VBZ"}})
	assert.Equal(t, 2, cursor.Remaining())

	first, err := cursor.Next()
	require.NoError(t, err)
	assert.Equal(t, "cat", first.Text)

	second, err := cursor.Next()
	require.NoError(t, err)
	assert.Equal(t, "runs", second.Text)

	assert.Equal(t, 2, cursor.Consumed())
	assert.Equal(t, 0, cursor.Remaining())

	_, err = cursor.Next()
	require.ErrorIs(t, err, lexical.ErrExhausted)
	assert.Equal(t, 2, cursor.Consumed())
}

func TestEmptyCursor(t *testing.T) {
	t.Parallel()

	_, err := lexical.NewCursor(nil).Next()
	require.ErrorIs(t, err, lexical.ErrExhausted)
}
