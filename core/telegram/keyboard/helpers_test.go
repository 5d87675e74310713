package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMenuOnePerRow(t *testing.T) {
	m := Menu("a", "b", "c")
	require.True(t, m.OneTimeKeyboard)
	require.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 3)
	for i, want := range []string{"a", "b", "c"} {
		require.Len(t, m.ReplyKeyboard[i], 1)
		require.Equal(t, want, m.ReplyKeyboard[i][0].Text)
	}
}

func TestReplyButtonsRows(t *testing.T) {
	m := ReplyButtons([]string{"x", "y"}, []string{"z"})
	require.False(t, m.OneTimeKeyboard)
	require.Len(t, m.ReplyKeyboard, 2)
	require.Len(t, m.ReplyKeyboard[0], 2)
}
