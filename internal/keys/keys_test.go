package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommon_KeyAssignments(t *testing.T) {
	require.Equal(t, []string{"ctrl+c"}, Common.Quit.Keys())
	require.Equal(t, []string{"esc"}, Common.Escape.Keys())
	require.Equal(t, []string{"enter"}, Common.Submit.Keys())
}

func TestCommon_HelpText(t *testing.T) {
	require.Equal(t, "quit", Common.Quit.Help().Desc)
	require.Equal(t, "send command", Common.Submit.Help().Desc)
}
