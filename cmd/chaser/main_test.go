package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chaser/internal/viz"
)

func TestWrapHeadingUsage(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	gainFlags(cmd)

	f := cmd.Flags().Lookup("wrap-heading")
	require.NotNil(t, f)
	assert.Contains(t, f.Usage, "(-pi, pi]")
	assert.Equal(t, "false", f.DefValue)
}

func TestApplyTheme(t *testing.T) {
	defer viz.SetTheme(viz.CurrentTheme.Name)

	for _, name := range viz.ThemeNames() {
		require.NoError(t, applyTheme(name))
		assert.Equal(t, name, viz.CurrentTheme.Name)
	}

	err := applyTheme("neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
}
