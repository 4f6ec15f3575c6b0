package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "toml", args: []string{"dump-config", "--config", "../etc/"}, want: `Title = "castboard"`},
		{name: "json", args: []string{"dump-config", "--config", "../etc/", "--json"}, want: `"Title": "castboard"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CASTBOARD_CONFIG_JSON", "")

			var out bytes.Buffer

			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() { dumpJSON = false })

			require.NoError(t, Execute())
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
