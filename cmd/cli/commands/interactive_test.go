package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
		wantErr  bool
	}{
		{name: "plain", line: "recommend 71W", expected: []string{"recommend", "71W"}},
		{name: "extra spaces", line: "  coverage   --as-of 2 ", expected: []string{"coverage", "--as-of", "2"}},
		{name: "double quotes", line: `skills "Kim Mina"`, expected: []string{"skills", "Kim Mina"}},
		{name: "single quotes", line: `import 'my file.csv' --dry-run`, expected: []string{"import", "my file.csv", "--dry-run"}},
		{name: "empty quotes", line: `import --tab ""`, expected: []string{"import", "--tab", ""}},
		{name: "unclosed quote", line: `skills "Kim`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func testRoot(calls *[]string, asOf *[]*int) *cobra.Command {
	root := &cobra.Command{Use: "root"}

	recommend := &cobra.Command{
		Use:   "recommend <ward>",
		Short: "Rank nurses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := asOfFlag(cmd)
			if err != nil {
				return err
			}
			*calls = append(*calls, args[0])
			*asOf = append(*asOf, v)
			return nil
		},
	}
	recommend.Flags().Int("as-of", 0, "")

	root.AddCommand(recommend)
	root.AddCommand(&cobra.Command{Use: "serve", RunE: func(*cobra.Command, []string) error { return nil }})
	root.AddCommand(&cobra.Command{Use: "interactive"})
	return root
}

func TestSession_RunsCommandsAndResetsFlags(t *testing.T) {
	var calls []string
	var asOf []*int
	var out bytes.Buffer
	s := newSession(testRoot(&calls, &asOf), &out)

	assert.False(t, s.run("recommend C --as-of 2"))
	assert.False(t, s.run("recommend A"))

	assert.Equal(t, []string{"C", "A"}, calls)
	require.Len(t, asOf, 2)
	require.NotNil(t, asOf[0])
	assert.Equal(t, 2, *asOf[0])
	assert.Nil(t, asOf[1])
}

func TestSession_ReportsErrorsAndKeepsGoing(t *testing.T) {
	var calls []string
	var asOf []*int
	var out bytes.Buffer
	s := newSession(testRoot(&calls, &asOf), &out)

	assert.False(t, s.run("recommend"))
	assert.Contains(t, out.String(), "❌ Error:")

	out.Reset()
	assert.False(t, s.run("recommend C --bogus"))
	assert.Contains(t, out.String(), "Error parsing flags")

	out.Reset()
	assert.False(t, s.run("serve"))
	assert.Contains(t, out.String(), "Unknown command: serve")

	assert.Empty(t, calls)
}

func TestSession_HelpAndExit(t *testing.T) {
	var calls []string
	var asOf []*int
	var out bytes.Buffer
	s := newSession(testRoot(&calls, &asOf), &out)

	assert.False(t, s.run(""))
	assert.False(t, s.run("help"))
	assert.Contains(t, out.String(), "recommend <ward>")
	assert.NotContains(t, out.String(), "serve")

	assert.True(t, s.run("quit"))
	assert.True(t, s.run("exit"))
}
