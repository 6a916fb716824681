package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chloe/internal/testutil"
)

func TestHelp_Categories(t *testing.T) {
	reply, err := send(t, newTestManager(t), "!help")

	require.NoError(t, err)
	require.NotNil(t, reply.Embed)
	assert.Equal(t, "Choose a category", reply.Embed.Description)
	assert.Equal(t, []Field{{Name: "Misc", Value: "!help Misc"}}, reply.Embed.Fields)
}

func TestHelp_Category(t *testing.T) {
	reply, err := send(t, newTestManager(t), "!help misc")

	require.NoError(t, err)
	testutil.Golden(t).Assert(t, "help_misc", []byte(reply.String()))
}

func TestHelp_UnknownCategory(t *testing.T) {
	reply, err := send(t, newTestManager(t), "!help Games")

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrorUser, ce.Kind)
	assert.Equal(t, `Unknown category "Games"`, reply.Embed.Description)
}

func TestReplyString(t *testing.T) {
	assert.Equal(t, "", (*Reply)(nil).String())
	assert.Equal(t, "pong\n", TextReply("pong").String())

	r := &Reply{Embed: &Embed{Title: "Error", Description: "boom", Color: 0xED4245}}
	assert.Equal(t, "| Error (#ED4245)\n| boom\n", r.String())
}
