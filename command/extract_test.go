package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFencedBlock(t *testing.T) {
	text := "Here is how to inspect the repo:\n\n" +
		"```bash\n" +
		"# look around first\n" +
		"ls -la\n" +
		"\n" +
		"git status\n" +
		"```\n\n" +
		"That should be enough."

	cmds := Extract(text)
	require.Len(t, cmds, 2)
	assert.Equal(t, "ls -la", cmds[0])
	assert.Equal(t, "git status", cmds[1])
}

func TestExtractFenceTagVariants(t *testing.T) {
	for _, tag := range []string{"bash", "sh", "shell", "zsh"} {
		text := "```" + tag + "\necho hello\n```"
		cmds := Extract(text)
		require.Len(t, cmds, 1, "tag %q", tag)
		assert.Equal(t, "echo hello", cmds[0])
	}
}

func TestExtractIgnoresNonShellFences(t *testing.T) {
	text := "```python\nprint(\"hello\")\n```\n"
	assert.Empty(t, Extract(text))
}

func TestExtractDollarPrefixedLines(t *testing.T) {
	text := "Run these in order:\n$ mkdir -p build\n$ go build ./...\nThen check the output."
	cmds := Extract(text)
	require.Len(t, cmds, 2)
	assert.Equal(t, "mkdir -p build", cmds[0])
	assert.Equal(t, "go build ./...", cmds[1])
}

func TestExtractBareCommandLine(t *testing.T) {
	text := "First list the directory.\n\nls -la\n\nThen we can decide what to do."
	cmds := Extract(text)
	require.Len(t, cmds, 1)
	assert.Equal(t, "ls -la", cmds[0])
}

func TestExtractRejectsProse(t *testing.T) {
	text := "You can use git to manage your versions.\n" +
		"Run the following command:\n" +
		"The ls output shows hidden files too."
	assert.Empty(t, Extract(text))
}

func TestExtractKeepsDuplicates(t *testing.T) {
	text := "```bash\ngo test ./...\ngo test ./...\n```"
	cmds := Extract(text)
	require.Len(t, cmds, 2)
	assert.Equal(t, cmds[0], cmds[1])
}

func TestExtractPreservesOrder(t *testing.T) {
	text := "```bash\nfirst_step --init\ngit add .\ngit commit -m 'wip'\n```"
	cmds := Extract(text)
	require.Len(t, cmds, 3)
	assert.Equal(t, "first_step --init", cmds[0])
	assert.Equal(t, "git add .", cmds[1])
	assert.Equal(t, "git commit -m 'wip'", cmds[2])
}

func TestExtractMixedSourcesKeepAppearanceOrder(t *testing.T) {
	text := "Check the tree first:\n" +
		"$ git status\n\n" +
		"Then patch it:\n" +
		"```bash\nsed -i 's/a/b/' main.go\n```\n" +
		"And finally:\n\n" +
		"ls -la\n"

	cmds := Extract(text)
	require.Len(t, cmds, 3)
	assert.Equal(t, "git status", cmds[0])
	assert.Equal(t, "sed -i 's/a/b/' main.go", cmds[1])
	assert.Equal(t, "ls -la", cmds[2])
}

func TestExtractOrderAcrossTwoFences(t *testing.T) {
	text := "```bash\nmkdir -p build\n```\n" +
		"$ cp app.conf build/\n" +
		"```bash\nmake build\n```\n"

	cmds := Extract(text)
	require.Len(t, cmds, 3)
	assert.Equal(t, "mkdir -p build", cmds[0])
	assert.Equal(t, "cp app.conf build/", cmds[1])
	assert.Equal(t, "make build", cmds[2])
}

func TestExtractEmptyInput(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("Just a plain answer with no commands at all."))
	assert.Empty(t, Extract("```bash\n\n# only a comment\n```"))
}
