package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(content, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(content, "foo.mdx"), []byte("---\ntitle: Foo\n---\n"), 0644))

	config := filepath.Join(dir, "ogp.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"contentDirectory: "+content+"\n"+
			"fontsDirectory: "+filepath.Join(dir, "fonts")+"\n"+
			"outputDirectory: "+filepath.Join(dir, "public", "ogp")+"\n",
	), 0644))

	return config
}

func TestRunList(t *testing.T) {
	config := writeSite(t)
	require.NoError(t, run(context.Background(), []string{"list", "--config", config}))
}

func TestRunErrors(t *testing.T) {
	config := writeSite(t)

	tests := []struct {
		title string
		args  []string
	}{
		{title: "Missing Config", args: []string{"list", "--config", filepath.Join(t.TempDir(), "nope.yaml")}},
		{title: "Missing Fonts", args: []string{"generate", "--config", config}},
		{title: "Unknown Command", args: []string{"nope"}},
	}

	for _, tt := range tests {
		assert.Error(t, run(context.Background(), tt.args), "failed for title: %s", tt.title)
	}
}
