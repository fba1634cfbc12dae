package mcptools

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/refit/internal/rules"
)

func newTestService(t *testing.T) *FormatService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewFormatService(rules.NewRegistry(), logger)
}

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCheck_ReportsFindingsWithoutWritingFiles(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{
		"dirty.txt": "line with trailing space  \nno final newline",
	})

	_, out, err := svc.Check(context.Background(), nil, CheckInput{Root: root})
	require.NoError(t, err)

	assert.Equal(t, 1, out.DocsScanned)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 2, out.BySeverity["warning"])
	require.Len(t, out.Findings, 2)
	assert.Equal(t, "dirty.txt", out.Findings[0].Doc)

	data, err := os.ReadFile(filepath.Join(root, "dirty.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line with trailing space  \nno final newline", string(data),
		"a check must leave the file untouched")
}

func TestCheck_CleanWorkspace_NoFindings(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{"clean.txt": "all good\n"})

	_, out, err := svc.Check(context.Background(), nil, CheckInput{Root: root})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Findings)
}

func TestCheck_RuleSubset_Honored(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{
		"dirty.txt": "trailing space  \nno final newline",
	})

	_, out, err := svc.Check(context.Background(), nil, CheckInput{
		Root:  root,
		Rules: []string{rules.TrailingSpaceName},
	})
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)
	assert.Equal(t, rules.TrailingSpaceName, out.Findings[0].Rule)
}

func TestApply_FixesFilesOnDisk(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{
		"dirty.txt": "trailing space  \nmissing newline",
	})

	_, out, err := svc.Apply(context.Background(), nil, ApplyInput{Root: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"dirty.txt"}, out.DocsChanged)

	data, err := os.ReadFile(filepath.Join(root, "dirty.txt"))
	require.NoError(t, err)
	assert.Equal(t, "trailing space\nmissing newline\n", string(data))
}

func TestApply_CleanWorkspace_ChangesNothing(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{"clean.txt": "all good\n"})

	_, out, err := svc.Apply(context.Background(), nil, ApplyInput{Root: root})
	require.NoError(t, err)
	assert.Empty(t, out.DocsChanged)
	assert.Empty(t, out.Conflicts)
}

func TestListRules_PrecedenceOrder(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.ListRules(context.Background(), nil, ListRulesInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		rules.FinalNewlineName,
		rules.TrailingSpaceName,
		rules.EOLNormalizeName,
	}, out.Rules)
}

func TestCheck_MissingRoot_Errors(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Check(context.Background(), nil, CheckInput{Root: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is required")

	_, _, err = svc.Check(context.Background(), nil, CheckInput{Root: "/does/not/exist"})
	require.Error(t, err)
}

func TestCheck_RootIsFile_Errors(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{"file.txt": "x\n"})

	_, _, err := svc.Check(context.Background(), nil, CheckInput{Root: filepath.Join(root, "file.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestCheck_UnknownRule_Errors(t *testing.T) {
	svc := newTestService(t)
	root := writeWorkspace(t, map[string]string{"a.txt": "x\n"})

	_, _, err := svc.Check(context.Background(), nil, CheckInput{Root: root, Rules: []string{"nosuchrule"}})
	require.Error(t, err)
}

func TestNewFormatMCPServer_Builds(t *testing.T) {
	svc := newTestService(t)
	require.NotNil(t, NewFormatMCPServer(svc, "1.2.3"))
	require.NotNil(t, NewFormatMCPServer(svc, ""), "an empty version falls back to dev")
}
