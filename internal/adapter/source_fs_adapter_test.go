package adapter

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

func TestLocalSourceFSAdapter_ListSubjects(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "zeta"))
	mustMkdir(t, filepath.Join(root, "Alpha"))
	mustMkdir(t, filepath.Join(root, "beta"))
	mustMkdir(t, filepath.Join(root, ".git"))
	writeTestFile(t, filepath.Join(root, "README.md"), "corpus\n")

	subjects, err := adapter.ListSubjects(ctx, m.Path(root))
	require.NoError(t, err)

	assert.Equal(t, []m.Subject{
		{Name: "Alpha", Root: m.Path(filepath.Join(root, "Alpha"))},
		{Name: "beta", Root: m.Path(filepath.Join(root, "beta"))},
		{Name: "zeta", Root: m.Path(filepath.Join(root, "zeta"))},
	}, subjects)

	t.Run("missing root", func(t *testing.T) {
		_, err := adapter.ListSubjects(ctx, m.Path(filepath.Join(root, "missing")))
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := adapter.ListSubjects(canceled, m.Path(root))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	ctx := context.Background()

	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "Program.cs"), "class Program {}\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "Child.cs"), "class Child {}\n")

		var visited []string
		err := adapter.Walk(ctx, m.Path(root), false, func(path string, _ os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		require.NoError(t, err)

		assert.NotContains(t, visited, nestedDir)
		assert.NotContains(t, visited, filepath.Join(nestedDir, "Child.cs"))
		assert.Contains(t, visited, filepath.Join(root, "Program.cs"))
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "Child.cs")
		writeTestFile(t, child, "class Child {}\n")

		var visited []string
		err := adapter.Walk(ctx, m.Path(root), true, func(path string, _ os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, slices.Contains(visited, child))
	})

	t.Run("canceled context stops the walk", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()
		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "A.cs"), "class A {}\n")

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := adapter.Walk(canceled, m.Path(root), true, func(string, os.FileInfo, error) error {
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalSourceFSAdapter_ReadFileAndFileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	root := t.TempDir()
	path := filepath.Join(root, "Stack.cs")
	content := "class Stack { void Push(object o) { Contract.Requires(o != null); } }\n"
	writeTestFile(t, path, content)

	data, err := adapter.ReadFile(ctx, m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	info, err := adapter.FileInfo(ctx, m.Path(path))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, int64(len(content)), info.Size())

	_, err = adapter.ReadFile(ctx, m.Path(filepath.Join(root, "Missing.cs")))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalSourceFSAdapter_DirectoryLifecycle(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	tmp, err := adapter.CreateTempDir(ctx, "clausestat-test-*")
	require.NoError(t, err)

	nested := adapter.JoinPath(string(tmp), "out", "reports")
	require.NoError(t, adapter.MkdirAll(ctx, nested))

	info, err := adapter.FileInfo(ctx, nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, adapter.RemoveAll(ctx, tmp))

	_, err = adapter.FileInfo(ctx, tmp)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	base := filepath.Join("/tmp", "corpus")
	target := filepath.Join(base, "Project", "Src", "Stack.cs")

	rel, err := adapter.RelPath(m.Path(base), m.Path(target))
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join("Project", "Src", "Stack.cs")), rel)

	joined := adapter.JoinPath("/tmp", "corpus", "Project")
	assert.Equal(t, m.Path(filepath.Join("/tmp", "corpus", "Project")), joined)
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}
