package ctree_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/ctree"
)

// testTree 返回测试用的基础配置树。
func testTree() *ctree.Tree {
	return ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{
				"dirname": "QD",
				"indices": []any{1, 2, 3},
				"null":    nil,
			},
			"ligand": map[string]any{},
		},
		"scalar": "not-a-mapping",
	})
}

// TestResolve 测试路径解析的基本行为
func TestResolve(t *testing.T) {
	tree := testTree()

	tests := []struct {
		name string
		path ctree.Path
		want any
	}{
		{
			name: "hit nested scalar",
			path: ctree.Path{"optional", "qd", "dirname"},
			want: "QD",
		},
		{
			name: "hit sequence",
			path: ctree.Path{"optional", "qd", "indices"},
			want: []any{1, 2, 3},
		},
		{
			name: "hit subtree",
			path: ctree.Path{"optional", "qd"},
			want: map[string]any{
				"dirname": "QD",
				"indices": []any{1, 2, 3},
				"null":    nil,
			},
		},
		{
			name: "missing leaf key",
			path: ctree.Path{"optional", "qd", "missing"},
			want: ctree.Absent,
		},
		{
			name: "missing mid key",
			path: ctree.Path{"optional", "core", "dirname"},
			want: ctree.Absent,
		},
		{
			name: "descend into scalar",
			path: ctree.Path{"scalar", "qd", "dirname"},
			want: ctree.Absent,
		},
		{
			name: "missing root key",
			path: ctree.Path{"nope"},
			want: ctree.Absent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tree.Resolve(tt.path))
		})
	}
}

// TestResolveEmptyPath 空路径返回整棵树
func TestResolveEmptyPath(t *testing.T) {
	tree := testTree()

	got := tree.Resolve(nil)
	assert.Equal(t, tree.Raw(), got)

	got = tree.Resolve(ctree.Path{})
	assert.Equal(t, tree.Raw(), got)
}

// TestResolveNullVsAbsent null 与 Absent 严格区分
func TestResolveNullVsAbsent(t *testing.T) {
	tree := testTree()

	got := tree.Resolve(ctree.Path{"optional", "qd", "null"})
	assert.Nil(t, got, "显式 null 应解析为 nil")
	assert.False(t, ctree.IsAbsent(got), "显式 null 不是 Absent")

	got = tree.Resolve(ctree.Path{"optional", "qd", "nothing"})
	assert.True(t, ctree.IsAbsent(got), "缺失键应解析为 Absent")
}

// TestResolveBeyondNonMapping 前缀命中非映射值时，任何延长路径都是 Absent
func TestResolveBeyondNonMapping(t *testing.T) {
	tree := testTree()

	prefix := ctree.Path{"optional", "qd", "dirname"}
	_, isMap := tree.Resolve(prefix).(map[string]any)
	require.False(t, isMap)

	extended := append(append(ctree.Path{}, prefix...), "deeper")
	assert.True(t, ctree.IsAbsent(tree.Resolve(extended)))
}

// TestTreeImmutable 构造输入与解析结果的修改均不影响树本身
func TestTreeImmutable(t *testing.T) {
	src := map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{"dirname": "QD"},
		},
	}
	tree := ctree.New(src)

	// 修改构造输入
	src["optional"].(map[string]any)["qd"].(map[string]any)["dirname"] = "mutated"
	assert.Equal(t, "QD", tree.Resolve(ctree.Path{"optional", "qd", "dirname"}))

	// 修改解析返回的子树
	sub, ok := tree.Resolve(ctree.Path{"optional", "qd"}).(map[string]any)
	require.True(t, ok)
	sub["dirname"] = "mutated"
	assert.Equal(t, "QD", tree.Resolve(ctree.Path{"optional", "qd", "dirname"}))
}

// TestNewNormalizesAnyKeys map[any]any 键被规范化为字符串
func TestNewNormalizesAnyKeys(t *testing.T) {
	tree := ctree.New(map[string]any{
		"outer": map[any]any{
			"inner": "value",
		},
	})

	assert.Equal(t, "value", tree.Resolve(ctree.Path{"outer", "inner"}))
}

// TestFromBytes 测试从内存字节加载
func TestFromBytes(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		path   ctree.Path
		want   any
	}{
		{
			name:   "yaml",
			data:   "optional:\n  qd:\n    dirname: QD\n",
			format: "yaml",
			path:   ctree.Path{"optional", "qd", "dirname"},
			want:   "QD",
		},
		{
			name:   "json",
			data:   `{"optional": {"qd": {"dirname": "QD"}}}`,
			format: "json",
			path:   ctree.Path{"optional", "qd", "dirname"},
			want:   "QD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ctree.FromBytes([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tree.Resolve(tt.path))
		})
	}
}

// TestFromBytesInvalid 非法数据返回错误
func TestFromBytesInvalid(t *testing.T) {
	_, err := ctree.FromBytes([]byte("{not json"), "json")
	assert.Error(t, err)
}

// TestLoadLayered 多文件按顺序合并，后者覆盖前者
func TestLoadLayered(t *testing.T) {
	dir := t.TempDir()

	defaults := filepath.Join(dir, "defaults.yaml")
	require.NoError(t, os.WriteFile(defaults, []byte("optional:\n  qd:\n    dirname: QD\n    dummy: 6\n"), 0600))

	override := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(override, []byte("optional:\n  qd:\n    dirname: QD_custom\n"), 0600))

	tree, err := ctree.Load(defaults, override)
	require.NoError(t, err)

	assert.Equal(t, "QD_custom", tree.Resolve(ctree.Path{"optional", "qd", "dirname"}))
	assert.Equal(t, 6, tree.Resolve(ctree.Path{"optional", "qd", "dummy"}), "未覆盖的键保留默认值")
}

// TestMerge 合并产生新树，覆盖语义与 Load 一致，输入不变
func TestMerge(t *testing.T) {
	defaults := ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{"dirname": "QD", "dummy": 6},
		},
	})
	override := ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{"dirname": "QD_custom"},
		},
	})

	merged, err := defaults.Merge(override)
	require.NoError(t, err)

	assert.Equal(t, "QD_custom", merged.Resolve(ctree.Path{"optional", "qd", "dirname"}))
	assert.Equal(t, 6, merged.Resolve(ctree.Path{"optional", "qd", "dummy"}))
	assert.Equal(t, "QD", defaults.Resolve(ctree.Path{"optional", "qd", "dirname"}), "输入树不变")
}

// TestLoadMissingFile 文件不存在返回错误
func TestLoadMissingFile(t *testing.T) {
	_, err := ctree.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

// TestParsePath 测试路径字符串解析
func TestParsePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ctree.Path
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "optional", want: ctree.Path{"optional"}},
		{name: "nested", input: "optional.qd.dirname", want: ctree.Path{"optional", "qd", "dirname"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ctree.ParsePath(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

// TestPathEqual 路径相等性为序列相等
func TestPathEqual(t *testing.T) {
	assert.True(t, ctree.Path{"a", "b"}.Equal(ctree.Path{"a", "b"}))
	assert.False(t, ctree.Path{"a", "b"}.Equal(ctree.Path{"a"}))
	assert.False(t, ctree.Path{"a", "b"}.Equal(ctree.Path{"a", "c"}))
}

// TestAbsentSentinel Absent 哨兵的基本性质
func TestAbsentSentinel(t *testing.T) {
	assert.True(t, ctree.IsAbsent(ctree.Absent))
	assert.False(t, ctree.IsAbsent(nil))
	assert.False(t, ctree.IsAbsent(""))
	assert.Equal(t, "<absent>", ctree.Absent.String())
}
