package expand_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/catalog"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/ctree"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/expand"
)

// pathTemplate 返回只含一个路径字段的模板。
func pathTemplate() *catalog.Template {
	return &catalog.Template{
		Name:    "qd_opt",
		MolType: catalog.MolTypeQD,
		Fields: map[string]catalog.Field{
			"path": catalog.PathField(ctree.Path{"optional", "qd", "dirname"}),
		},
	}
}

// TestExpandPathHit 路径命中时解析为配置树中的值
func TestExpandPathHit(t *testing.T) {
	base := ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{"dirname": "QD"},
		},
	})

	job := expand.Expand(pathTemplate(), base)
	assert.Equal(t, expand.Job{"path": "QD"}, job)
}

// TestExpandPathMissing 路径未命中时字段保留为 Absent，而非丢弃
func TestExpandPathMissing(t *testing.T) {
	base := ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{},
		},
	})

	job := expand.Expand(pathTemplate(), base)
	require.Contains(t, job, "path")
	assert.True(t, ctree.IsAbsent(job["path"]))
	assert.Equal(t, []string{"path"}, job.AbsentFields())
}

// TestExpandMidPathScalar 中途遇到标量折叠为 Absent，不报错
func TestExpandMidPathScalar(t *testing.T) {
	base := ctree.New(map[string]any{
		"optional": "not-a-mapping",
	})

	job := expand.Expand(pathTemplate(), base)
	assert.True(t, ctree.IsAbsent(job["path"]))
}

// TestExpandLiteralPassThrough 字面量字段原样传递，不受配置树内容影响
func TestExpandLiteralPassThrough(t *testing.T) {
	radii := map[string]any{"H": 1.35, "C": 2.00}
	tpl := &catalog.Template{
		Name:    "ligand_solvation",
		MolType: catalog.MolTypeLigand,
		Fields: map[string]catalog.Field{
			"radii":   catalog.LiteralField(radii),
			"anchors": catalog.LiteralField([]any{"H"}),
		},
	}

	// 配置树恰好包含同名键，字面量字段也不做路径解释
	base := ctree.New(map[string]any{
		"radii": "should-be-ignored",
		"H":     "also-ignored",
	})

	job := expand.Expand(tpl, base)
	assert.Equal(t, radii, job["radii"])
	assert.Equal(t, []any{"H"}, job["anchors"])
}

// TestExpandIdempotent 同一模板对同一配置树的两次展开逐字段一致
func TestExpandIdempotent(t *testing.T) {
	base := ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{"dirname": "QD"},
		},
	})
	tpl := &catalog.Template{
		Name:    "qd_opt",
		MolType: catalog.MolTypeQD,
		Fields: map[string]catalog.Field{
			"dirname": catalog.PathField(ctree.Path{"optional", "qd", "dirname"}),
			"missing": catalog.PathField(ctree.Path{"optional", "core"}),
			"job1":    catalog.LiteralField("UFF"),
			"radii":   catalog.LiteralField(map[string]any{"H": 1.35}),
		},
	}

	first := expand.Expand(tpl, base)
	second := expand.Expand(tpl, base)
	assert.Equal(t, first, second)
}

// TestExpandNoSharedState 展开结果之间、结果与配置树之间不共享可变状态
func TestExpandNoSharedState(t *testing.T) {
	base := ctree.New(map[string]any{
		"optional": map[string]any{
			"qd": map[string]any{"dirname": "QD"},
		},
	})
	tpl := &catalog.Template{
		Name:    "qd_opt",
		MolType: catalog.MolTypeQD,
		Fields: map[string]catalog.Field{
			"sub":   catalog.PathField(ctree.Path{"optional", "qd"}),
			"radii": catalog.LiteralField(map[string]any{"H": 1.35}),
		},
	}

	first := expand.Expand(tpl, base)
	first["sub"].(map[string]any)["dirname"] = "mutated"
	first["radii"].(map[string]any)["H"] = 9.99

	second := expand.Expand(tpl, base)
	assert.Equal(t, "QD", second["sub"].(map[string]any)["dirname"])
	assert.Equal(t, 1.35, second["radii"].(map[string]any)["H"])
}

// TestExpandWholeTree 空路径字段取整棵配置树
func TestExpandWholeTree(t *testing.T) {
	base := ctree.New(map[string]any{"a": 1})
	tpl := &catalog.Template{
		Name:    "all",
		MolType: catalog.MolTypeCore,
		Fields: map[string]catalog.Field{
			"settings": catalog.PathField(nil),
		},
	}

	job := expand.Expand(tpl, base)
	assert.Equal(t, base.Raw(), job["settings"])
}

// TestCompact Compact 剔除 Absent 字段且不修改原映射
func TestCompact(t *testing.T) {
	job := expand.Job{
		"present": "value",
		"null":    nil,
		"gone":    ctree.Absent,
	}

	compacted := job.Compact()
	assert.Equal(t, expand.Job{"present": "value", "null": nil}, compacted)
	assert.Contains(t, job, "gone", "原映射不变")
}

// TestExpandStrings 字符串值经模板展开，嵌套结构也覆盖
func TestExpandStrings(t *testing.T) {
	t.Setenv("SCRATCH", "/scratch")

	job := expand.Job{
		"dirname": `{{env "SCRATCH"}}/qd`,
		"s1": map[string]any{
			"workdir": `{{joinpath .SCRATCH "database"}}`,
			"count":   3,
		},
		"list": []any{`{{env "SCRATCH"}}`, 1},
	}

	expanded, err := job.ExpandStrings()
	require.NoError(t, err)
	assert.Equal(t, "/scratch/qd", expanded["dirname"])
	assert.Equal(t, "/scratch/database", expanded["s1"].(map[string]any)["workdir"])
	assert.Equal(t, 3, expanded["s1"].(map[string]any)["count"])
	assert.Equal(t, "/scratch", expanded["list"].([]any)[0])

	// 原映射不变
	assert.Equal(t, `{{env "SCRATCH"}}/qd`, job["dirname"])
}

// TestExpandStringsError 模板语法错误使整次调用失败并标明字段
func TestExpandStringsError(t *testing.T) {
	job := expand.Job{"bad": `{{env "X"`}

	_, err := job.ExpandStrings()
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad")
}

// TestToYAML YAML 渲染：键升序，Absent 渲染为 null 加注释
func TestToYAML(t *testing.T) {
	job := expand.Job{
		"b_field": "value",
		"a_field": ctree.Absent,
		"c_null":  nil,
	}

	data, err := job.ToYAML()
	require.NoError(t, err)

	want := "a_field: null # absent\nb_field: value\nc_null: null\n"
	assert.Equal(t, want, string(data))
}

// TestToJSON JSON 渲染：Absent 输出为 null
func TestToJSON(t *testing.T) {
	job := expand.Job{
		"path":  ctree.Absent,
		"job1":  "UFF",
		"radii": map[string]any{"H": 1.35},
	}

	data, err := job.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["path"])
	assert.Equal(t, "UFF", decoded["job1"])
	assert.Equal(t, map[string]any{"H": 1.35}, decoded["radii"])
}

// TestNames Names 返回升序字段名
func TestNames(t *testing.T) {
	job := expand.Job{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, job.Names())
}
