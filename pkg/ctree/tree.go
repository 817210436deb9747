package ctree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Tree 不可变的嵌套配置树。
//
// 构造后只读，可安全地跨 goroutine 共享。
type Tree struct {
	root map[string]any
}

// New 从内存映射构造配置树。
//
// 输入会被深拷贝并规范化（map[any]any 键转为字符串），
// 调用方之后修改原映射不影响已构造的树。
func New(m map[string]any) *Tree {
	return &Tree{root: normalizeMap(m)}
}

// Load 按顺序加载并合并多个配置文件（后者覆盖前者）。
//
// 文件格式由扩展名决定：.json 使用 JSON 解析器，其余默认 YAML。
func Load(paths ...string) (*Tree, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if err := k.Load(file.Provider(path), parserForPath(path)); err != nil {
			return nil, fmt.Errorf("加载配置文件 %s 失败: %w", path, err)
		}
	}

	return New(k.Raw()), nil
}

// FromBytes 从内存字节构造配置树。
//
// format 为 "json" 或 "yaml"（含 "yml"），其余值按 YAML 处理。
func FromBytes(data []byte, format string) (*Tree, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parserForFormat(format)); err != nil {
		return nil, fmt.Errorf("解析配置数据失败: %w", err)
	}

	return New(k.Raw()), nil
}

// Merge 返回以 other 覆盖当前树的新树，两个输入均不被修改。
func (t *Tree) Merge(other *Tree) (*Tree, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(t.root, "."), nil); err != nil {
		return nil, fmt.Errorf("合并配置树失败: %w", err)
	}
	if err := k.Load(confmap.Provider(other.root, "."), nil); err != nil {
		return nil, fmt.Errorf("合并配置树失败: %w", err)
	}

	return New(k.Raw()), nil
}

// Raw 返回整棵树的深拷贝。
func (t *Tree) Raw() map[string]any {
	return copyMap(t.root)
}

// Resolve 按路径逐级下降，返回命中的值或 [Absent]。
//
// 行为约定：
//   - 空路径返回整棵树的拷贝
//   - 任一级键缺失，立即返回 [Absent]（不报告部分路径错误）
//   - 中途遇到非映射值（如向标量继续下降）同样返回 [Absent]
//   - 命中 null 返回 nil，与 [Absent] 区分
//
// 纯函数，永不 panic。
func (t *Tree) Resolve(p Path) any {
	if len(p) == 0 {
		return t.Raw()
	}

	var cur any = t.root
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return Absent
		}
		if cur, ok = m[key]; !ok {
			return Absent
		}
	}

	return Copy(cur)
}

// parserForPath 根据文件扩展名选择解析器。
func parserForPath(path string) koanf.Parser {
	return parserForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// parserForFormat 根据格式名选择解析器，未识别时默认 YAML。
func parserForFormat(format string) koanf.Parser {
	if strings.EqualFold(format, "json") {
		return json.Parser()
	}

	return yaml.Parser()
}

// normalizeMap 深拷贝映射并将 map[any]any 键规范化为字符串。
func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, val := range m {
		out[key] = normalizeValue(val)
	}

	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeMap(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}

		return out
	default:
		return v
	}
}

// copyMap 深拷贝已规范化的映射。
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, val := range m {
		out[key] = Copy(val)
	}

	return out
}

// Copy 深拷贝一个配置值（映射、序列递归拷贝，标量原样返回）。
func Copy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Copy(item)
		}

		return out
	default:
		return v
	}
}
