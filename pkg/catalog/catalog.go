package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/ctree"
)

// ErrNotFound 目录中不存在指定名称的模板
var ErrNotFound = errors.New("模板不存在")

// MolType 模板的分子类型标签
type MolType string

// 已知的分子类型标签
const (
	MolTypeQD     MolType = "qd"
	MolTypeLigand MolType = "ligand"
	MolTypeCore   MolType = "core"
)

// Valid 判断标签是否在已知集合中。
func (m MolType) Valid() bool {
	switch m {
	case MolTypeQD, MolTypeLigand, MolTypeCore:
		return true
	default:
		return false
	}
}

// Field 模板中的一个字段声明：路径查找或字面量，二者必居其一。
type Field struct {
	path   ctree.Path
	value  any
	pathed bool
}

// PathField 构造路径查找字段。
func PathField(p ctree.Path) Field {
	return Field{path: p, pathed: true}
}

// LiteralField 构造字面量字段。
func LiteralField(v any) Field {
	return Field{value: v}
}

// IsPath 该字段是否为路径查找。
func (f Field) IsPath() bool { return f.pathed }

// Path 返回路径查找字段的路径；字面量字段返回 nil。
func (f Field) Path() ctree.Path { return f.path }

// Value 返回字面量字段的值；路径字段返回 nil。
func (f Field) Value() any { return f.value }

// Template 一个命名的作业模板 (TemplateSpec)。
//
// 加载后只读；Fields 的键是输出字段名。
type Template struct {
	Name        string
	Description string
	MolType     MolType
	Fields      map[string]Field
}

// Catalog 模板目录，加载一次后只读。
type Catalog struct {
	templates map[string]*Template
}

// EntryError 单条模板的校验错误，记录模板名与原因。
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("模板 %q: %v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Load 从文件加载模板目录。
//
// 格式由扩展名决定（.json 为 JSON，其余按 YAML）。返回合法条目组成
// 的目录；所有失效条目的错误聚合后一并返回，目录本身仍然可用。
func Load(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserForPath(path)); err != nil {
		return nil, fmt.Errorf("加载模板目录 %s 失败: %w", path, err)
	}

	return build(k.Raw())
}

// FromBytes 从内存字节加载模板目录，format 为 "yaml" 或 "json"。
func FromBytes(data []byte, format string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parserForFormat(format)); err != nil {
		return nil, fmt.Errorf("解析模板目录失败: %w", err)
	}

	return build(k.Raw())
}

// Get 按名称查询模板。
func (c *Catalog) Get(name string) (*Template, bool) {
	tpl, ok := c.templates[name]
	return tpl, ok
}

// MustGet 按名称查询模板，不存在时返回 [ErrNotFound]。
func (c *Catalog) MustGet(name string) (*Template, error) {
	tpl, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return tpl, nil
}

// Names 返回所有模板名（升序）。
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Len 返回目录中的模板数量。
func (c *Catalog) Len() int { return len(c.templates) }

// build 逐条校验原始映射，聚合失效条目的错误。
func build(raw map[string]any) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*Template, len(raw))}

	var errs []error
	for name, entry := range raw {
		tpl, err := parseEntry(name, entry)
		if err != nil {
			errs = append(errs, &EntryError{Name: name, Err: err})
			slog.Warn("模板条目校验失败，已跳过", "name", name, "error", err)
			continue
		}
		c.templates[name] = tpl
	}

	slog.Debug("模板目录加载完成", "valid", len(c.templates), "invalid", len(errs))

	return c, errors.Join(errs...)
}

// parseEntry 解析并校验单条模板定义。
func parseEntry(name string, entry any) (*Template, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("条目必须是映射，实际为 %T", entry)
	}

	tpl := &Template{Name: name, Fields: make(map[string]Field)}

	if desc, ok := m["description"]; ok {
		s, ok := desc.(string)
		if !ok {
			return nil, fmt.Errorf("description 必须是字符串，实际为 %T", desc)
		}
		tpl.Description = s
	}

	rawMolType, ok := m["mol_type"]
	if !ok {
		return nil, errors.New("缺少 mol_type 键")
	}
	molType, ok := rawMolType.(string)
	if !ok {
		return nil, fmt.Errorf("mol_type 必须是字符串，实际为 %T", rawMolType)
	}
	tpl.MolType = MolType(molType)
	if !tpl.MolType.Valid() {
		return nil, fmt.Errorf("未知的 mol_type %q (支持 qd/ligand/core)", molType)
	}

	fields, ok := m["template"].(map[string]any)
	if !ok {
		return nil, errors.New("缺少 template 键")
	}

	var errs []error
	for fieldName, decl := range fields {
		field, err := parseField(decl)
		if err != nil {
			errs = append(errs, fmt.Errorf("字段 %q: %w", fieldName, err))
			continue
		}
		tpl.Fields[fieldName] = field
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return tpl, nil
}

// parseField 解析单个字段声明，要求显式标注 path 或 value。
func parseField(decl any) (Field, error) {
	m, ok := decl.(map[string]any)
	if !ok {
		return Field{}, fmt.Errorf("字段声明必须用 path: 或 value: 包装，实际为 %T", decl)
	}

	rawPath, hasPath := m["path"]
	rawValue, hasValue := m["value"]

	switch {
	case hasPath && hasValue:
		return Field{}, errors.New("path 与 value 不能同时声明")
	case hasPath:
		p, err := parsePathSpec(rawPath)
		if err != nil {
			return Field{}, err
		}

		return PathField(p), nil
	case hasValue:
		return LiteralField(rawValue), nil
	default:
		return Field{}, errors.New("必须声明 path 或 value 之一")
	}
}

// parsePathSpec 校验路径声明：必须是纯字符串序列。
func parsePathSpec(raw any) (ctree.Path, error) {
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("path 必须是键序列，实际为 %T", raw)
	}

	p := make(ctree.Path, len(seq))
	for i, item := range seq {
		key, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("path 第 %d 个元素必须是字符串，实际为 %T", i, item)
		}
		p[i] = key
	}

	return p, nil
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
