package expand

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/catalog"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/ctree"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/tmpl"
)

// Job 完全展开后的作业输入映射 (ResolvedJob)。
//
// 值为字面量拷贝、路径解析结果或 [ctree.Absent]，与基础配置树
// 不共享任何可变状态。
type Job map[string]any

// Expand 把模板应用到基础配置树，产出完全展开的作业映射。
//
// 路径字段经 [ctree.Tree.Resolve] 解析（未命中降级为 Absent），
// 字面量字段深拷贝原样传递。全量展开，不返回错误。
func Expand(tpl *catalog.Template, base *ctree.Tree) Job {
	job := make(Job, len(tpl.Fields))
	for name, field := range tpl.Fields {
		if field.IsPath() {
			job[name] = base.Resolve(field.Path())
			continue
		}
		job[name] = ctree.Copy(field.Value())
	}

	return job
}

// Names 返回所有字段名（升序）。
func (j Job) Names() []string {
	names := make([]string, 0, len(j))
	for name := range j {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// AbsentFields 返回解析结果为 Absent 的字段名（升序）。
func (j Job) AbsentFields() []string {
	var names []string
	for name, val := range j {
		if ctree.IsAbsent(val) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names
}

// Compact 返回剔除 Absent 字段后的新映射，原映射不变。
func (j Job) Compact() Job {
	out := make(Job, len(j))
	for name, val := range j {
		if ctree.IsAbsent(val) {
			continue
		}
		out[name] = val
	}

	return out
}

// ExpandStrings 对所有字符串值执行模板展开（含嵌套映射与序列），
// 返回新映射。任一字符串的模板语法错误会使整次调用失败。
//
// 展开只引用环境变量，不引用其他字段，因此字段间仍然互不依赖。
func (j Job) ExpandStrings() (Job, error) {
	out := make(Job, len(j))
	for name, val := range j {
		expanded, err := expandValue(val)
		if err != nil {
			return nil, fmt.Errorf("字段 %q 模板展开失败: %w", name, err)
		}
		out[name] = expanded
	}

	return out, nil
}

func expandValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return tmpl.Expand(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			expanded, err := expandValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = expanded
		}

		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			expanded, err := expandValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}

		return out, nil
	default:
		return v, nil
	}
}

// ToYAML 把作业映射渲染为 YAML（键升序）。
//
// Absent 字段渲染为 null 并附 "absent" 行注释，与显式 null 区分。
func (j Job) ToYAML() ([]byte, error) {
	node, err := toNode(map[string]any(j))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("渲染 YAML 失败: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("渲染 YAML 失败: %w", err)
	}

	return buf.Bytes(), nil
}

// ToJSON 把作业映射渲染为 JSON，Absent 字段输出为 null。
func (j Job) ToJSON() ([]byte, error) {
	plain := make(map[string]any, len(j))
	for name, val := range j {
		if ctree.IsAbsent(val) {
			plain[name] = nil
			continue
		}
		plain[name] = val
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plain); err != nil {
		return nil, fmt.Errorf("渲染 JSON 失败: %w", err)
	}

	return buf.Bytes(), nil
}

// toNode 把值转换为 yamlv3.Node，映射键升序保证输出确定。
func toNode(v any) (*yamlv3.Node, error) {
	if v == nil {
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	if ctree.IsAbsent(v) {
		return &yamlv3.Node{
			Kind:        yamlv3.ScalarNode,
			Tag:         "!!null",
			Value:       "null",
			LineComment: "absent",
		}, nil
	}

	switch val := v.(type) {
	case map[string]any:
		node := &yamlv3.Node{Kind: yamlv3.MappingNode}
		if len(val) == 0 {
			node.Style = yamlv3.FlowStyle
			return node, nil
		}

		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			valNode, err := toNode(val[key])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key},
				valNode,
			)
		}

		return node, nil

	case []any:
		node := &yamlv3.Node{Kind: yamlv3.SequenceNode}
		if len(val) == 0 {
			node.Style = yamlv3.FlowStyle
			return node, nil
		}
		for _, item := range val {
			itemNode, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}

		return node, nil

	default:
		var node yamlv3.Node
		if err := node.Encode(v); err != nil {
			return nil, fmt.Errorf("编码值失败: %w", err)
		}

		return &node, nil
	}
}
