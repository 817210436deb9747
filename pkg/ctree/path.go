package ctree

import "strings"

// Path 标识配置树中一个位置的有序键序列。
//
// 纯数据，相等性为序列相等；空 Path 表示整棵树。
type Path []string

// ParsePath 解析点号分隔的路径字符串。
//
// 空字符串返回 nil（即整棵树）。
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}

	return Path(strings.Split(s, "."))
}

// String 返回点号分隔的路径表示。
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Equal 判断两个路径是否逐键相等。
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, key := range p {
		if other[i] != key {
			return false
		}
	}

	return true
}

// absent 是路径未命中时的哨兵类型。
//
// 不导出类型本身，保证 [Absent] 是该类型唯一的值。
type absent struct{}

// String 实现 fmt.Stringer，便于日志输出。
func (absent) String() string { return "<absent>" }

// Absent 表示"路径未找到"，与 nil (显式 null) 严格区分。
//
// 解析结果为 Absent 时，下游可自行决定是省略该字段还是套用默认值。
var Absent absent

// IsAbsent 判断值是否为 [Absent] 哨兵。
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}
