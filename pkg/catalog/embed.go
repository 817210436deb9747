package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

// Default 加载内置的默认模板目录。
//
// 内置目录随二进制发布（qd 与 ligand 作业模板），保证不经任何外部
// 文件也能完成模板展开。内置数据在发布前经过测试校验，此处解析失败
// 属于程序缺陷，直接返回错误交由调用方终止。
func Default() (*Catalog, error) {
	k := koanf.New(".")

	entries, err := fs.Glob(templatesFS, "templates/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("枚举内置模板失败: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		data, err := templatesFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("读取内置模板 %s 失败: %w", name, err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("解析内置模板 %s 失败: %w", name, err)
		}
	}

	c, err := build(k.Raw())
	if err != nil {
		return nil, fmt.Errorf("内置模板目录校验失败: %w", err)
	}

	return c, nil
}
