// Package command 提供模板渲染与目录查询的命令行功能。
package command

import (
	"github.com/lwmacct/260829-go-pkg-jobtpl/internal/config"
	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/catalog"
)

// Defaults 默认配置 - 单一来源 (Single Source of Truth)
var Defaults = config.DefaultConfig()

// LoadCatalog 按配置加载模板目录，path 为空时使用内置目录。
//
// 目录中存在失效条目时返回的目录仍然可用，聚合错误交由调用方呈现。
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}

	return catalog.Load(path)
}
