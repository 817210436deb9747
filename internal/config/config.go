// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - 默认搜索路径见 cfgm.DefaultPaths
//  3. 环境变量 - 前缀 JOBTPL_
//  4. CLI flags - 最高优先级
package config

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/260829-go-pkg-jobtpl/pkg/cfgm"
)

// Config 应用配置
type Config struct {
	Catalog CatalogConfig `koanf:"catalog" desc:"作业模板目录"`
	Base    BaseConfig    `koanf:"base" desc:"基础配置树来源"`
	Render  RenderConfig  `koanf:"render" desc:"渲染输出"`
}

// CatalogConfig 模板目录来源配置
type CatalogConfig struct {
	Path string `koanf:"path" desc:"模板目录文件路径，留空使用内置目录"`
}

// BaseConfig 基础配置树来源配置
type BaseConfig struct {
	Paths []string `koanf:"paths" desc:"基础配置文件路径，按顺序合并，后者覆盖前者"`
}

// RenderConfig 渲染输出配置
type RenderConfig struct {
	Format     string `koanf:"format" desc:"输出格式 (yaml 或 json)"`
	KeepAbsent bool   `koanf:"keep_absent" desc:"保留未命中的字段并渲染为 null"`
	ExpandEnv  bool   `koanf:"expand_env" desc:"展开字符串字段中的环境变量模板"`
}

// DefaultConfig 返回默认配置
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{Path: ""},
		Base:    BaseConfig{Paths: nil},
		Render: RenderConfig{
			Format:     "yaml",
			KeepAbsent: false,
			ExpandEnv:  false,
		},
	}
}

// Load 加载应用配置：默认值 → 配置文件 → 环境变量 → CLI flags。
//
// 含下划线的配置键无法经前缀规则寻址（下划线一律转为点号），
// 因此 render.keep_absent 与 render.expand_env 额外走显式绑定。
func Load(cmd *cli.Command, appName string, opts ...cfgm.Option) (*Config, error) {
	return cfgm.LoadCmd(cmd, DefaultConfig(), appName,
		append([]cfgm.Option{
			cfgm.WithEnvPrefix("JOBTPL_"),
			cfgm.WithEnvBindings(map[string]string{
				"JOBTPL_RENDER_KEEP_ABSENT": "render.keep_absent",
				"JOBTPL_RENDER_EXPAND_ENV":  "render.expand_env",
			}),
		}, opts...)...,
	)
}
