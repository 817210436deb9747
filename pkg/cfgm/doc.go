// Package cfgm 提供通用的配置加载功能，可被外部项目复用。
//
// # 加载优先级 (从低到高)
//
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 [WithConfigPaths] 设置，按顺序搜索，找到第一个即停止
//  3. 环境变量(前缀) - 通过 [WithEnvPrefix] 启用
//  4. 环境变量(绑定) - 通过 [WithEnvBindings] 设置
//  5. CLI flags - 通过 [WithCommand] 设置，最高优先级
//
// # 快速开始
//
// 定义配置结构体，使用 koanf 和 desc 标签：
//
//	type Config struct {
//	    Name    string        `koanf:"name"    desc:"应用名称"`
//	    Debug   bool          `koanf:"debug"   desc:"调试模式"`
//	    Timeout time.Duration `koanf:"timeout" desc:"超时时间"`
//	}
//
// 推荐使用 [LoadCmd]：
//
//	cfg, err := cfgm.LoadCmd(cmd, DefaultConfig(), "myapp",
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
//
// 或使用 [Load] 自由组合选项：
//
//	cfg, err := cfgm.Load(DefaultConfig(),
//	    cfgm.WithConfigPaths(cfgm.DefaultPaths("myapp")...),
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	    cfgm.WithCommand(cmd),
//	)
//
// # 环境变量(前缀)
//
// 命名规则：前缀 + 大写的 koanf key，点号 (.) 转为下划线 (_)。
//
// 示例 (前缀为 "MYAPP_")：
//   - MYAPP_DEBUG → debug
//   - MYAPP_BASE_PATHS → base.paths
//
// # CLI Flag 映射
//
// koanf key 转为 kebab-case 后匹配 flag 名，仅当用户明确指定时覆盖：
//   - render.format → --render-format
//   - catalog.path → --catalog-path
//
// # 生成配置示例
//
// [ExampleYAML] 根据 desc 标签生成带注释的 YAML 示例；配合
// [ConfigTestHelper] 可在测试中维护 config.example.yaml 并校验
// config.yaml 不含无效键。
package cfgm
