package cfgm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// loader 汇总所有加载选项。
type loader struct {
	configPaths []string
	envPrefix   string
	envBindings map[string]string
	cmd         *cli.Command
}

// Option 配置加载选项
type Option func(*loader)

// WithConfigPaths 设置配置文件搜索路径（按顺序，找到第一个即停止）。
func WithConfigPaths(paths ...string) Option {
	return func(l *loader) { l.configPaths = paths }
}

// WithEnvPrefix 启用环境变量前缀加载。
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) { l.envPrefix = prefix }
}

// WithEnvBindings 绑定指定环境变量到配置 key。
//
//	cfgm.WithEnvBindings(map[string]string{
//	    "SCRATCH": "base.workdir",
//	})
func WithEnvBindings(bindings map[string]string) Option {
	return func(l *loader) { l.envBindings = bindings }
}

// WithCommand 启用 CLI flags 覆盖（最高优先级）。
func WithCommand(cmd *cli.Command) Option {
	return func(l *loader) { l.cmd = cmd }
}

// DefaultPaths 返回默认配置文件搜索路径
// appName 可选，若提供则包含用户主目录和系统配置目录
func DefaultPaths(appName ...string) []string {
	paths := []string{
		"config.yaml",
		"config/config.yaml",
	}

	if len(appName) > 0 && appName[0] != "" {
		name := appName[0]
		// 添加用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "."+name+".yaml"))
		}
		// 添加系统配置目录
		paths = append(paths, "/etc/"+name+"/config.yaml")
	}

	return paths
}

// Load 按优先级加载配置：默认值 → 配置文件 → 环境变量 → CLI flags。
//
// 泛型参数 T 为配置结构体类型，必须使用 koanf tag 标记字段。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}

	k := koanf.New(".")

	// 1️⃣ 加载默认配置 (最低优先级)
	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("加载默认配置失败: %w", err)
	}

	// 2️⃣ 加载配置文件 (按顺序搜索，找到第一个即停止)
	configLoaded := false
	for _, path := range l.configPaths {
		if err := k.Load(file.Provider(path), parserForPath(path)); err == nil {
			slog.Debug("已加载配置文件", "path", path)
			configLoaded = true
			break
		}
	}
	if !configLoaded && len(l.configPaths) > 0 {
		slog.Debug("未找到配置文件，使用默认值")
	}

	// 3️⃣ 加载带前缀的环境变量
	if l.envPrefix != "" {
		if err := k.Load(confmap.Provider(envMap(l.envPrefix), "."), nil); err != nil {
			return nil, fmt.Errorf("加载环境变量失败: %w", err)
		}
	}

	// 4️⃣ 加载绑定的环境变量
	if len(l.envBindings) > 0 {
		bound := make(map[string]any)
		for env, key := range l.envBindings {
			if val, ok := os.LookupEnv(env); ok {
				bound[key] = val
			}
		}
		if err := k.Load(confmap.Provider(bound, "."), nil); err != nil {
			return nil, fmt.Errorf("加载环境变量绑定失败: %w", err)
		}
	}

	// 5️⃣ 加载 CLI flags (最高优先级，仅当用户明确指定时)
	if l.cmd != nil {
		applyCLIFlags(l.cmd, k, defaultConfig)
	}

	// 解析到结构体
	var cfg T
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return &cfg, nil
}

// LoadCmd 以约定选项加载配置：默认搜索路径 + CLI flags。
func LoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) (*T, error) {
	return Load(defaultConfig,
		append([]Option{
			WithCommand(cmd),
			WithConfigPaths(DefaultPaths(appName)...),
		}, opts...)...,
	)
}

// envKeyDecoder 返回环境变量名到配置 key 的解码函数。
//
// 规则：去前缀、转小写、下划线转点号。
func envKeyDecoder(prefix string) func(string) string {
	return func(name string) string {
		key := strings.TrimPrefix(name, prefix)
		key = strings.ToLower(key)

		return strings.ReplaceAll(key, "_", ".")
	}
}

// envMap 收集带前缀的环境变量，key 经 envKeyDecoder 解码。
func envMap(prefix string) map[string]any {
	decode := envKeyDecoder(prefix)

	out := make(map[string]any)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], prefix) {
			continue
		}
		out[decode(parts[0])] = parts[1]
	}

	return out
}

// applyCLIFlags 通过反射将用户明确指定的 CLI flags 应用到 koanf 实例
// 自动根据配置结构体的 koanf 标签映射 CLI flag 名称
// koanf 标签使用 snake_case，CLI flag 使用 kebab-case
func applyCLIFlags[T any](cmd *cli.Command, k *koanf.Koanf, defaultConfig T) {
	applyCLIFlagsRecursive(cmd, k, reflect.TypeOf(defaultConfig), "")
}

// applyCLIFlagsRecursive 递归遍历结构体字段应用 CLI flags
func applyCLIFlagsRecursive(cmd *cli.Command, k *koanf.Koanf, typ reflect.Type, prefix string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// 获取 koanf 标签作为配置 key (snake_case)
		koanfKey := field.Tag.Get("koanf")
		if koanfKey == "" {
			continue
		}

		// 构建完整的 koanf key 和 CLI flag 名称
		fullKoanfKey := koanfKey
		if prefix != "" {
			fullKoanfKey = prefix + "." + koanfKey
		}

		// 转换为 CLI flag 名称 (kebab-case)
		cliFlag := strings.ReplaceAll(fullKoanfKey, ".", "-")
		cliFlag = strings.ReplaceAll(cliFlag, "_", "-")

		// 如果是嵌套结构体，递归处理
		if field.Type.Kind() == reflect.Struct &&
			field.Type != reflect.TypeFor[time.Duration]() &&
			field.Type != reflect.TypeFor[time.Time]() {
			applyCLIFlagsRecursive(cmd, k, field.Type, fullKoanfKey)
			continue
		}

		// 只有用户明确指定时才覆盖
		if !cmd.IsSet(cliFlag) {
			continue
		}

		// 根据字段类型获取值并设置
		setCLIFlagValue(cmd, k, fullKoanfKey, cliFlag, field.Type)
	}
}

// setCLIFlagValue 根据字段类型从 CLI 获取值并设置到 koanf
func setCLIFlagValue(cmd *cli.Command, k *koanf.Koanf, koanfKey, cliFlag string, fieldType reflect.Type) {
	// 先检查特殊类型 (time.Duration, time.Time)
	switch fieldType {
	case reflect.TypeFor[time.Duration]():
		_ = k.Set(koanfKey, cmd.Duration(cliFlag))
		return
	case reflect.TypeFor[time.Time]():
		_ = k.Set(koanfKey, cmd.Timestamp(cliFlag))
		return
	}

	// 处理基本类型和切片
	switch fieldType.Kind() {
	case reflect.String:
		_ = k.Set(koanfKey, cmd.String(cliFlag))
	case reflect.Bool:
		_ = k.Set(koanfKey, cmd.Bool(cliFlag))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_ = k.Set(koanfKey, cmd.Int(cliFlag))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_ = k.Set(koanfKey, cmd.Uint(cliFlag))
	case reflect.Float32, reflect.Float64:
		_ = k.Set(koanfKey, cmd.Float64(cliFlag))
	case reflect.Slice:
		if fieldType.Elem().Kind() == reflect.String {
			_ = k.Set(koanfKey, cmd.StringSlice(cliFlag))
		}
	case reflect.Map:
		if fieldType.Key().Kind() == reflect.String && fieldType.Elem().Kind() == reflect.String {
			_ = k.Set(koanfKey, cmd.StringMap(cliFlag))
		}
	}
}

// parserForPath 根据文件扩展名选择解析器，未识别时默认 YAML。
func parserForPath(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Parser()
	}

	return yaml.Parser()
}
