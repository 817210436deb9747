package tmpl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// templateFuncs 模板函数映射表
var templateFuncs = template.FuncMap{
	"env":      envFunc,
	"default":  defaultFunc,
	"coalesce": coalesceFunc,
	"joinpath": filepath.Join,
}

// envFunc 获取环境变量，支持可选的默认值。
//
// 使用方式：
//   - {{env "VAR"}}           获取环境变量，未设置时返回空字符串
//   - {{env "VAR" "default"}} 获取环境变量，未设置时返回默认值
func envFunc(key string, defaultVal ...string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if len(defaultVal) > 0 {
		return defaultVal[0]
	}

	return ""
}

// defaultFunc 提供默认值（管道友好）。
//
// 参数顺序与 Sprig 一致：default(默认值, 实际值)。
func defaultFunc(defaultVal, value any) any {
	if value == nil {
		return defaultVal
	}
	if str, ok := value.(string); ok && str == "" {
		return defaultVal
	}

	return value
}

// coalesceFunc 返回第一个非空值。
//
// 使用方式：{{coalesce .SCRATCH .TMPDIR "/tmp"}}
func coalesceFunc(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}

		return v
	}

	return nil
}

// envData 把当前进程的环境变量加载到顶级命名空间。
func envData() map[string]string {
	vars := make(map[string]string)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			vars[parts[0]] = parts[1]
		}
	}

	return vars
}

// Expand 展开字符串中的模板引用。
//
// 所有环境变量自动加载到顶级命名空间，支持 {{.VAR}}、{{env "VAR"}}、
// 管道默认值与 joinpath 拼接。模板语法错误或执行失败时返回 error，
// 不含 "{{" 的字符串直接原样返回。
func Expand(text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tpl, err := template.New("field").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, envData()); err != nil {
		return "", err
	}

	return buf.String(), nil
}
