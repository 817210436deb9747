// Package tmpl 提供作业字段字符串的模板展开功能。
//
// 模板语法与 Taskfile 对齐，作业模板中的字符串字面量可引用环境变量，
// 典型场景是作业目录、数据库路径等依赖运行环境的字段。
//
// # 核心设计原则
//
//  1. 环境变量通过 {{.VAR}} 自动可用（Taskfile 风格）
//  2. env 函数可选，在变量名冲突时使用
//  3. 管道友好：{{.VAR | default "fallback"}}
//  4. joinpath 函数拼接目录字段，避免手写分隔符
//
// # 支持的函数
//
//   - env: 获取环境变量 {{env "VAR"}} 或 {{env "VAR" "default"}}
//   - default: 管道默认值 {{.VAR | default "fallback"}}
//   - coalesce: 返回第一个非空值 {{coalesce .VAR1 .VAR2 "default"}}
//   - joinpath: 路径拼接 {{joinpath .WORKDIR "qd" "database"}}
//
// 详见 [Expand] 文档。
package tmpl
