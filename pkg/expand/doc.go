// Package expand 提供作业模板的展开功能：把模板中的路径字段解析为
// 基础配置树中的值，字面量字段原样拷贝，产出完整的作业输入映射。
//
// # 核心设计原则
//
//  1. 全量展开：单个字段解析失败只降级为 [ctree.Absent]，不影响整次调用
//  2. 字段独立：各字段的解析互不依赖，展开结果与字段顺序无关
//  3. 纯函数：不修改模板与配置树，每次调用产出全新的 [Job]
//
// Absent 字段保留在输出中而非静默丢弃，下游可据此区分
// "显式 null" 与 "未配置"；需要精简输出时调用 [Job.Compact]。
//
// # 使用示例
//
//	tpl, _ := cat.MustGet("qd_opt")
//	job := expand.Expand(tpl, base)
//	data, _ := job.ToYAML()
package expand
