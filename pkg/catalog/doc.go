// Package catalog 提供作业模板目录的加载、校验与查询功能。
//
// 模板目录描述一组命名的作业模板 (TemplateSpec)，每个模板由描述、
// 分子类型标签与字段映射组成，字段值要么是字面量，要么是指向基础
// 配置树的路径。目录加载一次后只读，可安全地并发查询。
//
// # 目录格式
//
// YAML 或 JSON（按扩展名识别），顶层为 模板名 → 模板定义：
//
//	qd_opt:
//	  description: 量子点几何优化作业
//	  mol_type: qd
//	  template:
//	    dirname:
//	      path: [optional, qd, dirname]
//	    job1:
//	      value: UFF
//
// 每个字段必须显式声明为 path（路径查找）或 value（字面量）二者之一。
// 原始数据中 [H] 这类字面量序列与 [optional, qd, dirname] 这类路径
// 序列在语法上无法区分，因此这里不按形状推断，一律要求显式标注。
//
// # 错误处理
//
// 加载时逐条校验：单条模板缺少 template 键、mol_type 不在已知标签中、
// 字段未标注 path/value 等问题只使该条目失效，其余条目正常加载；
// [Load] 返回所有失效条目的聚合错误，而非遇到第一条即中止。
package catalog
