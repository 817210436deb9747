// Package ctree 提供不可变的嵌套配置树与路径解析功能。
//
// 配置树 (Tree) 是作业模板解析的基础数据结构：加载一次、只读共享，
// 多个 goroutine 可并发解析而无需加锁。
//
// # 核心设计原则
//
//  1. 不可变：构造时深拷贝输入，Raw/Resolve 返回的也是拷贝
//  2. 缺失可表达：路径未命中返回 [Absent] 哨兵值，与 nil (显式 null) 严格区分
//  3. 解析不报错：缺键、中途遇到标量等情况一律折叠为 [Absent]，永不 panic
//
// # 路径解析
//
// [Tree.Resolve] 按键逐级下降：
//
//	tree := ctree.New(map[string]any{
//	    "optional": map[string]any{
//	        "qd": map[string]any{"dirname": "QD"},
//	    },
//	})
//	tree.Resolve(ctree.Path{"optional", "qd", "dirname"}) // "QD"
//	tree.Resolve(ctree.Path{"optional", "qd", "missing"}) // ctree.Absent
//	tree.Resolve(nil)                                     // 整棵树的拷贝
//
// # 加载来源
//
// 支持多文件按顺序合并（后者覆盖前者）：
//
//	tree, err := ctree.Load("defaults.yaml", "settings.yaml")
//
// 也支持从内存字节加载，格式由扩展名或显式指定：
//
//	tree, err := ctree.FromBytes(data, "yaml")
package ctree
