// Package gater 实现接入黑名单插件
//
// 接入钩子按注册顺序评估全部规则，首个拒绝即拒绝连接。
// 规则集可在运行时增删：读者遍历不可变快照，增删不会阻塞接入。
//
//	bl := gater.New(gater.DefaultConfig())
//	rule := gater.DenyAddr("10.0.0.7")
//	bl.AddRule(rule)
//	...
//	bl.RemoveRule(rule)
//
// 规则以身份比较，RemoveRule 须传入 AddRule 时的同一规则值。
package gater
