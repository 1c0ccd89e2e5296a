// Package repository 定义领域仓储接口
package repository

import "context"

// Transactor 事务执行接口
// fn 内通过 ctx 传递事务；嵌套调用时复用外层事务
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
