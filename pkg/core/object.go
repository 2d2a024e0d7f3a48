package core

import "inktrace/pkg/types"

// ObjectType 定义了可以写入对象存储的对象类型
type ObjectType string

const (
	TypeCatalog ObjectType = "catalog" // 一次扫描的完整快照
)

// Object 是所有内容寻址对象的通用接口
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象的哈希值 (序列化字节的 SHA-256)
	ID() types.Hash

	// Bytes 返回对象的序列化数据 (用于存储)
	Bytes() []byte
}
