package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"inktrace/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 规范化 (Canonical) 的 CBOR 编码选项
var encOptions = cbor.EncOptions{
	// 1. 强制 Map Key 排序
	// 保证相同的快照生成唯一的 Hash
	Sort: cbor.SortCanonical,

	// 2. 浮点数固定 64 位表示
	ShortestFloat: cbor.ShortestFloatNone,

	// 3. 时间一律存 Unix 整数
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 4. 禁止不定长编码
	IndefLength: cbor.IndefLengthForbidden,
}

// 全局复用的编码模式
var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	// 防止恶意构造的巨大头部耗尽内存
	// 一个仓库可能有数万个 SVG，所以数组上限放宽
	MaxArrayElements: 1_000_000,
	MaxMapPairs:      10000,
	MaxNestedLevels:  32,

	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,

	// 文件名不一定是合法 UTF-8，编码时原样写入，解码时也必须原样读回
	UTF8: cbor.UTF8DecodeInvalid,
}

var dm, _ = decOptions.DecMode()

// CalculateHash 计算对象的 Hash 和序列化数据
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return CalculateBlobHash(data), data, nil
}

// CalculateBlobHash 计算原始字节的 Hash
func CalculateBlobHash(data []byte) types.Hash {
	sum := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(sum[:]))
}

// DecodeObject 通用的解码函数
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}
