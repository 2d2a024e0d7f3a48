package core

import (
	"fmt"

	"inktrace/pkg/types"
)

// CatalogVariant 是快照里的一个变体
type CatalogVariant struct {
	Path    string `cbor:"p"`
	Index   int    `cbor:"i"`
	ViewBox string `cbor:"vb,omitempty"` // 空串表示没有可用的裁切框
}

// CatalogGroup 是快照里的一个字符分组
type CatalogGroup struct {
	Key        string           `cbor:"k"`
	CodePoints []rune           `cbor:"cp,omitempty"`
	Decoded    bool             `cbor:"d"`
	Variants   []CatalogVariant `cbor:"v"`
}

// Catalog 是一次扫描的不可变快照，按内容寻址
type Catalog struct {
	hash     types.Hash `cbor:"-"`
	rawBytes []byte     `cbor:"-"`

	TypeVal   ObjectType     `cbor:"t"`
	Root      string         `cbor:"r"`
	Revision  string         `cbor:"rev,omitempty"` // git HEAD，非 git 目录为空
	ScannedAt int64          `cbor:"ts"`
	Groups    []CatalogGroup `cbor:"g"`
}

// NewCatalog 创建快照并立即计算 Hash
func NewCatalog(root, revision string, scannedAt int64, groups []CatalogGroup) (*Catalog, error) {
	c := &Catalog{
		TypeVal:   TypeCatalog,
		Root:      root,
		Revision:  revision,
		ScannedAt: scannedAt,
		Groups:    groups,
	}
	h, b, err := CalculateHash(c)
	if err != nil {
		return nil, err
	}
	c.hash = h
	c.rawBytes = b
	return c, nil
}

// DecodeCatalog 从存储中读出的字节还原快照
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := DecodeObject(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if c.TypeVal != TypeCatalog {
		return nil, fmt.Errorf("object is not a catalog, got: %q", c.TypeVal)
	}
	c.hash = CalculateBlobHash(data)
	c.rawBytes = data
	return &c, nil
}

func (c *Catalog) Type() ObjectType { return TypeCatalog }
func (c *Catalog) ID() types.Hash   { return c.hash }
func (c *Catalog) Bytes() []byte    { return c.rawBytes }

// AssetCount 返回快照中所有变体的总数
func (c *Catalog) AssetCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Variants)
	}
	return n
}
