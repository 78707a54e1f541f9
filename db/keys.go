package db

import (
	"encoding/binary"
	"fmt"

	"ecgroup/curve"

	"github.com/spaolacci/murmur3"
)

// KeyVersion 所有 key 的版本前缀（"v1_<key>"），编码变了就升级
const KeyVersion = "v1"

func withVer(s string) string {
	if KeyVersion == "" {
		return s
	}
	return KeyVersion + "_" + s
}

// murmur3-64，输入是大端的 (a, b, m)
func paramsHash(p curve.Params) uint64 {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(p.A))
	binary.BigEndian.PutUint64(buf[8:16], uint64(p.B))
	binary.BigEndian.PutUint64(buf[16:24], uint64(p.M))
	return murmur3.Sum64(buf[:])
}

func KeyClassificationPrefix() string { return withVer("classification_") }

// 例如 v1_classification_<hash>_7
func KeyClassification(p curve.Params) string {
	return fmt.Sprintf("%s%016x_%d", KeyClassificationPrefix(), paramsHash(p), p.M)
}
