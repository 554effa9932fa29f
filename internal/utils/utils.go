package utils

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func GenerateID() string {
	return uuid.NewString()
}

// MergeMetadata returns a copy of m with kv written over it.
func MergeMetadata(m datatypes.JSONMap, kv map[string]interface{}) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m)+len(kv))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range kv {
		out[k] = v
	}
	return out
}
