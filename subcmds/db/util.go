// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"github.com/bvk/coinwatch/gobs"
)

func TypeNameValue(typename string) (any, error) {
	return gobs.NewByTypename(typename)
}
