// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"fmt"
)

func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "KeyValue":
		v = new(KeyValue)
	case "SessionState":
		v = new(SessionState)
	case "MarketSnapshot":
		v = new(MarketSnapshot)
	case "TelegramState":
		v = new(TelegramState)
	case "ServerState":
		v = new(ServerState)
	default:
		return nil, fmt.Errorf("unsupported gob type name %q", typename)
	}
	return v, nil
}
