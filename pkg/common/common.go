package common

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// SetIDNode selects the snowflake node used by UUIDint64. It must be called
// before the first ID is generated to have any effect.
func SetIDNode(node int64) {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(node)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
}

// UUIDint64 returns a time ordered, process unique 64 bit ID.
func UUIDint64() int64 {
	SetIDNode(1)
	return idNode.Generate().Int64()
}

func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}

// UniqueInt64s removes duplicates while keeping first-seen order.
func UniqueInt64s(src []int64) []int64 {
	seen := make(map[int64]struct{}, len(src))
	out := make([]int64, 0, len(src))
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
