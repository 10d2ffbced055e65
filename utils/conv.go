package utils

import (
	"sort"
	"strconv"
)

func MustAtoi(integer string) int {
	ret, err := strconv.Atoi(integer)
	if err != nil {
		panic(err)
	}

	return ret
}

func UintToPtr(v uint) *uint {
	return &v
}

// SortedKeys 返回 map[uint]string 的 key 升序列表，用于保证遍历顺序确定。
func SortedKeys(m map[uint]string) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

// SortedKeysOfNames 同 SortedKeys，针对值为名称列表的 map。
func SortedKeysOfNames(m map[uint][]string) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}
