package ir

import (
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface over the values a snapshot may carry.
// Only IRString, IRInt, IRBool, IRArray and IRObject implement it.
// CRITICAL: there is no float and no null; both break canonical hashing.
type IRValue interface {
	irValue()
}

// IRString is a string value.
type IRString string

// IRInt is an integer value. Always int64.
type IRInt int64

// IRBool is a boolean value.
type IRBool bool

// IRArray is an ordered list of values.
type IRArray []IRValue

// IRObject maps keys to values. Iterate with SortedKeys for deterministic
// output.
type IRObject map[string]IRValue

func (IRString) irValue() {}
func (IRInt) irValue()    {}
func (IRBool) irValue()   {}
func (IRArray) irValue()  {}
func (IRObject) irValue() {}

// IRPair is one typed key/value entry for NewIRObject.
type IRPair struct {
	Key   string
	Value IRValue
}

// O is shorthand for IRPair.
func O(key string, value IRValue) IRPair {
	return IRPair{Key: key, Value: value}
}

// NewIRObject builds an IRObject from pairs; a repeated key keeps the last
// value.
func NewIRObject(pairs ...IRPair) IRObject {
	obj := make(IRObject, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns the keys in RFC 8785 order (UTF-16 code units).
// CRITICAL: this differs from Go's UTF-8 byte order for characters outside
// the Basic Multilingual Plane.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
