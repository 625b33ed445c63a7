// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
)

// StackItem is a value held by the evaluation or alt stack. Conversions
// follow the NEO 2 rules: integers are little-endian two's complement byte
// arrays, booleans are {1} or {} and any non-zero byte makes a byte array
// truthy.
type StackItem interface {
	TypeName() string
	Bytes() ([]byte, error)
	BigInt() (*big.Int, error)
	Bool() bool
	Equals(other StackItem) bool
	String() string
}

var (
	_ StackItem = (*Integer)(nil)
	_ StackItem = ByteArray(nil)
	_ StackItem = Boolean(false)
	_ StackItem = (*Array)(nil)
	_ StackItem = (*Map)(nil)
)

// Integer is an arbitrary precision integer item.
type Integer struct {
	Value *big.Int
}

// NewInteger creates an Integer item from v.
func NewInteger(v int64) *Integer {
	return &Integer{Value: big.NewInt(v)}
}

// NewBigInteger creates an Integer item holding a copy of v.
func NewBigInteger(v *big.Int) *Integer {
	return &Integer{Value: new(big.Int).Set(v)}
}

// TypeName implements StackItem interface.
func (*Integer) TypeName() string { return "Integer" }

// Bytes implements StackItem interface.
func (i *Integer) Bytes() ([]byte, error) { return IntToBytes(i.Value), nil }

// BigInt implements StackItem interface.
func (i *Integer) BigInt() (*big.Int, error) { return i.Value, nil }

// Bool implements StackItem interface.
func (i *Integer) Bool() bool { return i.Value.Sign() != 0 }

// Equals implements StackItem interface.
func (i *Integer) Equals(other StackItem) bool {
	if o, ok := other.(*Integer); ok {
		return i.Value.Cmp(o.Value) == 0
	}
	return bytesEqual(i, other)
}

func (i *Integer) String() string { return i.Value.String() }

// ByteArray is a raw byte buffer item. Strings are byte arrays.
type ByteArray []byte

// TypeName implements StackItem interface.
func (ByteArray) TypeName() string { return "ByteArray" }

// Bytes implements StackItem interface.
func (b ByteArray) Bytes() ([]byte, error) { return b, nil }

// BigInt implements StackItem interface.
func (b ByteArray) BigInt() (*big.Int, error) { return BytesToInt(b), nil }

// Bool implements StackItem interface.
func (b ByteArray) Bool() bool {
	for _, c := range b {
		if c != 0 {
			return true
		}
	}
	return false
}

// Equals implements StackItem interface.
func (b ByteArray) Equals(other StackItem) bool {
	if o, ok := other.(ByteArray); ok {
		return bytes.Equal(b, o)
	}
	return bytesEqual(b, other)
}

func (b ByteArray) String() string {
	if isPrintable(b) {
		return strconv.Quote(string(b))
	}
	return "0x" + hex.EncodeToString(b)
}

// Boolean is a boolean item.
type Boolean bool

// TypeName implements StackItem interface.
func (Boolean) TypeName() string { return "Boolean" }

// Bytes implements StackItem interface.
func (b Boolean) Bytes() ([]byte, error) {
	if b {
		return []byte{1}, nil
	}
	return []byte{}, nil
}

// BigInt implements StackItem interface.
func (b Boolean) BigInt() (*big.Int, error) {
	if b {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// Bool implements StackItem interface.
func (b Boolean) Bool() bool { return bool(b) }

// Equals implements StackItem interface.
func (b Boolean) Equals(other StackItem) bool {
	if o, ok := other.(Boolean); ok {
		return b == o
	}
	return bytesEqual(b, other)
}

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Array is a mutable, reference typed list of items. A Struct is an Array
// with value semantics: it is cloned when stored into another container.
type Array struct {
	Items  []StackItem
	Struct bool
}

// NewArray creates an Array with given items.
func NewArray(items ...StackItem) *Array {
	return &Array{Items: items}
}

// TypeName implements StackItem interface.
func (a *Array) TypeName() string {
	if a.Struct {
		return "Struct"
	}
	return "Array"
}

// Bytes implements StackItem interface.
func (a *Array) Bytes() ([]byte, error) {
	return nil, ErrType.NewError("cannot convert", a.TypeName(), "to bytes")
}

// BigInt implements StackItem interface.
func (a *Array) BigInt() (*big.Int, error) {
	return nil, ErrType.NewError("cannot convert", a.TypeName(), "to integer")
}

// Bool implements StackItem interface.
func (*Array) Bool() bool { return true }

// Equals implements StackItem interface.
func (a *Array) Equals(other StackItem) bool {
	o, ok := other.(*Array)
	if !ok {
		return false
	}
	if a == o {
		return true
	}
	if !a.Struct || !o.Struct || len(a.Items) != len(o.Items) {
		return false
	}
	for i := range a.Items {
		if !a.Items[i].Equals(o.Items[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of a Struct and a itself for an Array.
func (a *Array) Clone() *Array {
	if !a.Struct {
		return a
	}
	items := make([]StackItem, len(a.Items))
	for i, item := range a.Items {
		if s, ok := item.(*Array); ok && s.Struct {
			item = s.Clone()
		}
		items[i] = item
	}
	return &Array{Items: items, Struct: true}
}

func (a *Array) String() string {
	return a.format(0)
}

const maxFormatDepth = 4

func (a *Array) format(depth int) string {
	if depth >= maxFormatDepth {
		return "[...]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range a.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatItem(item, depth+1))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Map is an insertion ordered map keyed by primitive items. Keys compare by
// their byte representation.
type Map struct {
	keys   []StackItem
	values map[string]StackItem
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]StackItem)}
}

// TypeName implements StackItem interface.
func (*Map) TypeName() string { return "Map" }

// Bytes implements StackItem interface.
func (m *Map) Bytes() ([]byte, error) {
	return nil, ErrType.NewError("cannot convert Map to bytes")
}

// BigInt implements StackItem interface.
func (m *Map) BigInt() (*big.Int, error) {
	return nil, ErrType.NewError("cannot convert Map to integer")
}

// Bool implements StackItem interface.
func (*Map) Bool() bool { return true }

// Equals implements StackItem interface.
func (m *Map) Equals(other StackItem) bool {
	o, ok := other.(*Map)
	return ok && m == o
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Get returns the value stored for key.
func (m *Map) Get(key StackItem) (StackItem, bool, error) {
	k, err := mapKey(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := m.values[k]
	return v, ok, nil
}

// Set stores value for key.
func (m *Map) Set(key, value StackItem) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[k] = value
	return nil
}

// Delete removes key if present.
func (m *Map) Delete(key StackItem) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	if _, ok := m.values[k]; !ok {
		return nil
	}
	delete(m.values, k)
	for i := range m.keys {
		if kk, _ := mapKey(m.keys[i]); kk == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Keys returns keys in insertion order.
func (m *Map) Keys() []StackItem {
	return append([]StackItem(nil), m.keys...)
}

// Values returns values in key insertion order.
func (m *Map) Values() []StackItem {
	values := make([]StackItem, 0, len(m.keys))
	for _, key := range m.keys {
		k, _ := mapKey(key)
		values = append(values, m.values[k])
	}
	return values
}

func (m *Map) String() string {
	return m.format(0)
}

func (m *Map) format(depth int) string {
	if depth >= maxFormatDepth {
		return "{...}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		k, _ := mapKey(key)
		sb.WriteString(key.String())
		sb.WriteString(": ")
		sb.WriteString(formatItem(m.values[k], depth+1))
	}
	sb.WriteByte('}')
	return sb.String()
}

func formatItem(item StackItem, depth int) string {
	switch v := item.(type) {
	case *Array:
		return v.format(depth)
	case *Map:
		return v.format(depth)
	}
	return item.String()
}

func mapKey(key StackItem) (string, error) {
	switch key.(type) {
	case *Array, *Map:
		return "", ErrType.NewError("invalid map key type", key.TypeName())
	}
	b, err := key.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func bytesEqual(item, other StackItem) bool {
	a, err := item.Bytes()
	if err != nil {
		return false
	}
	b, err := other.Bytes()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// IntToBytes encodes v as minimal little-endian two's complement. Zero is
// encoded as an empty slice.
func IntToBytes(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return []byte{}
	case 1:
		b := reverse(v.Bytes())
		if b[len(b)-1]&0x80 != 0 {
			b = append(b, 0x00)
		}
		return b
	}
	// |v| - 1, inverted, is the two's complement magnitude of v.
	m := new(big.Int).Neg(v)
	m.Sub(m, big.NewInt(1))
	b := reverse(m.Bytes())
	for i := range b {
		b[i] = ^b[i]
	}
	if len(b) == 0 || b[len(b)-1]&0x80 == 0 {
		b = append(b, 0xFF)
	}
	return b
}

// BytesToInt decodes little-endian two's complement bytes.
func BytesToInt(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	v := new(big.Int).SetBytes(reverse(b))
	if b[len(b)-1]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return v
}

func reverse(b []byte) []byte {
	r := make([]byte, len(b))
	for i := range b {
		r[len(b)-1-i] = b[i]
	}
	return r
}
