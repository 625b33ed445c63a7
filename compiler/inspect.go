// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"errors"
	"fmt"

	"github.com/Hiyho/neo-one/vm"
)

// Undefined is the Go form of the undefined value.
type Undefined struct{}

func (Undefined) String() string { return "undefined" }

// Symbol is the Go form of a symbol value.
type Symbol struct {
	Description string
}

func (s Symbol) String() string { return "Symbol(" + s.Description + ")" }

// Function is the Go form of a callable object.
type Function struct{}

func (Function) String() string { return "[function]" }

// Object is the Go form of an object's own string keyed properties.
type Object map[string]interface{}

const maxInspectDepth = 16

var errNotValue = errors.New("not a runtime value")

// Inspect converts a runtime value left by a compiled script to Go:
// Undefined, nil for null, bool, int64 (or *big.Int when out of range),
// string, Symbol, Function, []interface{} for arrays and Object otherwise.
func Inspect(item vm.StackItem) (interface{}, error) {
	return inspect(item, 0)
}

func inspect(item vm.StackItem, depth int) (interface{}, error) {
	if depth > maxInspectDepth {
		return nil, fmt.Errorf("value nested deeper than %d", maxInspectDepth)
	}
	arr, ok := item.(*vm.Array)
	if !ok || len(arr.Items) != 2 {
		return nil, fmt.Errorf("%w: %s", errNotValue, item.TypeName())
	}
	n, err := arr.Items[1].BigInt()
	if err != nil || !n.IsInt64() {
		return nil, fmt.Errorf("%w: invalid tag", errNotValue)
	}
	payload := arr.Items[0]
	switch Tag(n.Int64()) {
	case TagUndefined:
		return Undefined{}, nil
	case TagNull:
		return nil, nil
	case TagBoolean:
		return payload.Bool(), nil
	case TagNumber:
		v, err := payload.BigInt()
		if err != nil {
			return nil, err
		}
		if v.IsInt64() {
			return v.Int64(), nil
		}
		return v, nil
	case TagString:
		b, err := payload.Bytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case TagSymbol:
		b, err := payload.Bytes()
		if err != nil {
			return nil, err
		}
		return Symbol{Description: string(b)}, nil
	case TagObject:
		return inspectObject(payload, depth)
	}
	return nil, fmt.Errorf("%w: unknown tag %s", errNotValue, n)
}

func inspectObject(payload vm.StackItem, depth int) (interface{}, error) {
	obj, ok := payload.(*vm.Array)
	if !ok || len(obj.Items) < objectData {
		return nil, fmt.Errorf("%w: malformed object", errNotValue)
	}
	if internal, ok := obj.Items[objectInternal].(*vm.Map); ok {
		if _, found, _ := internal.Get(vm.ByteArray(internalCall)); found {
			return Function{}, nil
		}
	}
	if len(obj.Items) > objectData {
		data, ok := obj.Items[objectData].(*vm.Array)
		if !ok {
			return nil, fmt.Errorf("%w: malformed array", errNotValue)
		}
		out := make([]interface{}, len(data.Items))
		for i, it := range data.Items {
			v, err := inspect(it, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	props, ok := obj.Items[objectProperties].(*vm.Map)
	if !ok {
		return nil, fmt.Errorf("%w: malformed object", errNotValue)
	}
	out := make(Object, props.Len())
	keys, values := props.Keys(), props.Values()
	for i, k := range keys {
		b, err := k.Bytes()
		if err != nil {
			return nil, err
		}
		if string(b) == propertyPrototype {
			continue
		}
		v, err := inspect(values[i], depth+1)
		if err != nil {
			return nil, err
		}
		out[string(b)] = v
	}
	return out, nil
}
