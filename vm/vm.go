// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
	"golang.org/x/crypto/ripemd160"
)

const (
	defaultMaxSteps     = 1 << 22
	defaultMaxStackSize = 2048
	invocationStackSize = 1024
)

var log = commonlog.GetLogger("neoone.vm")

// State is the execution state of a VM.
type State int

// VM states.
const (
	StateNone State = iota
	StateHalt
	StateFault
	StateBreak
)

func (s State) String() string {
	switch s {
	case StateHalt:
		return "HALT"
	case StateFault:
		return "FAULT"
	case StateBreak:
		return "BREAK"
	}
	return "NONE"
}

// VM executes a single script with one evaluation stack and one alt stack
// shared by all invocation contexts. CALL pushes the return address to the
// invocation stack, RET pops it; RET on an empty invocation stack or
// running past the end of the script halts the VM.
type VM struct {
	abort        int64
	script       []byte
	ip           int
	estack       Stack
	astack       Stack
	istack       []int
	state        State
	steps        int
	maxSteps     int
	maxStackSize int
	trace        io.Writer
	err          error
	mu           sync.Mutex
}

// NewVM creates a VM for script.
func NewVM(script []byte) *VM {
	return &VM{
		script:       script,
		maxSteps:     defaultMaxSteps,
		maxStackSize: defaultMaxStackSize,
	}
}

// SetTrace sets a writer receiving one line per executed instruction.
func (vm *VM) SetTrace(w io.Writer) *VM {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.trace = w
	return vm
}

// SetMaxSteps limits the number of executed instructions. Zero or negative
// disables the limit.
func (vm *VM) SetMaxSteps(n int) *VM {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.maxSteps = n
	return vm
}

// SetMaxStackSize limits the combined size of evaluation and alt stacks.
func (vm *VM) SetMaxStackSize(n int) *VM {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if n > 0 {
		vm.maxStackSize = n
	}
	return vm
}

// Abort aborts the VM execution.
func (vm *VM) Abort() {
	atomic.StoreInt64(&vm.abort, 1)
}

// State returns the current state.
func (vm *VM) State() State { return vm.state }

// IP returns the position of the next instruction.
func (vm *VM) IP() int { return vm.ip }

// Steps returns the number of executed instructions.
func (vm *VM) Steps() int { return vm.steps }

// Err returns the fault reason, if any.
func (vm *VM) Err() error { return vm.err }

// Estack returns evaluation stack items, top first.
func (vm *VM) Estack() []StackItem { return vm.estack.Items() }

// Astack returns alt stack items, top first.
func (vm *VM) Astack() []StackItem { return vm.astack.Items() }

// Reset clears the stacks and rewinds to the script start.
func (vm *VM) Reset() *VM {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.reset()
	return vm
}

func (vm *VM) reset() {
	vm.ip = 0
	vm.estack.Clear()
	vm.astack.Clear()
	vm.istack = vm.istack[:0]
	vm.state = StateNone
	vm.steps = 0
	vm.err = nil
	atomic.StoreInt64(&vm.abort, 0)
}

// Run executes the script from the beginning until it halts or faults.
func (vm *VM) Run() error {
	return vm.RunContext(context.Background())
}

// RunContext is like Run but aborts when ctx is done.
func (vm *VM) RunContext(ctx context.Context) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.reset()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Abort()
		case <-done:
		}
	}()

	for vm.state == StateNone {
		if atomic.LoadInt64(&vm.abort) != 0 {
			vm.fault(ErrVMAborted)
			break
		}
		vm.step()
	}
	if vm.state == StateFault {
		log.Debug("vm fault", "ip", vm.ip, "steps", vm.steps, "error", vm.err)
		return vm.err
	}
	log.Debug("vm halt", "steps", vm.steps, "depth", vm.estack.Len())
	return nil
}

// Step executes a single instruction and reports whether the VM can
// continue.
func (vm *VM) Step() (bool, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state == StateBreak {
		vm.state = StateNone
	}
	if vm.state != StateNone {
		return false, vm.err
	}
	vm.step()
	if vm.state == StateNone {
		vm.state = StateBreak
		return true, nil
	}
	return false, vm.err
}

func (vm *VM) fault(err error) {
	vm.state = StateFault
	vm.err = fmt.Errorf("at %04d: %w", vm.ip, err)
}

func (vm *VM) step() {
	if vm.ip >= len(vm.script) {
		vm.ret()
		return
	}
	if vm.maxSteps > 0 && vm.steps >= vm.maxSteps {
		vm.fault(ErrStepLimit)
		return
	}
	vm.steps++
	op := vm.script[vm.ip]
	if vm.trace != nil {
		_, _ = fmt.Fprintf(vm.trace, "%04d %-16s depth=%d alt=%d\n",
			vm.ip, OpcodeName(op), vm.estack.Len(), vm.astack.Len())
	}
	if err := vm.execute(op); err != nil {
		vm.fault(err)
		return
	}
	if vm.estack.Len()+vm.astack.Len() > vm.maxStackSize {
		vm.fault(ErrStackOverflow)
	}
}

func (vm *VM) ret() {
	if len(vm.istack) == 0 {
		vm.state = StateHalt
		return
	}
	vm.ip = vm.istack[len(vm.istack)-1]
	vm.istack = vm.istack[:len(vm.istack)-1]
}

func (vm *VM) readBytes(from, n int) ([]byte, error) {
	if n < 0 || from+n > len(vm.script) {
		return nil, ErrIndexOutOfBounds.NewError("push data exceeds script")
	}
	return vm.script[from : from+n], nil
}

func (vm *VM) jumpTarget() (int, error) {
	b, err := vm.readBytes(vm.ip+1, 2)
	if err != nil {
		return 0, err
	}
	target := vm.ip + int(int16(binary.LittleEndian.Uint16(b)))
	if target < 0 || target > len(vm.script) {
		return 0, ErrInvalidJump.NewError(fmt.Sprintf("target %d", target))
	}
	return target, nil
}

func (vm *VM) push(item StackItem) { vm.estack.Push(item) }

func (vm *VM) pop() (StackItem, error) { return vm.estack.Pop() }

func (vm *VM) popInt() (*big.Int, error) {
	item, err := vm.estack.Pop()
	if err != nil {
		return nil, err
	}
	return item.BigInt()
}

func (vm *VM) popIndex() (int, error) {
	v, err := vm.popInt()
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() < 0 || v.Int64() > int64(vm.maxStackSize)*1024 {
		return 0, ErrIndexOutOfBounds.NewError(v.String())
	}
	return int(v.Int64()), nil
}

func (vm *VM) popBytes() ([]byte, error) {
	item, err := vm.estack.Pop()
	if err != nil {
		return nil, err
	}
	return item.Bytes()
}

func (vm *VM) popBool() (bool, error) {
	item, err := vm.estack.Pop()
	if err != nil {
		return false, err
	}
	return item.Bool(), nil
}

func (vm *VM) popArray() (*Array, error) {
	item, err := vm.estack.Pop()
	if err != nil {
		return nil, err
	}
	arr, ok := item.(*Array)
	if !ok {
		return nil, ErrType.NewError("expected Array, found", item.TypeName())
	}
	return arr, nil
}

// execute runs op located at vm.ip and advances vm.ip.
func (vm *VM) execute(op Opcode) error {
	next := vm.ip + 1
	switch {
	case op == PUSH0:
		vm.push(ByteArray{})
	case op >= PUSHBYTES1 && op <= PUSHBYTES75:
		b, err := vm.readBytes(next, int(op))
		if err != nil {
			return err
		}
		vm.push(ByteArray(append([]byte(nil), b...)))
		next += int(op)
	case op == PUSHDATA1, op == PUSHDATA2, op == PUSHDATA4:
		width := map[Opcode]int{PUSHDATA1: 1, PUSHDATA2: 2, PUSHDATA4: 4}[op]
		lb, err := vm.readBytes(next, width)
		if err != nil {
			return err
		}
		var n int
		switch width {
		case 1:
			n = int(lb[0])
		case 2:
			n = int(binary.LittleEndian.Uint16(lb))
		default:
			n = int(binary.LittleEndian.Uint32(lb))
		}
		b, err := vm.readBytes(next+width, n)
		if err != nil {
			return err
		}
		vm.push(ByteArray(append([]byte(nil), b...)))
		next += width + n
	case op == PUSHM1 || (op >= PUSH1 && op <= PUSH16):
		vm.push(NewInteger(int64(op) - int64(PUSH1) + 1))
	default:
		return vm.executeOp(op, next)
	}
	vm.ip = next
	return nil
}

func (vm *VM) executeOp(op Opcode, next int) error {
	var err error
	switch op {
	case NOP:
	case JMP, JMPIF, JMPIFNOT:
		target, err := vm.jumpTarget()
		if err != nil {
			return err
		}
		jump := true
		if op != JMP {
			if jump, err = vm.popBool(); err != nil {
				return err
			}
			if op == JMPIFNOT {
				jump = !jump
			}
		}
		if jump {
			vm.ip = target
			return nil
		}
		next += 2
	case CALL:
		target, err := vm.jumpTarget()
		if err != nil {
			return err
		}
		if len(vm.istack) >= invocationStackSize {
			return ErrStackOverflow.NewError("invocation stack")
		}
		vm.istack = append(vm.istack, vm.ip+3)
		vm.ip = target
		return nil
	case RET:
		vm.ret()
		return nil
	case APPCALL, SYSCALL, TAILCALL, CHECKSIG, VERIFY, CHECKMULTISIG:
		return ErrNotSupported.NewError(OpcodeName(op))
	case DUPFROMALTSTACK:
		item, err := vm.astack.Peek(0)
		if err != nil {
			return err
		}
		vm.push(item)
	case TOALTSTACK:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		vm.astack.Push(item)
	case FROMALTSTACK:
		item, err := vm.astack.Pop()
		if err != nil {
			return err
		}
		vm.push(item)
	case XDROP, XSWAP, XTUCK, PICK, ROLL:
		err = vm.executeIndexed(op)
	case DEPTH:
		vm.push(NewInteger(int64(vm.estack.Len())))
	case DROP:
		_, err = vm.pop()
	case DUP:
		err = vm.pick(0)
	case NIP:
		_, err = vm.estack.Remove(1)
	case OVER:
		err = vm.pick(1)
	case ROT:
		err = vm.roll(2)
	case SWAP:
		err = vm.roll(1)
	case TUCK:
		var item StackItem
		if item, err = vm.estack.Peek(0); err == nil {
			err = vm.estack.Insert(2, item)
		}
	case CAT, SUBSTR, LEFT, RIGHT, SIZE:
		err = vm.executeSplice(op)
	case INVERT, INC, DEC, SIGN, NEGATE, ABS, NOT, NZ:
		err = vm.executeUnary(op)
	case AND, OR, XOR, ADD, SUB, MUL, DIV, MOD, SHL, SHR, BOOLAND, BOOLOR,
		NUMEQUAL, NUMNOTEQUAL, LT, GT, LTE, GTE, MIN, MAX:
		err = vm.executeBinary(op)
	case EQUAL:
		var x1, x2 StackItem
		if x2, err = vm.pop(); err != nil {
			return err
		}
		if x1, err = vm.pop(); err != nil {
			return err
		}
		vm.push(Boolean(x1.Equals(x2)))
	case WITHIN:
		var a, b, x *big.Int
		if b, err = vm.popInt(); err != nil {
			return err
		}
		if a, err = vm.popInt(); err != nil {
			return err
		}
		if x, err = vm.popInt(); err != nil {
			return err
		}
		vm.push(Boolean(a.Cmp(x) <= 0 && x.Cmp(b) < 0))
	case SHA1, SHA256, HASH160, HASH256:
		err = vm.executeHash(op)
	case ARRAYSIZE, PACK, UNPACK, PICKITEM, SETITEM, NEWARRAY, NEWSTRUCT,
		NEWMAP, APPEND, REVERSE, REMOVE, HASKEY, KEYS, VALUES:
		err = vm.executeCollection(op)
	case THROW:
		return ErrFault.NewError("THROW")
	case THROWIFNOT:
		ok, err := vm.popBool()
		if err != nil {
			return err
		}
		if !ok {
			return ErrFault.NewError("THROWIFNOT")
		}
	default:
		return ErrInvalidOpcode.NewError(OpcodeName(op))
	}
	if err != nil {
		return err
	}
	vm.ip = next
	return nil
}

func (vm *VM) pick(n int) error {
	item, err := vm.estack.Peek(n)
	if err != nil {
		return err
	}
	vm.push(item)
	return nil
}

func (vm *VM) roll(n int) error {
	if n == 0 {
		return nil
	}
	item, err := vm.estack.Remove(n)
	if err != nil {
		return err
	}
	vm.push(item)
	return nil
}

func (vm *VM) executeIndexed(op Opcode) error {
	n, err := vm.popIndex()
	if err != nil {
		return err
	}
	switch op {
	case XDROP:
		_, err = vm.estack.Remove(n)
	case XSWAP:
		if n == 0 {
			return nil
		}
		var top, other StackItem
		if top, err = vm.estack.Peek(0); err != nil {
			return err
		}
		if other, err = vm.estack.Peek(n); err != nil {
			return err
		}
		_ = vm.estack.Set(0, other)
		err = vm.estack.Set(n, top)
	case XTUCK:
		if n == 0 {
			return ErrIndexOutOfBounds.NewError("XTUCK 0")
		}
		var top StackItem
		if top, err = vm.estack.Peek(0); err != nil {
			return err
		}
		err = vm.estack.Insert(n, top)
	case PICK:
		err = vm.pick(n)
	case ROLL:
		err = vm.roll(n)
	}
	return err
}

func (vm *VM) executeSplice(op Opcode) error {
	switch op {
	case CAT:
		x2, err := vm.popBytes()
		if err != nil {
			return err
		}
		x1, err := vm.popBytes()
		if err != nil {
			return err
		}
		out := make([]byte, 0, len(x1)+len(x2))
		vm.push(ByteArray(append(append(out, x1...), x2...)))
	case SUBSTR:
		count, err := vm.popIndex()
		if err != nil {
			return err
		}
		index, err := vm.popIndex()
		if err != nil {
			return err
		}
		x, err := vm.popBytes()
		if err != nil {
			return err
		}
		if index > len(x) {
			index = len(x)
		}
		if index+count > len(x) {
			count = len(x) - index
		}
		vm.push(ByteArray(append([]byte(nil), x[index:index+count]...)))
	case LEFT:
		count, err := vm.popIndex()
		if err != nil {
			return err
		}
		x, err := vm.popBytes()
		if err != nil {
			return err
		}
		if count > len(x) {
			count = len(x)
		}
		vm.push(ByteArray(append([]byte(nil), x[:count]...)))
	case RIGHT:
		count, err := vm.popIndex()
		if err != nil {
			return err
		}
		x, err := vm.popBytes()
		if err != nil {
			return err
		}
		if count > len(x) {
			return ErrIndexOutOfBounds.NewError("RIGHT")
		}
		vm.push(ByteArray(append([]byte(nil), x[len(x)-count:]...)))
	case SIZE:
		x, err := vm.popBytes()
		if err != nil {
			return err
		}
		vm.push(NewInteger(int64(len(x))))
	}
	return nil
}

func (vm *VM) executeUnary(op Opcode) error {
	if op == NOT {
		x, err := vm.popBool()
		if err != nil {
			return err
		}
		vm.push(Boolean(!x))
		return nil
	}
	x, err := vm.popInt()
	if err != nil {
		return err
	}
	r := new(big.Int)
	switch op {
	case INVERT:
		r.Not(x)
	case INC:
		r.Add(x, big.NewInt(1))
	case DEC:
		r.Sub(x, big.NewInt(1))
	case SIGN:
		r.SetInt64(int64(x.Sign()))
	case NEGATE:
		r.Neg(x)
	case ABS:
		r.Abs(x)
	case NZ:
		vm.push(Boolean(x.Sign() != 0))
		return nil
	}
	vm.push(&Integer{Value: r})
	return nil
}

func (vm *VM) executeBinary(op Opcode) error {
	if op == BOOLAND || op == BOOLOR {
		x2, err := vm.popBool()
		if err != nil {
			return err
		}
		x1, err := vm.popBool()
		if err != nil {
			return err
		}
		if op == BOOLAND {
			vm.push(Boolean(x1 && x2))
		} else {
			vm.push(Boolean(x1 || x2))
		}
		return nil
	}
	x2, err := vm.popInt()
	if err != nil {
		return err
	}
	if op == SHL || op == SHR {
		shift := int(x2.Int64())
		if !x2.IsInt64() || shift < 0 || shift > 256 {
			return ErrIndexOutOfBounds.NewError("shift", x2.String())
		}
		if shift == 0 {
			return nil
		}
		x, err := vm.popInt()
		if err != nil {
			return err
		}
		r := new(big.Int)
		if op == SHL {
			r.Lsh(x, uint(shift))
		} else {
			r.Rsh(x, uint(shift))
		}
		vm.push(&Integer{Value: r})
		return nil
	}
	x1, err := vm.popInt()
	if err != nil {
		return err
	}
	r := new(big.Int)
	switch op {
	case AND:
		r.And(x1, x2)
	case OR:
		r.Or(x1, x2)
	case XOR:
		r.Xor(x1, x2)
	case ADD:
		r.Add(x1, x2)
	case SUB:
		r.Sub(x1, x2)
	case MUL:
		r.Mul(x1, x2)
	case DIV, MOD:
		if x2.Sign() == 0 {
			return ErrZeroDivision
		}
		if op == DIV {
			r.Quo(x1, x2)
		} else {
			r.Rem(x1, x2)
		}
	case MIN:
		r.Set(x1)
		if x2.Cmp(x1) < 0 {
			r.Set(x2)
		}
	case MAX:
		r.Set(x1)
		if x2.Cmp(x1) > 0 {
			r.Set(x2)
		}
	default:
		c := x1.Cmp(x2)
		var b bool
		switch op {
		case NUMEQUAL:
			b = c == 0
		case NUMNOTEQUAL:
			b = c != 0
		case LT:
			b = c < 0
		case GT:
			b = c > 0
		case LTE:
			b = c <= 0
		case GTE:
			b = c >= 0
		}
		vm.push(Boolean(b))
		return nil
	}
	vm.push(&Integer{Value: r})
	return nil
}

func (vm *VM) executeHash(op Opcode) error {
	x, err := vm.popBytes()
	if err != nil {
		return err
	}
	var out []byte
	switch op {
	case SHA1:
		h := sha1.Sum(x)
		out = h[:]
	case SHA256:
		h := sha256.Sum256(x)
		out = h[:]
	case HASH160:
		h := sha256.Sum256(x)
		r := ripemd160.New()
		_, _ = r.Write(h[:])
		out = r.Sum(nil)
	case HASH256:
		h := sha256.Sum256(x)
		h = sha256.Sum256(h[:])
		out = h[:]
	}
	vm.push(ByteArray(out))
	return nil
}

func (vm *VM) executeCollection(op Opcode) error {
	switch op {
	case ARRAYSIZE:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		switch v := item.(type) {
		case *Array:
			vm.push(NewInteger(int64(len(v.Items))))
		case *Map:
			vm.push(NewInteger(int64(v.Len())))
		default:
			b, err := item.Bytes()
			if err != nil {
				return err
			}
			vm.push(NewInteger(int64(len(b))))
		}
	case PACK:
		n, err := vm.popIndex()
		if err != nil {
			return err
		}
		if n > vm.estack.Len() {
			return ErrStackUnderflow.NewError("PACK")
		}
		items := make([]StackItem, n)
		for i := range items {
			items[i], _ = vm.pop()
		}
		vm.push(NewArray(items...))
	case UNPACK:
		arr, err := vm.popArray()
		if err != nil {
			return err
		}
		for i := len(arr.Items) - 1; i >= 0; i-- {
			vm.push(arr.Items[i])
		}
		vm.push(NewInteger(int64(len(arr.Items))))
	case PICKITEM:
		key, err := vm.pop()
		if err != nil {
			return err
		}
		container, err := vm.pop()
		if err != nil {
			return err
		}
		item, err := pickItem(container, key)
		if err != nil {
			return err
		}
		vm.push(item)
	case SETITEM:
		value, err := vm.pop()
		if err != nil {
			return err
		}
		if s, ok := value.(*Array); ok {
			value = s.Clone()
		}
		key, err := vm.pop()
		if err != nil {
			return err
		}
		container, err := vm.pop()
		if err != nil {
			return err
		}
		return setItem(container, key, value)
	case NEWARRAY, NEWSTRUCT:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		if arr, ok := item.(*Array); ok {
			vm.push(&Array{Items: append([]StackItem(nil), arr.Items...), Struct: op == NEWSTRUCT})
			return nil
		}
		vm.push(item)
		n, err := vm.popIndex()
		if err != nil {
			return err
		}
		items := make([]StackItem, n)
		for i := range items {
			items[i] = Boolean(false)
		}
		vm.push(&Array{Items: items, Struct: op == NEWSTRUCT})
	case NEWMAP:
		vm.push(NewMap())
	case APPEND:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		if s, ok := item.(*Array); ok {
			item = s.Clone()
		}
		arr, err := vm.popArray()
		if err != nil {
			return err
		}
		arr.Items = append(arr.Items, item)
	case REVERSE:
		arr, err := vm.popArray()
		if err != nil {
			return err
		}
		for i, j := 0, len(arr.Items)-1; i < j; i, j = i+1, j-1 {
			arr.Items[i], arr.Items[j] = arr.Items[j], arr.Items[i]
		}
	case REMOVE:
		key, err := vm.pop()
		if err != nil {
			return err
		}
		container, err := vm.pop()
		if err != nil {
			return err
		}
		switch c := container.(type) {
		case *Array:
			i, err := arrayIndex(c, key)
			if err != nil {
				return err
			}
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		case *Map:
			return c.Delete(key)
		default:
			return ErrType.NewError("REMOVE on", container.TypeName())
		}
	case HASKEY:
		key, err := vm.pop()
		if err != nil {
			return err
		}
		container, err := vm.pop()
		if err != nil {
			return err
		}
		switch c := container.(type) {
		case *Array:
			i, err := key.BigInt()
			if err != nil {
				return err
			}
			if i.Sign() < 0 {
				return ErrIndexOutOfBounds.NewError(i.String())
			}
			vm.push(Boolean(i.Cmp(big.NewInt(int64(len(c.Items)))) < 0))
		case *Map:
			_, ok, err := c.Get(key)
			if err != nil {
				return err
			}
			vm.push(Boolean(ok))
		default:
			return ErrType.NewError("HASKEY on", container.TypeName())
		}
	case KEYS:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		m, ok := item.(*Map)
		if !ok {
			return ErrType.NewError("KEYS on", item.TypeName())
		}
		vm.push(NewArray(m.Keys()...))
	case VALUES:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		switch c := item.(type) {
		case *Array:
			vm.push(NewArray(append([]StackItem(nil), c.Items...)...))
		case *Map:
			vm.push(NewArray(c.Values()...))
		default:
			return ErrType.NewError("VALUES on", item.TypeName())
		}
	}
	return nil
}

func arrayIndex(arr *Array, key StackItem) (int, error) {
	i, err := key.BigInt()
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() || i.Int64() < 0 || i.Int64() >= int64(len(arr.Items)) {
		return 0, ErrIndexOutOfBounds.NewError(i.String())
	}
	return int(i.Int64()), nil
}

func pickItem(container, key StackItem) (StackItem, error) {
	switch c := container.(type) {
	case *Array:
		i, err := arrayIndex(c, key)
		if err != nil {
			return nil, err
		}
		return c.Items[i], nil
	case *Map:
		v, ok, err := c.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrKeyNotFound.NewError(key.String())
		}
		return v, nil
	}
	return nil, ErrType.NewError("PICKITEM on", container.TypeName())
}

func setItem(container, key, value StackItem) error {
	switch c := container.(type) {
	case *Array:
		i, err := arrayIndex(c, key)
		if err != nil {
			return err
		}
		c.Items[i] = value
		return nil
	case *Map:
		return c.Set(key, value)
	}
	return ErrType.NewError("SETITEM on", container.TypeName())
}
