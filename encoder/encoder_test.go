// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hiyho/neo-one/compiler"
	. "github.com/Hiyho/neo-one/encoder"
	"github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/vm"
)

func compileArtifact(t *testing.T, src string) *Artifact {
	t.Helper()
	fileSet := parser.NewFileSet()
	res, err := compiler.CompileSource(fileSet, "main.ts", []byte(src),
		compiler.Options{ResultValue: true})
	require.NoError(t, err)
	return NewArtifact("main.ts", res, fileSet)
}

func TestArtifactRoundTrip(t *testing.T) {
	a := compileArtifact(t, "const x = 2;\nx * 21 as Foo")
	require.NotEmpty(t, a.SourceMap)
	require.Len(t, a.Diagnostics, 1)
	require.True(t, a.Diagnostics[0].Warning)
	require.Equal(t, "UNKNOWN_TYPE", a.Diagnostics[0].Code)
	require.Equal(t, 2, a.Diagnostics[0].Pos.Line)

	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf))
	data := buf.Bytes()
	require.Equal(t, ArtifactSignature, binary.BigEndian.Uint32(data[0:4]))
	require.Equal(t, ArtifactVersion, binary.BigEndian.Uint16(data[4:6]))

	got, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, a.BuildID, got.BuildID)
	require.True(t, a.Created.Equal(got.Created))
	require.Equal(t, a.Source, got.Source)
	require.Equal(t, a.Bytecode, got.Bytecode)
	require.Equal(t, a.SourceMap, got.SourceMap)
	require.Equal(t, a.Diagnostics, got.Diagnostics)

	v := vm.NewVM(got.Bytecode)
	require.NoError(t, v.Run())
	value, err := compiler.Inspect(v.Estack()[0])
	require.NoError(t, err)
	require.Equal(t, int64(42), value)
}

func TestArtifactCanonical(t *testing.T) {
	a := compileArtifact(t, `let a = [1, 2, 3]; a.length`)
	d1, err := a.MarshalBinary()
	require.NoError(t, err)
	d2, err := a.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	b := compileArtifact(t, `let a = [1, 2, 3]; a.length`)
	require.NotEqual(t, a.BuildID, b.BuildID)
	require.Equal(t, a.Bytecode, b.Bytecode)
}

func TestArtifactEncodeDecode(t *testing.T) {
	a := &Artifact{
		Source:    "a.ts",
		Bytecode:  []byte{vm.PUSH1},
		SourceMap: []Mapping{{Offset: 0, Pos: Position{Line: 1, Column: 1}}},
	}
	data, err := a.MarshalBinary()
	require.NoError(t, err)
	require.Greater(t, len(data), 6)

	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf))
	require.Equal(t, data, buf.Bytes())

	got, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, a.Source, got.Source)
	require.Equal(t, a.Bytecode, got.Bytecode)
	require.Equal(t, a.SourceMap, got.SourceMap)
	require.Empty(t, got.Diagnostics)

	var b Artifact
	require.NoError(t, b.UnmarshalBinary(data))
	require.Equal(t, got.Source, b.Source)
}

func TestArtifactLookup(t *testing.T) {
	a := compileArtifact(t, "let a = 1;\nlet b = 2;\na + b")
	var third *Mapping
	for i := range a.SourceMap {
		if a.SourceMap[i].Pos.Line == 3 {
			third = &a.SourceMap[i]
			break
		}
	}
	require.NotNil(t, third)
	pos, ok := a.Lookup(third.Offset)
	require.True(t, ok)
	require.Equal(t, third.Pos, pos)

	last := a.SourceMap[len(a.SourceMap)-1]
	pos, ok = a.Lookup(len(a.Bytecode) - 1)
	require.True(t, ok)
	require.Equal(t, last.Pos, pos)

	_, ok = (&Artifact{}).Lookup(0)
	require.False(t, ok)
}

func TestDecodeErrors(t *testing.T) {
	var a Artifact
	require.ErrorIs(t, a.UnmarshalBinary([]byte{1, 2}), ErrInvalidData)
	require.ErrorIs(t, a.UnmarshalBinary([]byte{0, 0, 0, 0, 0, 1}), ErrSignatureMismatch)

	header := make([]byte, 6)
	binary.BigEndian.PutUint32(header, ArtifactSignature)
	binary.BigEndian.PutUint16(header[4:], ArtifactVersion+1)
	err := a.UnmarshalBinary(header)
	require.True(t, errors.Is(err, ErrUnsupported))

	binary.BigEndian.PutUint16(header[4:], ArtifactVersion)
	_, err = Decode(bytes.NewReader(append(header, 0xFF, 0x00)))
	require.Error(t, err)
}
