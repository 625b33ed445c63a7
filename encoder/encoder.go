// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package encoder serializes compiled scripts to a self describing artifact.
// An encoded artifact is a 4 byte signature and a 2 byte version followed
// by the canonical CBOR encoding of Artifact.
package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/Hiyho/neo-one/compiler"
	"github.com/Hiyho/neo-one/parser"
)

// Artifact signature and version are written to the header of encoded
// artifacts.
const (
	ArtifactSignature uint32 = 0x4E454F43
	ArtifactVersion   uint16 = 1
)

const headerSize = 6

// Errors returned while decoding.
var (
	ErrInvalidData       = errors.New("invalid data")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrUnsupported       = errors.New("unsupported version")
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("encoder: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Position is a resolved source position.
type Position struct {
	Line   int `cbor:"1,keyasint"`
	Column int `cbor:"2,keyasint,omitempty"`
}

// Mapping maps a bytecode offset to a source position.
type Mapping struct {
	Offset int      `cbor:"1,keyasint"`
	Pos    Position `cbor:"2,keyasint"`
}

// Diagnostic is the serialized form of compiler.Diagnostic.
type Diagnostic struct {
	Code     string   `cbor:"1,keyasint"`
	Warning  bool     `cbor:"2,keyasint,omitempty"`
	Message  string   `cbor:"3,keyasint"`
	Pos      Position `cbor:"4,keyasint"`
	Filename string   `cbor:"5,keyasint,omitempty"`
}

// Artifact is a compiled script with the data needed to relate it back to
// its source.
type Artifact struct {
	BuildID     uuid.UUID    `cbor:"1,keyasint"`
	Created     time.Time    `cbor:"2,keyasint"`
	Source      string       `cbor:"3,keyasint"`
	Bytecode    []byte       `cbor:"4,keyasint"`
	SourceMap   []Mapping    `cbor:"5,keyasint,omitempty"`
	Diagnostics []Diagnostic `cbor:"6,keyasint,omitempty"`
}

// NewArtifact returns an artifact of res compiled from the file named
// source. Positions are resolved with fileSet which may be nil.
func NewArtifact(source string, res *compiler.Result, fileSet *parser.SourceFileSet) *Artifact {
	a := &Artifact{
		BuildID:  uuid.New(),
		Created:  time.Now().UTC().Truncate(time.Second),
		Source:   source,
		Bytecode: res.Bytecode,
	}
	resolve := func(p parser.SourceFilePos) Position {
		return Position{Line: p.Line, Column: p.Column}
	}
	if fileSet != nil {
		a.SourceMap = make([]Mapping, 0, len(res.SourceMap))
		for _, m := range res.SourceMap {
			a.SourceMap = append(a.SourceMap, Mapping{
				Offset: m.Offset,
				Pos:    resolve(fileSet.Position(m.Pos)),
			})
		}
	}
	for _, d := range res.Diagnostics {
		a.Diagnostics = append(a.Diagnostics, Diagnostic{
			Code:     string(d.Code),
			Warning:  d.Severity == compiler.SeverityWarning,
			Message:  d.Message,
			Pos:      resolve(d.FilePos),
			Filename: d.FilePos.Filename,
		})
	}
	return a
}

// Lookup returns the source position of the instruction at offset.
func (a *Artifact) Lookup(offset int) (Position, bool) {
	var (
		found Position
		ok    bool
	)
	for _, m := range a.SourceMap {
		if m.Offset > offset {
			break
		}
		found, ok = m.Pos, true
	}
	return found, ok
}

// artifact has the fields of Artifact without its binary marshaling
// methods, which cbor would call back into.
type artifact Artifact

// MarshalBinary implements encoding.BinaryMarshaler.
func (a *Artifact) MarshalBinary() ([]byte, error) {
	body, err := encMode.Marshal((*artifact)(a))
	if err != nil {
		return nil, fmt.Errorf("encoder: marshal artifact: %w", err)
	}
	data := make([]byte, headerSize, headerSize+len(body))
	binary.BigEndian.PutUint32(data[0:4], ArtifactSignature)
	binary.BigEndian.PutUint16(data[4:6], ArtifactVersion)
	return append(data, body...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Artifact) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return ErrInvalidData
	}
	if sig := binary.BigEndian.Uint32(data[0:4]); sig != ArtifactSignature {
		return ErrSignatureMismatch
	}
	switch version := binary.BigEndian.Uint16(data[4:6]); version {
	case ArtifactVersion:
		var out Artifact
		if err := cbor.Unmarshal(data[headerSize:], (*artifact)(&out)); err != nil {
			return fmt.Errorf("encoder: unmarshal artifact: %w", err)
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, strconv.Itoa(int(version)))
	}
}

// Encode writes encoded data of the artifact to w.
func (a *Artifact) Encode(w io.Writer) error {
	data, err := a.MarshalBinary()
	if err != nil {
		return err
	}
	n, err := w.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return errors.New("short write")
	}
	return nil
}

// Decode reads an artifact from r.
func Decode(r io.Reader) (*Artifact, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	var a Artifact
	if err := a.UnmarshalBinary(buf.Bytes()); err != nil {
		return nil, err
	}
	return &a, nil
}
