package bytecode

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"joy/pkg/value"
)

// FormatVersion is written into every encoded program.
const FormatVersion = 1

var (
	ErrUnsupportedKind = errors.New("value kind can't be encoded")
	ErrVersion         = errors.New("unsupported format version")
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireValue struct {
	_    struct{} `cbor:",toarray"`
	Kind uint8
	Bool bool
	Int  int32
	Real float32
	Text string
}

type wireProgram struct {
	Version int         `cbor:"1,keyasint"`
	Code    []wireValue `cbor:"2,keyasint"`
}

// Marshal encodes a program as CBOR. Only Nil, Bool, Int, Float, String,
// Label, Address, AddressRef and OpCode values can be encoded.
func Marshal(p Program) ([]byte, error) {
	w := wireProgram{Version: FormatVersion, Code: make([]wireValue, len(p))}

	for i, v := range p {
		wv := wireValue{Kind: uint8(v.Kind())}

		switch v.Kind() {
		case value.KindNil:
		case value.KindBool:
			wv.Bool = v.AsBool()
		case value.KindInt:
			wv.Int = v.AsInt()
		case value.KindFloat:
			wv.Real = v.AsFloat()
		case value.KindString, value.KindLabel, value.KindAddress, value.KindAddressRef:
			wv.Text = v.AsString()
		case value.KindOpCode:
			wv.Int = int32(v.OpCode())
		default:
			return nil, fmt.Errorf("bytecode: value %d is %s: %w", i, v.Kind(), ErrUnsupportedKind)
		}

		w.Code[i] = wv
	}

	return cborEncMode.Marshal(w)
}

// Unmarshal decodes a program written by Marshal.
func Unmarshal(data []byte) (Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}

	if w.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: version %d: %w", w.Version, ErrVersion)
	}

	p := make(Program, len(w.Code))
	for i, wv := range w.Code {
		switch value.Kind(wv.Kind) {
		case value.KindNil:
			p[i] = value.Nil
		case value.KindBool:
			p[i] = value.Bool(wv.Bool)
		case value.KindInt:
			p[i] = value.Int(wv.Int)
		case value.KindFloat:
			p[i] = value.Float(wv.Real)
		case value.KindString:
			p[i] = value.String(wv.Text)
		case value.KindLabel:
			p[i] = value.Label(wv.Text)
		case value.KindAddress:
			p[i] = value.Address(wv.Text)
		case value.KindAddressRef:
			p[i] = value.AddressRef(wv.Text)
		case value.KindOpCode:
			if wv.Int < 0 || wv.Int > 0xFF {
				return nil, fmt.Errorf("bytecode: value %d: opcode %d out of range", i, wv.Int)
			}
			p[i] = value.Op(value.OpCode(wv.Int))
		default:
			return nil, fmt.Errorf("bytecode: value %d is %s: %w", i, value.Kind(wv.Kind), ErrUnsupportedKind)
		}
	}

	return p, nil
}
