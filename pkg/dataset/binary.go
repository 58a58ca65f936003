package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/behrlich/postflop-solver/pkg/strategy"
)

// binaryMagic prefixes every binary snapshot
var binaryMagic = []byte("PFS2")

// Snapshot field numbers. A snapshot is the magic followed by a protobuf
// message: meta (JSON bytes) and repeated state entries.
const (
	fieldMeta  protowire.Number = 1
	fieldState protowire.Number = 2

	fieldStateKey   protowire.Number = 1
	fieldStateFold  protowire.Number = 2
	fieldStateCall  protowire.Number = 3
	fieldStateRaise protowire.Number = 4
)

// IsBinary reports whether data starts with the snapshot magic
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, binaryMagic)
}

// MarshalBinary encodes the table as a compact snapshot with states in key order
func (t *Table) MarshalBinary() ([]byte, error) {
	meta, err := json.Marshal(t.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}

	out := append([]byte(nil), binaryMagic...)
	out = protowire.AppendTag(out, fieldMeta, protowire.BytesType)
	out = protowire.AppendBytes(out, meta)

	var entry []byte
	for _, key := range t.Keys() {
		mix := t.States[key].MixBP
		entry = entry[:0]
		entry = protowire.AppendTag(entry, fieldStateKey, protowire.BytesType)
		entry = protowire.AppendString(entry, key)
		entry = appendUint(entry, fieldStateFold, mix[strategy.Fold])
		entry = appendUint(entry, fieldStateCall, mix[strategy.CallOrCheck])
		entry = appendUint(entry, fieldStateRaise, mix[strategy.Raise])

		out = protowire.AppendTag(out, fieldState, protowire.BytesType)
		out = protowire.AppendBytes(out, entry)
	}
	return out, nil
}

func appendUint(b []byte, num protowire.Number, v int) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// UnmarshalBinary decodes and validates a snapshot. Unknown fields are skipped.
func (t *Table) UnmarshalBinary(data []byte) error {
	if !IsBinary(data) {
		return errors.New("not a strategy table snapshot")
	}
	b := data[len(binaryMagic):]

	decoded := Table{States: make(map[string]State)}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("snapshot tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldMeta && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("snapshot meta: %w", protowire.ParseError(n))
			}
			if err := json.Unmarshal(v, &decoded.Meta); err != nil {
				return fmt.Errorf("snapshot meta: %w", err)
			}
			b = b[n:]
		case num == fieldState && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("snapshot state: %w", protowire.ParseError(n))
			}
			key, mix, err := decodeState(v)
			if err != nil {
				return err
			}
			decoded.States[key] = State{MixBP: mix}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("snapshot field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if err := decoded.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	*t = decoded
	return nil
}

func decodeState(b []byte) (string, strategy.Mix, error) {
	var key string
	var mix strategy.Mix
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", mix, fmt.Errorf("state tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldStateKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", mix, fmt.Errorf("state key: %w", protowire.ParseError(n))
			}
			key = v
			b = b[n:]
		case num >= fieldStateFold && num <= fieldStateRaise && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return "", mix, fmt.Errorf("state mix: %w", protowire.ParseError(n))
			}
			mix[num-fieldStateFold] = int(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", mix, fmt.Errorf("state field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if key == "" {
		return "", mix, errors.New("state entry without key")
	}
	return key, mix, nil
}

// SaveBinary writes the table as a binary snapshot
func (t *Table) SaveBinary(filename string) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
