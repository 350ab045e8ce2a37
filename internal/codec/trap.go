// Package codec implements the tagged little-endian encoding used by
// world saves. Every composite value is prefixed with a one-byte type
// tag so a misaligned decode fails at the tag instead of reading
// garbage.
package codec

// Trap is the type tag written before a composite value.
type Trap uint8

const (
	TrapString Trap = iota
	TrapHashMap
	TrapVec
	TrapOption
	TrapItem
	TrapBlock
	TrapChunk
	TrapWorld
	TrapTime

	// TrapUnknown is never written; it stands in for any tag byte the
	// format does not define.
	TrapUnknown Trap = 0xFF
)

func trapFrom(b byte) Trap {
	if b <= byte(TrapTime) {
		return Trap(b)
	}
	return TrapUnknown
}

func (t Trap) String() string {
	switch t {
	case TrapString:
		return "string"
	case TrapHashMap:
		return "hashmap"
	case TrapVec:
		return "vec"
	case TrapOption:
		return "option"
	case TrapItem:
		return "item"
	case TrapBlock:
		return "block"
	case TrapChunk:
		return "chunk"
	case TrapWorld:
		return "world"
	case TrapTime:
		return "time"
	default:
		return "unknown"
	}
}
