package pgruntime

import "unsafe"

// Compile-time limits baked into the host's binary interface.
const (
	// ProtocolVersion is the host protocol this build targets.
	ProtocolVersion = 110000

	// FuncMaxArgs is the maximum number of function arguments.
	FuncMaxArgs = 100

	// IndexMaxKeys is the maximum number of index key columns.
	IndexMaxKeys = 32

	// NameDataLen is the maximum identifier length, including the
	// terminating NUL.
	NameDataLen = 64
)

// MagicBlock is the fixed-layout descriptor the host reads at plugin load
// time. Field order and widths are bit-exact; the host rejects the plugin
// when any field disagrees with its compiled expectation.
type MagicBlock struct {
	Len          int32
	Version      int32
	FuncMaxArgs  int32
	IndexMaxKeys int32
	NameDataLen  int32
	Float4ByVal  int32
	Float8ByVal  int32
}

// Magic builds the descriptor for this build. Version is the protocol
// version divided by 100, so all point releases of one major version match.
func Magic() MagicBlock {
	return MagicBlock{
		Len:          int32(unsafe.Sizeof(MagicBlock{})),
		Version:      ProtocolVersion / 100,
		FuncMaxArgs:  FuncMaxArgs,
		IndexMaxKeys: IndexMaxKeys,
		NameDataLen:  NameDataLen,
		Float4ByVal:  1,
		Float8ByVal:  1,
	}
}
