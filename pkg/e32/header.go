package e32

// E32 image constants. The header layout is fixed by the OS loader; all
// fields are little endian.
const (
	// UID1 discriminates the container type.
	UIDExecutable uint32 = 0x1000007a
	UIDDynamicLib uint32 = 0x10000079

	// no compression; compressed formats are produced by a later tool
	FormatNotCompressed uint32 = 0

	cpuArmV5 uint16 = 0x2000

	flagDLL       uint32 = 0x00000001
	flagFixedAddr uint32 = 0x00000004

	defaultHeapMin   uint32 = 0x1000
	defaultHeapMax   uint32 = 0x100000
	defaultStackSize uint32 = 0x2000

	defaultPriority uint16 = 350 // EPriorityForeground
)

// ImageHeader is the fixed part of the E32 header (basic + J + V layouts
// flattened). The variable-length export descriptor follows the struct in
// the file; ExportDescSize/Type describe it.
type ImageHeader struct {
	UID1           uint32
	UID2           uint32
	UID3           uint32
	UIDChecksum    uint32
	Signature      [4]byte // "EPOC"
	HeaderCRC      uint32
	ModuleVersion  uint32
	Compression    uint32
	ToolsVersion   uint32
	TimeLo         uint32
	TimeHi         uint32
	Flags          uint32
	CodeSize       uint32
	DataSize       uint32
	HeapSizeMin    uint32
	HeapSizeMax    uint32
	StackSize      uint32
	BssSize        uint32
	EntryPoint     uint32
	CodeBase       uint32
	DataBase       uint32
	DllRefTableCnt uint32
	ExportDirOff   uint32
	ExportDirCount uint32
	TextSize       uint32
	CodeOffset     uint32
	DataOffset     uint32
	ImportOffset   uint32
	CodeRelocOff   uint32
	DataRelocOff   uint32
	ProcessPrio    uint16
	CPUIdentifier  uint16
	UncompressedSz uint32
	SecureID       uint32
	VendorID       uint32
	Capability     [2]uint32
	ExceptionDesc  uint32
	Spare2         uint32
	ExportDescSize uint16
	ExportDescType uint8
	ExportDesc     [1]byte // first descriptor byte, rest spills past the header
}

var signature = [4]byte{'E', 'P', 'O', 'C'}

// uidChecksum is the UID triple check word: a CRC over the interleaved odd
// and even bytes of the three UIDs.
func uidChecksum(uid1, uid2, uid3 uint32) uint32 {
	var even, odd [6]byte
	uids := [3]uint32{uid1, uid2, uid3}
	for i, u := range uids {
		even[2*i] = byte(u)
		even[2*i+1] = byte(u >> 16)
		odd[2*i] = byte(u >> 8)
		odd[2*i+1] = byte(u >> 24)
	}
	return uint32(crc16(even[:]))<<16 | uint32(crc16(odd[:]))
}

// crc16 is the CCITT polynomial used by the UID check word.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
