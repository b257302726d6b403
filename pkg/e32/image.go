package e32

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"

	"github.com/apex/log"
	"github.com/bentokun/elf2e32/pkg/elfview"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ImageParams carries the dispatcher's choices into the image writer.
type ImageParams struct {
	IsDLL bool
	UID1  uint32
	UID2  uint32
	UID3  uint32
}

// Image is one translated E32 file ready to be serialized: header, export
// directory, code and data payloads.
type Image struct {
	Header ImageHeader
	Desc   *ExportDescription
	Table  *ExportTable
	Code   []byte
	Data   []byte
}

// Generate assembles the image from the reconciled view. The export
// directory is appended to the code section, the way the native linker
// would have placed it.
func Generate(view *elfview.View, tbl *ExportTable, desc *ExportDescription, params ImageParams) *Image {
	img := &Image{Desc: desc, Table: tbl, Code: view.Code(), Data: view.Data()}

	hdrSize := headerSize(desc)
	codeOff := uint32(hdrSize)
	tblBytes := 0
	if tbl.NumExports() > 0 {
		tblBytes = tbl.Size()
	}

	uid1 := params.UID1
	if uid1 == 0 {
		if params.IsDLL {
			uid1 = UIDDynamicLib
		} else {
			uid1 = UIDExecutable
		}
	}

	h := &img.Header
	h.UID1 = uid1
	h.UID2 = params.UID2
	h.UID3 = params.UID3
	h.UIDChecksum = uidChecksum(h.UID1, h.UID2, h.UID3)
	h.Signature = signature
	h.Compression = FormatNotCompressed
	h.ModuleVersion = 1 << 16
	h.Flags = flagFixedAddr
	if params.IsDLL {
		h.Flags |= flagDLL
	}
	h.CodeSize = uint32(len(img.Code) + tblBytes)
	h.DataSize = uint32(len(img.Data))
	h.HeapSizeMin = defaultHeapMin
	h.HeapSizeMax = defaultHeapMax
	h.StackSize = defaultStackSize
	h.EntryPoint = view.EntryPointOffset()
	h.CodeBase = view.ROBase()
	h.DataBase = view.RWBase()
	h.ExportDirCount = uint32(tbl.NumExports())
	if tbl.NumExports() > 0 {
		// the directory proper starts after the reserved header word
		h.ExportDirOff = codeOff + uint32(len(img.Code)) + 4
	}
	h.TextSize = uint32(len(img.Code))
	h.CodeOffset = codeOff
	h.DataOffset = codeOff + h.CodeSize
	h.ProcessPrio = defaultPriority
	h.CPUIdentifier = cpuArmV5
	h.UncompressedSz = h.DataOffset + h.DataSize
	h.ExportDescSize = desc.Size()
	h.ExportDescType = desc.Type
	if len(desc.Data) > 0 {
		h.ExportDesc[0] = desc.Data[0]
	}

	return img
}

// headerSize is the fixed header plus the padded export descriptor region.
func headerSize(desc *ExportDescription) int {
	return binary.Size(ImageHeader{}) + int(desc.ExtraSpace())
}

// Bytes serializes the image.
func (img *Image) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	hdr := img.Header
	hdr.HeaderCRC = 0
	var hdrBuf bytes.Buffer
	if err := binary.Write(&hdrBuf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	pad := make([]byte, int(img.Desc.ExtraSpace()))
	copy(pad, descTail(img.Desc))
	hdrBuf.Write(pad)

	hdr.HeaderCRC = crc32.ChecksumIEEE(hdrBuf.Bytes())
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	buf.Write(pad)

	buf.Write(img.Code)
	if img.Table.NumExports() > 0 {
		buf.Write(img.Table.Bytes())
	}
	buf.Write(img.Data)

	return buf.Bytes(), nil
}

// descTail is the descriptor payload past the first byte: the first byte
// lives in the header's ExportDesc slot, the rest spills into the padded
// region after it.
func descTail(desc *ExportDescription) []byte {
	if len(desc.Data) <= 1 {
		return nil
	}
	return desc.Data[1:]
}

// WriteFile serializes the image to path.
func (img *Image) WriteFile(path string) error {
	data, err := img.Bytes()
	if err != nil {
		return errors.Wrap(err, "failed to serialize E32 image")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write E32 image %s", path)
	}
	log.Debugf("wrote E32 image %s (%s)", path, humanize.Bytes(uint64(len(data))))
	return nil
}
