// Package anvil reads and writes chunk columns stored in .mca region files.
package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	sectorSize    = 4096
	headerSectors = 2 // location table + timestamp table
	regionWidth   = 32

	compressionGzip = 1
	compressionZlib = 2
	compressionNone = 3

	// externalFlag marks a chunk stored in a separate .mcc file.
	externalFlag = 0x80
)

// Pos is the absolute position of a chunk column.
type Pos struct {
	X, Z int
}

// Region returns the coordinates of the region file holding p.
func (p Pos) Region() (rx, rz int) {
	return p.X >> 5, p.Z >> 5
}

func (p Pos) index() int {
	return (p.X & 31) + (p.Z&31)*regionWidth
}

// RegionName returns the file name of a region, e.g. "r.-1.0.mca".
func RegionName(rx, rz int) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

// ParseRegionName extracts the region coordinates from a file name.
func ParseRegionName(name string) (rx, rz int, err error) {
	var ext string
	if _, err := fmt.Sscanf(filepath.Base(name), "r.%d.%d.%s", &rx, &rz, &ext); err != nil || ext != "mca" {
		return 0, 0, fmt.Errorf("not a region file name: %q", name)
	}
	return rx, rz, nil
}

// ReadRegion returns the uncompressed NBT data of every chunk in a region
// file, keyed by absolute chunk position.
func ReadRegion(path string) (map[Pos][]byte, error) {
	rx, rz, err := ParseRegionName(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region file: %w", err)
	}
	if len(data) == 0 {
		return map[Pos][]byte{}, nil
	}
	if len(data) < headerSectors*sectorSize {
		return nil, fmt.Errorf("region %s: truncated header (%d bytes)", filepath.Base(path), len(data))
	}

	chunks := make(map[Pos][]byte)
	for i := 0; i < regionWidth*regionWidth; i++ {
		entry := binary.BigEndian.Uint32(data[i*4:])
		if entry == 0 {
			continue
		}
		pos := Pos{X: rx*regionWidth + i%regionWidth, Z: rz*regionWidth + i/regionWidth}

		nbtData, err := readChunk(data, entry)
		if err != nil {
			return nil, fmt.Errorf("region %s: chunk (%d,%d): %w", filepath.Base(path), pos.X, pos.Z, err)
		}
		chunks[pos] = nbtData
	}
	return chunks, nil
}

func readChunk(data []byte, entry uint32) ([]byte, error) {
	offset := int(entry>>8) * sectorSize
	sectors := int(entry & 0xFF)
	if offset < headerSectors*sectorSize || offset+5 > len(data) {
		return nil, fmt.Errorf("sector offset %d out of range", entry>>8)
	}

	payloadLen := int(binary.BigEndian.Uint32(data[offset:]))
	if payloadLen < 1 || payloadLen+4 > sectors*sectorSize || offset+4+payloadLen > len(data) {
		return nil, fmt.Errorf("bad payload length %d", payloadLen)
	}
	compression := data[offset+4]
	payload := data[offset+5 : offset+4+payloadLen]

	if compression&externalFlag != 0 {
		return nil, fmt.Errorf("external chunk storage is not supported")
	}

	var r io.Reader
	switch compression {
	case compressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case compressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create zlib reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case compressionNone:
		return append([]byte(nil), payload...), nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", compression)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// WriteRegion writes all provided chunks to a .mca region file in dir.
// chunks maps chunk positions to their uncompressed NBT data; every position
// must lie inside region (rx, rz).
func WriteRegion(dir string, rx, rz int, chunks map[Pos][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	type chunkEntry struct {
		index      int
		compressed []byte
	}
	entries := make([]chunkEntry, 0, len(chunks))

	for pos, nbtData := range chunks {
		if x, z := pos.Region(); x != rx || z != rz {
			return fmt.Errorf("chunk (%d,%d) is outside region (%d,%d)", pos.X, pos.Z, rx, rz)
		}

		var cbuf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&cbuf, zlib.DefaultCompression)
		if err != nil {
			return fmt.Errorf("create zlib writer: %w", err)
		}
		if _, err := zw.Write(nbtData); err != nil {
			return fmt.Errorf("compress chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zlib writer: %w", err)
		}
		entries = append(entries, chunkEntry{index: pos.index(), compressed: cbuf.Bytes()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	// Each chunk: 4 bytes length, 1 byte compression type, compressed data,
	// padded to a sector boundary.
	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for _, e := range entries {
		payloadLen := uint32(len(e.compressed)) + 1
		totalLen := 4 + payloadLen
		sectorCount := (totalLen + sectorSize - 1) / sectorSize
		if sectorCount > 0xFF {
			return fmt.Errorf("chunk %d needs %d sectors, at most 255 fit", e.index, sectorCount)
		}

		off := e.index * 4
		binary.BigEndian.PutUint32(locations[off:off+4], currentSector<<8|sectorCount)
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = compressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(e.compressed)
		if pad := int(sectorCount)*sectorSize - int(totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}

		currentSector += sectorCount
	}

	path := filepath.Join(dir, RegionName(rx, rz))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	if _, err := f.Write(locations); err != nil {
		return fmt.Errorf("write locations: %w", err)
	}
	if _, err := f.Write(timestamps); err != nil {
		return fmt.Errorf("write timestamps: %w", err)
	}
	if _, err := f.Write(dataBuf.Bytes()); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region file: %w", err)
	}
	return nil
}
