package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"github.com/paulmach/osm"

	"network_analysis/pkg/geo"
)

const (
	magicBytes = "NETGRAPH"
	version    = uint32(1)
	maxNodes   = 20_000_000
	maxEdges   = 60_000_000
	maxString  = 1 << 10
)

// Header flags for optional columns.
const (
	flagProjected  = 1 << 0
	flagSpeed      = 1 << 1
	flagTravelTime = 1 << 2
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic      [8]byte
	Version    uint32
	NumNodes   uint32
	NumEdges   uint32
	NumClasses uint32
	Flags      uint32
}

// WriteBinary serializes a Graph to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O; the file is written to a
// temporary path and renamed into place.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	var flags uint32
	if g.IsProjected() {
		flags |= flagProjected
	}
	if g.EdgeSpeed != nil {
		flags |= flagSpeed
	}
	if g.EdgeTravelTime != nil {
		flags |= flagTravelTime
	}

	hdr := fileHeader{
		Version:    version,
		NumNodes:   g.NumNodes,
		NumEdges:   g.NumEdges,
		NumClasses: uint32(len(g.Classes)),
		Flags:      flags,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	firstOut := g.FirstOut
	if firstOut == nil {
		firstOut = []uint32{0}
	}

	type section struct {
		name  string
		write func() error
	}
	sections := []section{
		{"FirstOut", func() error { return writeSlice(w, firstOut) }},
		{"Head", func() error { return writeSlice(w, g.Head) }},
		{"NodeID", func() error { return writeSlice(w, g.NodeID) }},
		{"NodeLat", func() error { return writeSlice(w, g.NodeLat) }},
		{"NodeLon", func() error { return writeSlice(w, g.NodeLon) }},
		{"EdgeLength", func() error { return writeSlice(w, g.EdgeLength) }},
		{"EdgeMaxSpeed", func() error { return writeSlice(w, g.EdgeMaxSpeed) }},
		{"EdgeClass", func() error { return writeSlice(w, g.EdgeClass) }},
	}
	if flags&flagProjected != 0 {
		sections = append(sections,
			section{"NodeX", func() error { return writeSlice(w, g.NodeX) }},
			section{"NodeY", func() error { return writeSlice(w, g.NodeY) }},
		)
	}
	if flags&flagSpeed != 0 {
		sections = append(sections, section{"EdgeSpeed", func() error { return writeSlice(w, g.EdgeSpeed) }})
	}
	if flags&flagTravelTime != 0 {
		sections = append(sections, section{"EdgeTravelTime", func() error { return writeSlice(w, g.EdgeTravelTime) }})
	}
	for _, s := range sections {
		if err := s.write(); err != nil {
			return fmt.Errorf("write %s: %w", s.name, err)
		}
	}

	// Strings (length-prefixed).
	if err := writeString(w, g.CRS); err != nil {
		return fmt.Errorf("write CRS: %w", err)
	}
	for _, c := range g.Classes {
		if err := writeString(w, c); err != nil {
			return fmt.Errorf("write class %q: %w", c, err)
		}
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a Graph from a binary file.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}
	if hdr.NumClasses > 1<<16 {
		return nil, fmt.Errorf("NumClasses %d exceeds limit", hdr.NumClasses)
	}

	n := int(hdr.NumNodes)
	m := int(hdr.NumEdges)
	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}

	if g.FirstOut, err = readSlice[uint32](r, n+1); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	if g.Head, err = readSlice[uint32](r, m); err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	if g.NodeID, err = readSlice[osm.NodeID](r, n); err != nil {
		return nil, fmt.Errorf("read NodeID: %w", err)
	}
	if g.NodeLat, err = readSlice[float64](r, n); err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if g.NodeLon, err = readSlice[float64](r, n); err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	if g.EdgeLength, err = readSlice[float64](r, m); err != nil {
		return nil, fmt.Errorf("read EdgeLength: %w", err)
	}
	if g.EdgeMaxSpeed, err = readSlice[float64](r, m); err != nil {
		return nil, fmt.Errorf("read EdgeMaxSpeed: %w", err)
	}
	if g.EdgeClass, err = readSlice[uint16](r, m); err != nil {
		return nil, fmt.Errorf("read EdgeClass: %w", err)
	}

	g.NodeX, g.NodeY = g.NodeLon, g.NodeLat
	if hdr.Flags&flagProjected != 0 {
		if g.NodeX, err = readSlice[float64](r, n); err != nil {
			return nil, fmt.Errorf("read NodeX: %w", err)
		}
		if g.NodeY, err = readSlice[float64](r, n); err != nil {
			return nil, fmt.Errorf("read NodeY: %w", err)
		}
	}
	if hdr.Flags&flagSpeed != 0 {
		if g.EdgeSpeed, err = readSlice[float64](r, m); err != nil {
			return nil, fmt.Errorf("read EdgeSpeed: %w", err)
		}
	}
	if hdr.Flags&flagTravelTime != 0 {
		if g.EdgeTravelTime, err = readSlice[float64](r, m); err != nil {
			return nil, fmt.Errorf("read EdgeTravelTime: %w", err)
		}
	}

	if g.CRS, err = readString(r); err != nil {
		return nil, fmt.Errorf("read CRS: %w", err)
	}
	if g.CRS == "" {
		g.CRS = geo.WGS84
	}
	g.Classes = make([]string, hdr.NumClasses)
	for i := range g.Classes {
		if g.Classes[i], err = readString(r); err != nil {
			return nil, fmt.Errorf("read class %d: %w", i, err)
		}
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("CSR invalid: %w", err)
	}
	for i, c := range g.EdgeClass {
		if uint32(c) >= hdr.NumClasses {
			return nil, fmt.Errorf("EdgeClass[%d]=%d >= NumClasses=%d", i, c, hdr.NumClasses)
		}
	}

	return g, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("FirstOut[0]=%d, want 0", firstOut[0])
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

type fixedSize interface {
	uint16 | uint32 | float64 | osm.NodeID
}

func writeSlice[T fixedSize](w io.Writer, s []T) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
	_, err := w.Write(b)
	return err
}

func readSlice[T fixedSize](r io.Reader, n int) ([]T, error) {
	if n == 0 {
		return []T{}, nil
	}
	s := make([]T, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*int(unsafe.Sizeof(s[0])))
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxString {
		return "", fmt.Errorf("string length %d exceeds limit %d", n, maxString)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// CRC32 wrapping writers/readers.

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
