package pack

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// framing stands in for the bytes the classifier skips after the pixel-data tag.
var framing = []byte{0x78, 0xda, 0x01, 0x02, 0x03, 0x04}

func writeChunk(buf *bytes.Buffer, tag string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])
	buf.WriteString(tag)
	buf.Write(data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}

// buildImage assembles a minimal exported-sprite shaped file: signature, header chunk,
// one pixel-data chunk whose length field is declared and whose counted region is
// region, then the terminator chunk.
func buildImage(declared uint32, region []byte) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 16)
	binary.BigEndian.PutUint32(ihdr[4:8], 16)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	writeChunk(&buf, "IHDR", ihdr)

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], declared)
	buf.Write(length[:])
	buf.WriteString(PixelDataTag)
	buf.Write(framing)
	buf.Write(region)
	buf.Write([]byte{0xde, 0xad, 0xbe, 0xef})

	writeChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

// regionWithZeros returns n bytes of which the first zeros are 0x00 and the rest 0xff.
func regionWithZeros(n, zeros int) []byte {
	region := bytes.Repeat([]byte{0xff}, n)
	for i := 0; i < zeros; i++ {
		region[i] = 0
	}
	return region
}

func writeImageFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func emptyImage() []byte {
	return buildImage(100, regionWithZeros(100, 100))
}

func contentImage() []byte {
	return buildImage(100, regionWithZeros(100, 5))
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file to exist at %s", path)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected file to not exist at %s", path)
	}
}
