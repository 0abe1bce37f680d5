package reader

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

// testReadSeeker performs randomized seek+read checks against a reader
// built by newReader over a random buffer.
func testReadSeeker(t *testing.T, seed int64, newReader func([]byte) io.ReadSeeker) {
	const trials = 1000

	rng := rand.New(rand.NewSource(seed))

	data := make([]byte, 10*1024)
	rng.Read(data)

	rs := newReader(data)

	var buf [64]byte
	for i := 0; i < trials; i++ {
		offset := rng.Intn(len(data))
		readLen := max(min(rng.Intn(64), len(data)-offset), 1)

		if _, err := rs.Seek(int64(offset), io.SeekStart); err != nil {
			t.Fatalf("trial %d: Seek(%d, SeekStart) failed: %v", i, offset, err)
		}

		n, err := rs.Read(buf[:readLen])
		if err != nil && err != io.EOF {
			t.Fatalf("trial %d: Read after Seek failed: %v", i, err)
		}

		expected := data[offset : offset+readLen]
		if !bytes.Equal(buf[:n], expected) {
			t.Errorf("trial %d: mismatch at offset %d\nGot:      %v\nExpected: %v",
				i, offset, buf[:n], expected)
		}
	}
}
