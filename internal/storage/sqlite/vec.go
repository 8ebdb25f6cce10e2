package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// serializeVector converts a float32 slice to a LittleEndian byte
// blob for storage in the passages table.
func serializeVector(vec []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.LittleEndian, vec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return buf.Bytes(), nil
}

// deserializeVector decodes a blob into buf, reusing its backing
// array when large enough.
func deserializeVector(blob []byte, buf []float32) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d", len(blob))
	}
	n := len(blob) / 4
	if cap(buf) < n {
		buf = make([]float32, n)
	}
	buf = buf[:n]
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		buf[i] = math.Float32frombits(bits)
	}
	return buf, nil
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// cosineSimilarity assumes queryNorm was precomputed with norm().
func cosineSimilarity(query []float32, queryNorm float64, candidate []float32) float64 {
	if len(query) != len(candidate) {
		return 0
	}
	var dot float64
	for i := range query {
		dot += float64(query[i]) * float64(candidate[i])
	}
	candNorm := norm(candidate)
	if queryNorm == 0 || candNorm == 0 {
		return 0
	}
	return dot / (queryNorm * candNorm)
}
