package wal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/vdb/model"
)

// RecordAppend is the only record type: one pending item append.
const RecordAppend uint8 = 1

// HeaderSize is the fixed record header length:
// type (1) + id length (4) + vector dimension (4) + metadata length (4),
// all little-endian with no padding.
const HeaderSize = 1 + 4 + 4 + 4

var (
	// ErrInvalidRecord is returned when a record fails structural checks.
	ErrInvalidRecord = errors.New("invalid WAL record")
	// ErrShortRecord is returned when a record is cut off mid-payload.
	ErrShortRecord = errors.New("short WAL record")
)

// Record is a single pending operation.
type Record struct {
	Type     uint8
	ID       model.ID
	Vector   []float32
	Metadata []byte
}

// Size returns the encoded length in bytes.
func (r *Record) Size() int {
	return HeaderSize + len(r.ID.String()) + len(r.Vector)*4 + len(r.Metadata)
}

// Encode serializes the record into a single buffer:
// header, then id bytes, then dim*4 float bytes, then metadata bytes.
func (r *Record) Encode() []byte {
	id := r.ID.String()
	buf := make([]byte, 0, r.Size())

	var hdr [HeaderSize]byte
	hdr[0] = r.Type
	binary.LittleEndian.PutUint32(hdr[1:5], uint32(len(id)))
	binary.LittleEndian.PutUint32(hdr[5:9], uint32(len(r.Vector)))
	binary.LittleEndian.PutUint32(hdr[9:13], uint32(len(r.Metadata)))
	buf = append(buf, hdr[:]...)

	buf = append(buf, id...)
	var scratch [4]byte
	for _, f := range r.Vector {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(f))
		buf = append(buf, scratch[:]...)
	}
	buf = append(buf, r.Metadata...)

	return buf
}

// Decode reads one record from r.
//
// Recovery never decodes (leftover content is discarded wholesale), but the
// decoder keeps the format honest and lets tooling inspect a pending log.
func Decode(r io.Reader) (*Record, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated header", ErrShortRecord)
	}

	if hdr[0] != RecordAppend {
		return nil, fmt.Errorf("%w: unknown type %d", ErrInvalidRecord, hdr[0])
	}
	idLen := binary.LittleEndian.Uint32(hdr[1:5])
	dim := binary.LittleEndian.Uint32(hdr[5:9])
	metaLen := binary.LittleEndian.Uint32(hdr[9:13])

	if idLen == 0 || idLen > model.MaxIDLen {
		return nil, fmt.Errorf("%w: id length %d", ErrInvalidRecord, idLen)
	}
	if !model.ValidDim(dim) {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidRecord, dim)
	}

	payload := make([]byte, int(idLen)+int(dim)*4+int(metaLen))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated payload", ErrShortRecord)
	}

	id, err := model.NewID(string(payload[:idLen]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	vec := make([]float32, dim)
	off := int(idLen)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
		off += 4
	}

	var meta []byte
	if metaLen > 0 {
		meta = payload[off:]
	}

	return &Record{Type: hdr[0], ID: id, Vector: vec, Metadata: meta}, nil
}
