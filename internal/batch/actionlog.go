package batch

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/pb"
)

// LogWriter appends length-prefixed, JSON-encoded ActionLogEntry records
// to a single session's action log file. Each Append fsyncs before
// returning so a crash can never lose an acknowledged write — the
// persistence worker is the one that retries a failed Append with
// backoff; this type only exposes the primitive.
type LogWriter struct {
	f *os.File
}

// NewLogWriter opens path for append, creating it if necessary.
func NewLogWriter(path string) (*LogWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &LogWriter{f: f}, nil
}

// Append writes one record and returns its byte offset. A caller that
// hasn't already stamped e.Timestamp gets one from the wall clock when
// Append is called, before the record is encoded and written.
func (w *LogWriter) Append(e *pb.ActionLogEntry) (int64, error) {
	if e.Timestamp == nil {
		e.Timestamp = timestamppb.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	offset, err := w.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := w.f.Write(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := w.f.Write(data); err != nil {
		return 0, err
	}
	if err := w.f.Sync(); err != nil {
		return 0, err
	}
	return offset, nil
}

// Close flushes and closes the underlying file.
func (w *LogWriter) Close() error { return w.f.Close() }

// LogReader is a read-only, mmap-backed cursor over an action log file.
// Mapping the whole file once avoids a syscall per record on replay,
// which matters for the prover worker reconstructing a batch's starting
// state from potentially thousands of entries.
type LogReader struct {
	f      *os.File
	data   []byte
	cursor int64
}

// NewLogReader opens and maps path read-only.
func NewLogReader(path string) (*LogReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &LogReader{f: f}
	if err := r.Refresh(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Refresh remaps the file, picking up records appended since the last
// mapping. Callers that read concurrently with a writer (the prover
// worker trailing the persistence worker) call this before each poll.
func (r *LogReader) Refresh() error {
	if r.data != nil {
		unix.Munmap(r.data)
		r.data = nil
	}
	info, err := r.f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	data, err := unix.Mmap(int(r.f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	r.data = data
	return nil
}

// Seek repositions the read cursor to a byte offset previously returned
// by Append or by Offset.
func (r *LogReader) Seek(offset int64) { r.cursor = offset }

// Offset returns the current read cursor.
func (r *LogReader) Offset() int64 { return r.cursor }

// PeekNext decodes the record at the current cursor without advancing it.
func (r *LogReader) PeekNext() (*pb.ActionLogEntry, error) {
	e, _, err := r.decodeAt(r.cursor)
	return e, err
}

// ReadNext decodes the record at the current cursor and advances past it.
func (r *LogReader) ReadNext() (*pb.ActionLogEntry, error) {
	e, next, err := r.decodeAt(r.cursor)
	if err != nil {
		return nil, err
	}
	r.cursor = next
	return e, nil
}

func (r *LogReader) decodeAt(offset int64) (*pb.ActionLogEntry, int64, error) {
	if offset >= int64(len(r.data)) {
		return nil, offset, io.EOF
	}
	if offset+4 > int64(len(r.data)) {
		return nil, offset, errs.New(errs.KindPartialWrite, "truncated action log header")
	}
	length := binary.LittleEndian.Uint32(r.data[offset : offset+4])
	start := offset + 4
	end := start + int64(length)
	if end > int64(len(r.data)) {
		return nil, offset, errs.New(errs.KindPartialWrite, "truncated action log record")
	}
	var e pb.ActionLogEntry
	if err := json.Unmarshal(r.data[start:end], &e); err != nil {
		return nil, offset, err
	}
	return &e, end, nil
}

// Close unmaps and closes the file.
func (r *LogReader) Close() error {
	if r.data != nil {
		unix.Munmap(r.data)
	}
	return r.f.Close()
}
