package core

import (
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for stored records. Field order is part of the on-disk
// format; append new fields at the end.
var (
	IDMUS            = idMUS{}
	TaskMUS          = taskMUS{}
	SkeletonMUS      = skeletonMUS{}
	ImportSessionMUS = importSessionMUS{}
	VectorRecordMUS  = vectorRecordMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

type taskMUS struct{}

func (taskMUS) Marshal(v Task, bs []byte) (n int) {
	w := &musWriter{bs: bs}
	w.id(v.ID)
	w.str(v.Source)
	w.str(v.Topic)
	w.str(v.Subtopic)
	w.int(v.Difficulty)
	w.strs(v.Skills)
	w.str(v.StatementText)
	w.str(v.StatementTeX)
	w.str(v.Answer)
	w.str(v.SolutionText)
	w.str(v.SolutionTeX)
	w.strs(v.Tags)
	w.int(v.TimeEstimateSec)
	w.str(v.Format)
	w.id(v.SkeletonID)
	w.fingerprint(v.Fingerprint)
	w.time(v.CreatedAt)
	return w.n
}

func (taskMUS) Unmarshal(bs []byte) (v Task, n int, err error) {
	r := &musReader{bs: bs}
	v.ID = r.id()
	v.Source = r.str()
	v.Topic = r.str()
	v.Subtopic = r.str()
	v.Difficulty = r.int()
	v.Skills = r.strs()
	v.StatementText = r.str()
	v.StatementTeX = r.str()
	v.Answer = r.str()
	v.SolutionText = r.str()
	v.SolutionTeX = r.str()
	v.Tags = r.strs()
	v.TimeEstimateSec = r.int()
	v.Format = r.str()
	v.SkeletonID = r.id()
	v.Fingerprint = r.fingerprint()
	v.CreatedAt = r.time()
	return v, r.n, r.err
}

func (taskMUS) Size(v Task) int {
	return idSize(v.ID) +
		strSize(v.Source) +
		strSize(v.Topic) +
		strSize(v.Subtopic) +
		varint.Int.Size(v.Difficulty) +
		strsSize(v.Skills) +
		strSize(v.StatementText) +
		strSize(v.StatementTeX) +
		strSize(v.Answer) +
		strSize(v.SolutionText) +
		strSize(v.SolutionTeX) +
		strsSize(v.Tags) +
		varint.Int.Size(v.TimeEstimateSec) +
		strSize(v.Format) +
		idSize(v.SkeletonID) +
		FingerprintSize +
		timeSize(v.CreatedAt)
}

type skeletonMUS struct{}

func (skeletonMUS) Marshal(v Skeleton, bs []byte) (n int) {
	w := &musWriter{bs: bs}
	w.id(v.ID)
	w.str(v.Text)
	w.fingerprint(v.Fingerprint)
	w.time(v.CreatedAt)
	return w.n
}

func (skeletonMUS) Unmarshal(bs []byte) (v Skeleton, n int, err error) {
	r := &musReader{bs: bs}
	v.ID = r.id()
	v.Text = r.str()
	v.Fingerprint = r.fingerprint()
	v.CreatedAt = r.time()
	return v, r.n, r.err
}

func (skeletonMUS) Size(v Skeleton) int {
	return idSize(v.ID) + strSize(v.Text) + FingerprintSize + timeSize(v.CreatedAt)
}

type importSessionMUS struct{}

func (importSessionMUS) Marshal(v ImportSession, bs []byte) (n int) {
	w := &musWriter{bs: bs}
	w.id(v.ID)
	w.str(v.Key)
	w.str(v.Filename)
	w.int(int(v.Status))
	w.int(v.TotalTasks)
	w.int(v.ImportedTasks)
	w.strs(v.Errors)
	w.time(v.CreatedAt)
	w.time(v.CompletedAt)
	return w.n
}

func (importSessionMUS) Unmarshal(bs []byte) (v ImportSession, n int, err error) {
	r := &musReader{bs: bs}
	v.ID = r.id()
	v.Key = r.str()
	v.Filename = r.str()
	v.Status = ImportStatus(r.int())
	v.TotalTasks = r.int()
	v.ImportedTasks = r.int()
	v.Errors = r.strs()
	v.CreatedAt = r.time()
	v.CompletedAt = r.time()
	return v, r.n, r.err
}

func (importSessionMUS) Size(v ImportSession) int {
	return idSize(v.ID) +
		strSize(v.Key) +
		strSize(v.Filename) +
		varint.Int.Size(int(v.Status)) +
		varint.Int.Size(v.TotalTasks) +
		varint.Int.Size(v.ImportedTasks) +
		strsSize(v.Errors) +
		timeSize(v.CreatedAt) +
		timeSize(v.CompletedAt)
}

type vectorRecordMUS struct{}

func (vectorRecordMUS) Marshal(v VectorRecord, bs []byte) (n int) {
	w := &musWriter{bs: bs}
	w.id(v.ID)
	w.floats(v.Vector)
	w.str(v.Topic)
	w.str(v.Subtopic)
	w.int(v.Difficulty)
	w.fingerprint(v.Fingerprint)
	return w.n
}

func (vectorRecordMUS) Unmarshal(bs []byte) (v VectorRecord, n int, err error) {
	r := &musReader{bs: bs}
	v.ID = r.id()
	v.Vector = r.floats()
	v.Topic = r.str()
	v.Subtopic = r.str()
	v.Difficulty = r.int()
	v.Fingerprint = r.fingerprint()
	return v, r.n, r.err
}

func (vectorRecordMUS) Size(v VectorRecord) int {
	size := idSize(v.ID) + varint.Int.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size + strSize(v.Topic) + strSize(v.Subtopic) + varint.Int.Size(v.Difficulty) + FingerprintSize
}

// musWriter appends fields to a buffer sized by the matching Size method.
type musWriter struct {
	bs []byte
	n  int
}

func (w *musWriter) id(v ID)      { w.n += IDMUS.Marshal(v, w.bs[w.n:]) }
func (w *musWriter) int(v int)    { w.n += varint.Int.Marshal(v, w.bs[w.n:]) }
func (w *musWriter) str(v string) { w.n += ord.String.Marshal(v, w.bs[w.n:]) }

func (w *musWriter) strs(v []string) {
	w.int(len(v))
	for _, s := range v {
		w.str(s)
	}
}

func (w *musWriter) floats(v []float32) {
	w.int(len(v))
	for _, f := range v {
		w.n += varint.Uint32.Marshal(math.Float32bits(f), w.bs[w.n:])
	}
}

func (w *musWriter) fingerprint(v Fingerprint) {
	w.n += copy(w.bs[w.n:], v[:])
}

// Times are stored as Unix microseconds; the zero time is stored as 0.
func (w *musWriter) time(v time.Time) {
	var micros int64
	if !v.IsZero() {
		micros = v.UnixMicro()
	}
	w.n += varint.Int64.Marshal(micros, w.bs[w.n:])
}

// musReader decodes fields in order and stops at the first error.
type musReader struct {
	bs  []byte
	n   int
	err error
}

func (r *musReader) id() ID {
	if r.err != nil {
		return 0
	}
	v, n, err := IDMUS.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) int() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) str() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *musReader) length() int {
	l := r.int()
	if r.err == nil && (l < 0 || l > len(r.bs)-r.n) {
		r.err = fmt.Errorf("%w: length %d exceeds remaining %d bytes", ErrCorruptRecord, l, len(r.bs)-r.n)
	}
	return l
}

func (r *musReader) strs() []string {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	out := make([]string, l)
	for i := range out {
		out[i] = r.str()
	}
	return out
}

func (r *musReader) floats() []float32 {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	out := make([]float32, l)
	for i := range out {
		if r.err != nil {
			return nil
		}
		u, n, err := varint.Uint32.Unmarshal(r.bs[r.n:])
		r.n += n
		r.err = err
		out[i] = math.Float32frombits(u)
	}
	return out
}

func (r *musReader) fingerprint() Fingerprint {
	var f Fingerprint
	if r.err != nil {
		return f
	}
	if len(r.bs)-r.n < FingerprintSize {
		r.err = fmt.Errorf("%w: truncated fingerprint", ErrCorruptRecord)
		return f
	}
	r.n += copy(f[:], r.bs[r.n:])
	return f
}

func (r *musReader) time() time.Time {
	if r.err != nil {
		return time.Time{}
	}
	micros, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	if err != nil || micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros)
}

func idSize(v ID) int      { return IDMUS.Size(v) }
func strSize(v string) int { return ord.String.Size(v) }

func strsSize(v []string) int {
	size := varint.Int.Size(len(v))
	for _, s := range v {
		size += strSize(s)
	}
	return size
}

func timeSize(v time.Time) int {
	var micros int64
	if !v.IsZero() {
		micros = v.UnixMicro()
	}
	return varint.Int64.Size(micros)
}
