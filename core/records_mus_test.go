package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestTaskMUS_RoundTrip(t *testing.T) {
	task := Task{
		ID:              42,
		Source:          "ФИПИ",
		Topic:           "Алгебра",
		Subtopic:        "Квадратные уравнения",
		Difficulty:      3,
		Skills:          []string{"factoring", "vieta"},
		StatementText:   "Решите уравнение x^2 - 7x + 12 = 0",
		Answer:          "3; 4",
		Tags:            []string{"equation"},
		TimeEstimateSec: 120,
		Format:          DefaultTaskFormat,
		SkeletonID:      7,
		Fingerprint:     Fingerprint{0xde, 0xad, 0xbe, 0xef},
		CreatedAt:       time.UnixMicro(1_700_000_000_123_456),
	}

	buf := make([]byte, TaskMUS.Size(task))
	n := TaskMUS.Marshal(task, buf)
	if n != len(buf) {
		t.Fatalf("Marshal wrote %d bytes, Size reported %d", n, len(buf))
	}

	got, read, err := TaskMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if read != n {
		t.Errorf("Unmarshal read %d bytes, want %d", read, n)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, task.CreatedAt)
	}
	got.CreatedAt = task.CreatedAt
	if !reflect.DeepEqual(got, task) {
		t.Errorf("Unmarshal() = %+v, want %+v", got, task)
	}
}

func TestVectorRecordMUS_PreservesFloats(t *testing.T) {
	rec := VectorRecord{ID: 1, Vector: []float32{0.25, -1.5, 0, 3.0e-7}, Topic: "Геометрия", Difficulty: 2}

	buf := make([]byte, VectorRecordMUS.Size(rec))
	VectorRecordMUS.Marshal(rec, buf)

	got, _, err := VectorRecordMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(got.Vector, rec.Vector) {
		t.Errorf("Vector = %v, want %v", got.Vector, rec.Vector)
	}
}

func TestZeroTimeSurvivesEncoding(t *testing.T) {
	session := ImportSession{ID: 3, Key: "k", Status: ImportStatusPending}

	buf := make([]byte, ImportSessionMUS.Size(session))
	ImportSessionMUS.Marshal(session, buf)

	got, _, err := ImportSessionMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !got.CompletedAt.IsZero() {
		t.Errorf("CompletedAt = %v, want zero time", got.CompletedAt)
	}
}

func TestSkeletonMUS_Truncated(t *testing.T) {
	skel := Skeleton{ID: 9, Text: "решите уравнение x^var - nx + var = var", Fingerprint: Fingerprint{1, 2, 3}}

	buf := make([]byte, SkeletonMUS.Size(skel))
	SkeletonMUS.Marshal(skel, buf)

	_, _, err := SkeletonMUS.Unmarshal(buf[:len(buf)-FingerprintSize])
	if !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("Unmarshal() error = %v, want ErrCorruptRecord", err)
	}
}
