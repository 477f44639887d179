package badger

import (
	"encoding/binary"

	"github.com/poiesic/taskrag/core"
)

// Key prefixes for different data types. Every prefix is followed by ':'
// so that prefix scans never cross into another keyspace.
const (
	taskRecordPrefix          = "tskrec"
	taskSkeletonPrefix        = "tsksk"
	taskIDSeq                 = "tskseq"
	skeletonRecordPrefix      = "sklrec"
	skeletonFingerprintPrefix = "sklfp"
	importSessionPrefix       = "impses"
	importSessionKeyPrefix    = "impkey"
	importSessionIDSeq        = "impseq"
	vectorRecordPrefix        = "vecrec"
)

// scanPrefix returns the prefix used to iterate one keyspace.
func scanPrefix(prefix string) []byte {
	return []byte(prefix + ":")
}

// makeIDKey generates prefix:id with the ID in BigEndian order so
// lexicographic key order matches numeric ID order.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromKey extracts the trailing 8-byte ID of a key.
func idFromKey(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeTaskKey generates a key for a task by ID.
func makeTaskKey(id core.ID) []byte {
	return makeIDKey(taskRecordPrefix, id)
}

// makeTaskSkeletonKey generates a composite key for the skeleton index.
// Format: prefix:skeletonID:taskID
func makeTaskSkeletonKey(skeletonID, taskID core.ID) []byte {
	buf := make([]byte, len(taskSkeletonPrefix)+1+16)
	offset := copy(buf, taskSkeletonPrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(skeletonID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(taskID))
	return buf
}

// makePartialTaskSkeletonKey generates a partial key for skeleton queries.
// Format: prefix:skeletonID
func makePartialTaskSkeletonKey(skeletonID core.ID) []byte {
	return makeIDKey(taskSkeletonPrefix, skeletonID)
}

// makeSkeletonKey generates a key for a skeleton by ID.
func makeSkeletonKey(id core.ID) []byte {
	return makeIDKey(skeletonRecordPrefix, id)
}

// makeSkeletonFingerprintKey generates the fingerprint lookup key.
// Format: prefix:fingerprint bytes
func makeSkeletonFingerprintKey(fp core.Fingerprint) []byte {
	buf := make([]byte, len(skeletonFingerprintPrefix)+1+core.FingerprintSize)
	offset := copy(buf, skeletonFingerprintPrefix+":")
	copy(buf[offset:], fp[:])
	return buf
}

// makeImportSessionKey generates a key for an import session by ID.
func makeImportSessionKey(id core.ID) []byte {
	return makeIDKey(importSessionPrefix, id)
}

// makeImportSessionUUIDKey generates the lookup key for a session's UUID.
func makeImportSessionUUIDKey(key string) []byte {
	return []byte(importSessionKeyPrefix + ":" + key)
}

// makeVectorKey generates a key for a vector record by task ID.
func makeVectorKey(id core.ID) []byte {
	return makeIDKey(vectorRecordPrefix, id)
}
