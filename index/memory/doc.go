// Package memory provides in-process implementations of index.VectorIndex
// and index.LexicalIndex.
//
// Both are deterministic: ties are broken by ascending task ID. They accept
// injected failures and delays so degraded paths can be tested without a
// real backend:
//
//	vectors := memory.NewVectorIndex(384)
//	vectors.SetError(errors.New("connection refused"))
package memory
