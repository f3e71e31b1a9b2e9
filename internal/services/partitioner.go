package services

import "recruitflow/screening-api/internal/models"

// Batch is an ephemeral group of candidate documents scored together in one
// remote call. It only exists for the duration of that call.
type Batch struct {
	Index     int
	Documents []models.Document
}

// PartitionDocuments splits documents into batches of up to size, preserving
// the input order. The final batch may be smaller. A non-positive size yields
// one document per batch.
func PartitionDocuments(docs []models.Document, size int) []Batch {
	if size <= 0 {
		size = 1
	}

	batches := make([]Batch, 0, (len(docs)+size-1)/size)
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, Batch{
			Index:     len(batches),
			Documents: docs[start:end],
		})
	}

	return batches
}
