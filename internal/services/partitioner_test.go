package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionDocuments(t *testing.T) {
	docs := makeDocs(23)

	batches := PartitionDocuments(docs, 10)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Documents, 10)
	assert.Len(t, batches[1].Documents, 10)
	assert.Len(t, batches[2].Documents, 3)

	// Input order is preserved across batches.
	i := 0
	for bi, batch := range batches {
		assert.Equal(t, bi, batch.Index)
		for _, doc := range batch.Documents {
			assert.Equal(t, docs[i].ID, doc.ID)
			i++
		}
	}
}

func TestPartitionDocumentsExactMultiple(t *testing.T) {
	batches := PartitionDocuments(makeDocs(20), 10)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Documents, 10)
	assert.Len(t, batches[1].Documents, 10)
}

func TestPartitionDocumentsEmpty(t *testing.T) {
	assert.Empty(t, PartitionDocuments(nil, 10))
}

func TestPartitionDocumentsSmallInput(t *testing.T) {
	batches := PartitionDocuments(makeDocs(3), 10)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Documents, 3)
}

func TestPartitionDocumentsNonPositiveSize(t *testing.T) {
	batches := PartitionDocuments(makeDocs(3), 0)
	require.Len(t, batches, 3)
	for _, batch := range batches {
		assert.Len(t, batch.Documents, 1)
	}
}
