package pipeline

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/docstore"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectTargets(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	docstore.Init(docstore.GenerateTestConfig())

	// 从未标注、从未复核
	require.Nil(t, docstore.SaveDocument(8001, &docstore.SchemaDocument{
		PubmedID: "10838064",
		Created:  "2026-01-01T00:00:00Z",
		Reviewed: "2026-01-01T00:00:00Z",
	}))

	// 已有实体标注
	require.Nil(t, docstore.SaveDocument(8002, &docstore.SchemaDocument{
		Created:  "2026-01-01T00:00:00Z",
		Reviewed: "2026-01-01T00:00:00Z",
		EntitySpans: []docstore.EntityMarkup{
			{Start: 0, End: 4, EntityID: 1, Label: docstore.LabelEnzyme},
		},
	}))

	// 复核过
	require.Nil(t, docstore.SaveDocument(8003, &docstore.SchemaDocument{
		Created:  "2026-01-01T00:00:00Z",
		Reviewed: "2026-02-01T00:00:00Z",
	}))

	targets, err := collectTargets()
	require.Nil(t, err)

	byID := make(map[uint]annotateTarget, len(targets))
	for _, target := range targets {
		byID[target.docID] = target
	}

	assert.Contains(t, byID, uint(8001))
	assert.Equal(t, "10838064", byID[8001].pubmedID)
	assert.NotContains(t, byID, uint(8002))
	assert.NotContains(t, byID, uint(8003))
}
