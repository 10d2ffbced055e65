package annotate

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/docstore"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	docstore.Init(docstore.GenerateTestConfig())

	require.Nil(t, docstore.UpsertEnzyme(10, &docstore.SchemaEnzyme{
		ECClass:         "6.1.1.1",
		RecommendedName: "Tyrosyl-tRNA ligase",
		Synonyms:        []string{"tyrosine-tRNA ligase"},
	}))
	require.Nil(t, docstore.UpsertBacteria(20, &docstore.SchemaBacteria{
		Organism: "Escherichia coli",
		Synonyms: []string{},
	}))
	require.Nil(t, docstore.UpsertStrain(30, &docstore.SchemaStrain{
		Cultures:     []docstore.SchemaCulture{},
		Designations: []string{"ATCC 35896"},
	}))

	doc := &docstore.SchemaDocument{
		Abstract: "Tyrosyl-tRNA ligase from Escherichia coli ATCC 35896 was purified.",
		Enzymes:  map[uint][]string{10: {"Tyrosyl-tRNA ligase"}},
		Bacteria: map[uint][]string{20: {"Escherichia coli"}},
		Strains:  []uint{30},
	}

	changed, err := annotate(&Setting{Logger: logging.NewLogger()}, doc)
	require.Nil(t, err)
	assert.True(t, changed)

	assert.Contains(t, doc.EntitySpans, docstore.EntityMarkup{
		Start: 0, End: 19, EntityID: 10, Label: docstore.LabelEnzyme,
	})
	assert.Contains(t, doc.EntitySpans, docstore.EntityMarkup{
		Start: 25, End: 41, EntityID: 20, Label: docstore.LabelBacteria,
	})
	assert.Contains(t, doc.EntitySpans, docstore.EntityMarkup{
		Start: 42, End: 52, EntityID: 30, Label: docstore.LabelStrain,
	})

	// 重复标注不累积
	spans := len(doc.EntitySpans)
	changed, err = annotate(&Setting{Logger: logging.NewLogger()}, doc)
	require.Nil(t, err)
	assert.False(t, changed)
	assert.Equal(t, spans, len(doc.EntitySpans))
}

func TestAnnotate_EmptyAbstract(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	doc := &docstore.SchemaDocument{}

	changed, err := annotate(&Setting{Logger: logging.NewLogger()}, doc)
	require.Nil(t, err)
	assert.False(t, changed)
	assert.Empty(t, doc.EntitySpans)
}
