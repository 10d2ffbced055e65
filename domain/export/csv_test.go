package export

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/docstore"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCSV(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	docstore.Init(docstore.GenerateTestConfig())

	require.Nil(t, docstore.UpsertEnzyme(110, &docstore.SchemaEnzyme{
		ECClass:         "1.1.1.1",
		RecommendedName: "alcohol dehydrogenase",
		Synonyms:        []string{},
	}))
	require.Nil(t, docstore.UpsertBacteria(120, &docstore.SchemaBacteria{
		Organism: "Escherichia coli",
		Synonyms: []string{},
	}))
	require.Nil(t, docstore.UpsertStrain(130, &docstore.SchemaStrain{
		Cultures:     []docstore.SchemaCulture{},
		Designations: []string{"ATCC 11775"},
	}))

	require.Nil(t, docstore.SaveDocument(9001, &docstore.SchemaDocument{
		Title:    "csv export sample",
		Enzymes:  map[uint][]string{110: {"alcohol dehydrogenase"}},
		Bacteria: map[uint][]string{120: {"Escherichia coli"}},
		Strains:  []uint{130},
		Relations: docstore.SchemaRelations{
			HasEnzyme: []docstore.RelationTriple{
				{Subject: 130, Object: 110},
				// 主语不在任一实体桶里，应当被丢弃
				{Subject: 999, Object: 110},
			},
			HasSpecies: []docstore.RelationTriple{
				{Subject: 130, Object: 120},
			},
		},
	}))

	builder := &csvBuilder{logger: logging.NewLogger()}
	require.Nil(t, builder.buildCSV())

	entityCSV := builder.entityCSV.String()
	assert.Contains(t, entityCSV, "label,id,name")
	assert.Contains(t, entityCSV, `"d3o:Enzyme",110,"alcohol dehydrogenase"`)
	assert.Contains(t, entityCSV, `"d3o:Bacteria",120,"Escherichia coli"`)
	assert.Contains(t, entityCSV, `"d3o:Strain",130,"ATCC 11775"`)

	relationCSV := builder.relationCSV.String()
	assert.Contains(t, relationCSV, "rel,head_label,head,tail_label,tail")
	assert.Contains(t, relationCSV, `"HasEnzyme","d3o:Strain",130,"d3o:Enzyme",110`)
	assert.Contains(t, relationCSV, `"HasSpecies","d3o:Strain",130,"d3o:Bacteria",120`)
	assert.NotContains(t, relationCSV, "999")
}

func TestHeadKey(t *testing.T) {
	builder := &csvBuilder{logger: logging.NewLogger()}

	doc := &docstore.SchemaDocument{
		Bacteria: map[uint][]string{20: {"Escherichia coli"}},
		Strains:  []uint{30},
	}

	key, ok := builder.headKey(doc, 30)
	assert.True(t, ok)
	assert.Equal(t, entityKey{Label: docstore.LabelStrain, ID: 30}, key)

	key, ok = builder.headKey(doc, 20)
	assert.True(t, ok)
	assert.Equal(t, entityKey{Label: docstore.LabelBacteria, ID: 20}, key)

	_, ok = builder.headKey(doc, 999)
	assert.False(t, ok)
}
