package docstore

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMigration(t *testing.T) {
	cfg := GenerateTestConfig()
	cfg.CheckMigration = true
	_, err := CreateDatabase(cfg)
	assert.Nil(t, err)
}

func TestSortEntityMarkups(t *testing.T) {
	markups := []EntityMarkup{
		{Start: 25, End: 41, EntityID: 2, Label: LabelBacteria},
		{Start: 0, End: 19, EntityID: 7, Label: LabelEnzyme},
		{Start: 25, End: 41, EntityID: 1, Label: LabelBacteria},
		{Start: 42, End: 52, EntityID: 3, Label: LabelStrain},
	}

	SortEntityMarkups(markups)

	assert.Equal(t, []EntityMarkup{
		{Start: 0, End: 19, EntityID: 7, Label: LabelEnzyme},
		{Start: 25, End: 41, EntityID: 1, Label: LabelBacteria},
		{Start: 25, End: 41, EntityID: 2, Label: LabelBacteria},
		{Start: 42, End: 52, EntityID: 3, Label: LabelStrain},
	}, markups)
}

func TestStrainMatches(t *testing.T) {
	lpsn := 771
	schema := &SchemaStrain{
		Taxon:        &SchemaTaxon{Name: "Escherichia coli", LPSN: &lpsn},
		Cultures:     []SchemaCulture{{SIID: 4021, StrainNumber: "DSM 30083"}},
		Designations: []string{"ATCC 11775", "U5/41"},
	}

	assert.True(t, strainMatches(schema, "Escherichia coli"))
	assert.True(t, strainMatches(schema, "DSM 30083"))
	assert.True(t, strainMatches(schema, "U5/41"))
	assert.False(t, strainMatches(schema, "DSM 1"))

	assert.False(t, strainMatches(&SchemaStrain{}, "Escherichia coli"))
}
