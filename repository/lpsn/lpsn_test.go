package lpsn

import (
	"bacref-backend-controller/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

const testCSV = `record_no,record_lnk,genus_name,sp_epithet,subsp_epithet
520422,520424,Thermoanaerobacter,subterraneus,
520424,,Caldanaerobacter,subterraneus,
771,,Escherichia,coli,
772,771,Bacterium,coli,
801,,Bacillus,subtilis,subtilis
901,,Lactobacillus,,
`

func newTestResolver(t *testing.T) *Resolver {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	resolver, err := load(strings.NewReader(testCSV), logging.NewLogger())
	require.Nil(t, err)

	return resolver
}

func TestResolver_IDOf(t *testing.T) {
	resolver := newTestResolver(t)

	id, ok := resolver.IDOf("Caldanaerobacter subterraneus")
	require.True(t, ok)
	assert.Equal(t, 520424, id)

	id, ok = resolver.IDOf("Bacillus subtilis subsp. subtilis")
	require.True(t, ok)
	assert.Equal(t, 801, id)

	// 菌株尾缀不参与结构化匹配
	id, ok = resolver.IDOf("Escherichia coli ATCC 35896")
	require.True(t, ok)
	assert.Equal(t, 771, id)

	_, ok = resolver.IDOf("Homo sapiens")
	assert.False(t, ok)
}

func TestResolver_SynonymTransitivity(t *testing.T) {
	resolver := newTestResolver(t)

	fromOld := resolver.SynonymsOfName("Thermoanaerobacter subterraneus")
	_, ok := fromOld["Caldanaerobacter subterraneus"]
	assert.True(t, ok, "synonyms=%v", fromOld)

	fromCurrent := resolver.SynonymsOfName("Caldanaerobacter subterraneus")
	_, ok = fromCurrent["Thermoanaerobacter subterraneus"]
	assert.True(t, ok, "synonyms=%v", fromCurrent)
}

func TestResolver_SynonymsOfID_NotFound(t *testing.T) {
	resolver := newTestResolver(t)

	assert.Zero(t, len(resolver.SynonymsOfID(999999)))
	assert.Zero(t, len(resolver.SynonymsOfName("Unknown organism")))
}

func TestResolver_ParentOf(t *testing.T) {
	resolver := newTestResolver(t)

	parentID, parentName, ok := resolver.ParentOf(772)
	require.True(t, ok)
	assert.Equal(t, 771, parentID)
	assert.Equal(t, "Escherichia coli", parentName)

	_, _, ok = resolver.ParentOf(771)
	assert.False(t, ok)
}

func TestNameParts(t *testing.T) {
	cases := []struct {
		name   string
		expect Parts
	}{
		{
			name:   "Escherichia coli",
			expect: Parts{Genus: "Escherichia", Species: "coli"},
		},
		{
			name:   "Escherichia coli ATCC 35896",
			expect: Parts{Genus: "Escherichia", Species: "coli", Strain: "ATCC"},
		},
		{
			name:   "Bacillus subtilis subsp. subtilis",
			expect: Parts{Genus: "Bacillus", Species: "subtilis", Subspecies: "subtilis"},
		},
		{
			name:   "Lactobacillus casei 334",
			expect: Parts{Genus: "Lactobacillus", Species: "casei", Strain: "334"},
		},
		{
			name:   "ATCC 51142",
			expect: Parts{Strain: "ATCC"},
		},
	}

	for _, c := range cases {
		got := NameParts(c.name)
		t.Logf("NameParts(%q) = %+v", c.name, got)
		assert.Equal(t, c.expect, got)
	}
}
