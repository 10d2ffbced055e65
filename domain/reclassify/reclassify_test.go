package reclassify

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/repository/straininfo"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	loadTestNames(t)

	r := docReclassifier{
		doc: &docstore.SchemaDocument{
			OtherOrganisms: map[uint]string{
				1: "Escherichia coli",            // 物种
				2: "Bacillus subtilis BEST195",   // 物种 + 菌株
				3: "ATCC 35896",                  // 只有菌株标识
				4: "Homo sapiens",                // 原样保留
			},
		},
	}

	r.classify()

	assert.Equal(t, map[uint]struct{}{1: {}, 2: {}, 3: {}}, r.reclassified)
	assert.Equal(t, map[string]struct{}{
		"Escherichia coli":  {},
		"Bacillus subtilis": {},
	}, r.bacteria)
	assert.Equal(t, map[string]struct{}{
		"BEST195":    {},
		"ATCC 35896": {},
	}, r.strains)
}

const testLPSNCSV = `record_no,record_lnk,genus_name,sp_epithet,subsp_epithet
520422,520424,Thermoanaerobacter,subterraneus,
520424,,Caldanaerobacter,subterraneus,
`

// 溯源一律落空的外部依赖，够覆盖整轮归类流程
func newTestSetting(t *testing.T) *Setting {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	path := filepath.Join(t.TempDir(), "lpsn.csv")
	require.Nil(t, os.WriteFile(path, []byte(testLPSNCSV), 0644))

	resolver, err := lpsn.New(&lpsn.Config{CSVPath: path}, logging.NewLogger())
	require.Nil(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	config := straininfo.DefaultConfig()
	config.APIRoot = server.URL + "/v1/"
	config.PaceInterval = 0

	return &Setting{
		Logger:     logging.NewLogger(),
		LPSN:       resolver,
		StrainInfo: straininfo.New(config, logging.NewLogger()),
	}
}

func TestProduce(t *testing.T) {
	loadTestNames(t)
	setting := newTestSetting(t)
	docstore.Init(docstore.GenerateTestConfig())

	doc := &docstore.SchemaDocument{
		OtherOrganisms: map[uint]string{
			1: "Thermoanaerobacter subterraneus",
			2: "Bacillus subtilis BEST195",
			3: "Homo sapiens",
		},
	}
	require.Nil(t, docstore.SaveDocument(8101, doc))

	r := docReclassifier{
		ctx:     context.Background(),
		setting: setting,
		docID:   8101,
		doc:     doc,
	}
	require.Nil(t, r.produce())

	saved, err := docstore.DocumentByID(8101)
	require.Nil(t, err)

	// 归类掉的提及被移出，归不了类的原样保留
	assert.Equal(t, map[uint]string{3: "Homo sapiens"}, saved.OtherOrganisms)
	assert.NotEmpty(t, saved.Modified)

	found := make(map[string]bool)
	for _, names := range saved.Bacteria {
		for _, name := range names {
			found[name] = true
		}
	}
	assert.True(t, found["Thermoanaerobacter subterraneus"], "bacteria=%v", saved.Bacteria)
	assert.True(t, found["Bacillus subtilis"], "bacteria=%v", saved.Bacteria)

	assert.Equal(t, 1, len(saved.Strains), "strains=%v", saved.Strains)
	strain, err := docstore.StrainByID(saved.Strains[0])
	require.Nil(t, err)
	assert.Contains(t, strain.Designations, "BEST195")
}

func TestClassify_EmptyBucket(t *testing.T) {
	loadTestNames(t)

	r := docReclassifier{
		doc: &docstore.SchemaDocument{},
	}

	r.classify()

	assert.Empty(t, r.reclassified)
	assert.Empty(t, r.bacteria)
	assert.Empty(t, r.strains)
}
