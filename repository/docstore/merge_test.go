package docstore

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/repository/straininfo"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mergeTestCSV = `record_no,record_lnk,genus_name,sp_epithet,subsp_epithet
520422,520424,Thermoanaerobacter,subterraneus,
520424,,Caldanaerobacter,subterraneus,
`

func initMergeStore(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	Init(GenerateTestConfig())
}

func newMergeResolver(t *testing.T) *lpsn.Resolver {
	path := filepath.Join(t.TempDir(), "lpsn.csv")
	require.Nil(t, os.WriteFile(path, []byte(mergeTestCSV), 0644))

	resolver, err := lpsn.New(&lpsn.Config{CSVPath: path}, logging.NewLogger())
	require.Nil(t, err)

	return resolver
}

func newMergeAdapter(server *httptest.Server) *straininfo.Adapter {
	config := straininfo.DefaultConfig()
	config.APIRoot = server.URL + "/v1/"
	config.PaceInterval = 0
	config.MaxRetries = 2

	return straininfo.New(config, logging.NewLogger())
}

// 清掉上一轮测试留下的记录，保证合并判断从空状态出发
func purgeBacteria(t *testing.T, names ...string) {
	for _, name := range names {
		for {
			id, _, err := BacteriaByName(name)
			require.Nil(t, err)
			if id == 0 {
				break
			}
			require.Nil(t, db.Unscoped().Delete(&Bacteria{}, id).Error)
		}
	}
}

func purgeStrains(t *testing.T, designations ...string) {
	for _, designation := range designations {
		for {
			id, _, err := StrainByDesignation(designation)
			require.Nil(t, err)
			if id == 0 {
				break
			}
			require.Nil(t, db.Unscoped().Delete(&Strain{}, id).Error)
		}
	}
}

func purgeStrainsBySIID(t *testing.T, siid int) {
	for {
		id, _, err := strainBySIID(siid)
		require.Nil(t, err)
		if id == 0 {
			return
		}
		require.Nil(t, db.Unscoped().Delete(&Strain{}, id).Error)
	}
}

func TestInsertOrMergeBacteria_Idempotent(t *testing.T) {
	initMergeStore(t)
	resolver := newMergeResolver(t)

	const name = "Zymovibrio fictus"
	purgeBacteria(t, name)

	first, err := InsertOrMergeBacteria(resolver, name)
	require.Nil(t, err)
	require.NotZero(t, first)

	for i := 0; i < 2; i++ {
		again, err := InsertOrMergeBacteria(resolver, name)
		require.Nil(t, err)
		assert.Equal(t, first, again)
	}

	schema, err := BacteriaByID(first)
	require.Nil(t, err)
	assert.Equal(t, name, schema.Organism)
	assert.Nil(t, schema.LPSNID)
	assert.Equal(t, []string{name}, schema.Synonyms)
}

func TestInsertOrMergeBacteria_ParentPreference(t *testing.T) {
	initMergeStore(t)
	resolver := newMergeResolver(t)

	purgeBacteria(t, "Caldanaerobacter subterraneus", "Thermoanaerobacter subterraneus")

	// 父记录只登记了自己的名字，旧名必须经 LPSN 归到它名下
	lpsnID := 520424
	require.Nil(t, UpsertBacteria(520424, &SchemaBacteria{
		Organism: "Caldanaerobacter subterraneus",
		LPSNID:   &lpsnID,
		Synonyms: []string{"Caldanaerobacter subterraneus"},
	}))

	id, err := InsertOrMergeBacteria(resolver, "Thermoanaerobacter subterraneus")
	require.Nil(t, err)
	assert.Equal(t, uint(520424), id)

	schema, err := BacteriaByID(id)
	require.Nil(t, err)
	assert.Contains(t, schema.Synonyms, "Thermoanaerobacter subterraneus")

	again, err := InsertOrMergeBacteria(resolver, "Thermoanaerobacter subterraneus")
	require.Nil(t, err)
	assert.Equal(t, id, again)
}

func TestInsertOrMergeBacteria_Concurrent(t *testing.T) {
	initMergeStore(t)
	resolver := newMergeResolver(t)

	const name = "Pseudovibrio concurrens"
	purgeBacteria(t, name)

	const workers = 4
	ids := make([]uint, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ids[slot], errs[slot] = InsertOrMergeBacteria(resolver, name)
		}(i)
	}
	wg.Wait()

	// 同一个新名字的并发插入只允许产生一条记录
	for i := 0; i < workers; i++ {
		require.Nil(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	matchID, _, err := BacteriaByName(name)
	require.Nil(t, err)
	assert.Equal(t, ids[0], matchID)
}

func TestInsertOrMergeStrain_UnresolvedIdempotent(t *testing.T) {
	initMergeStore(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	adapter := newMergeAdapter(server)

	const designation = "XYZZY 9"
	purgeStrains(t, designation)

	first, err := InsertOrMergeStrain(context.Background(), adapter, []string{designation})
	require.Nil(t, err)
	require.NotZero(t, first)

	again, err := InsertOrMergeStrain(context.Background(), adapter, []string{designation})
	require.Nil(t, err)
	assert.Equal(t, first, again)

	schema, err := StrainByID(first)
	require.Nil(t, err)
	assert.Nil(t, schema.SIID)
	assert.Equal(t, []string{designation}, schema.Designations)
}

func TestInsertOrMergeStrain_MergeBySIID(t *testing.T) {
	initMergeStore(t)

	payload := `[
		{"strain": {
			"id": 4021,
			"taxon": {"name": "Escherichia coli", "lpsn": 771, "ncbi": 562},
			"relation": {
				"culture": [{"id": 9103, "strain_number": "DSM 30083"}],
				"designation": []
			}
		}}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/search/") {
			w.Write([]byte(`[4021]`))
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()
	adapter := newMergeAdapter(server)

	purgeStrains(t, "LMG 11450", "CCUG 27702", "DSM 30083")
	purgeStrainsBySIID(t, 4021)

	first, err := InsertOrMergeStrain(context.Background(), adapter, []string{"LMG 11450"})
	require.Nil(t, err)
	require.NotZero(t, first)

	// 另一组标识溯源到同一 StrainInfo 编号时并入既有记录，已登记的标识不丢
	second, err := InsertOrMergeStrain(context.Background(), adapter, []string{"CCUG 27702"})
	require.Nil(t, err)
	assert.Equal(t, first, second)

	schema, err := StrainByID(first)
	require.Nil(t, err)
	require.NotNil(t, schema.SIID)
	assert.Equal(t, 4021, *schema.SIID)
	assert.Contains(t, schema.Designations, "LMG 11450")
	assert.Contains(t, schema.Designations, "CCUG 27702")
	assert.Equal(t, []SchemaCulture{{SIID: 9103, StrainNumber: "DSM 30083"}}, schema.Cultures)
}
