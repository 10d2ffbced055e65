package straininfo

import (
	"bacref-backend-controller/logging"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestAdapter(t *testing.T, server *httptest.Server) *Adapter {
	config := DefaultConfig()
	config.APIRoot = server.URL + "/v1/"
	config.PaceInterval = 0
	config.MaxRetries = 2

	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	return New(config, logging.NewLogger())
}

func TestIDsFor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search/strain/str_des/ATCC 23448,NRRL B-771", r.URL.Path)
		w.Write([]byte(`[339, 12]`))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	ids, err := adapter.IDsFor(context.Background(), map[string]struct{}{
		"NRRL B-771": {},
		"ATCC 23448": {},
	})

	assert.Nil(t, err)
	assert.Equal(t, []int{12, 339}, ids)
}

func TestIDsFor_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	ids, err := adapter.IDsFor(context.Background(), map[string]struct{}{"XYZZY 1": {}})

	assert.Nil(t, err)
	assert.Empty(t, ids)
}

func TestIDsFor_Empty(t *testing.T) {
	adapter := newTestAdapter(t, httptest.NewServer(http.NotFoundHandler()))

	ids, err := adapter.IDsFor(context.Background(), nil)

	assert.Nil(t, err)
	assert.Empty(t, ids)
}

func TestMetadataFor(t *testing.T) {
	payload := `[
		{"strain": {
			"id": 339,
			"taxon": {"name": "Escherichia coli", "lpsn": 771, "ncbi": 562},
			"relation": {
				"culture": [{"id": 4021, "strain_number": "DSM 30083"}],
				"designation": ["U5/41"]
			}
		}},
		{"strain": {
			"id": 340,
			"taxon": null,
			"relation": {"culture": [], "designation": []}
		}}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/data/strain/max/339,340", r.URL.Path)
		w.Write([]byte(payload))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	records, err := adapter.MetadataFor(context.Background(), []int{339, 340})

	assert.Nil(t, err)
	assert.Equal(t, 2, len(records))

	assert.Equal(t, 339, records[0].SIID)
	assert.NotNil(t, records[0].Taxon)
	assert.Equal(t, "Escherichia coli", records[0].Taxon.Name)
	assert.Equal(t, 771, *records[0].Taxon.LPSN)
	assert.Equal(t, []Culture{{SIID: 4021, StrainNumber: "DSM 30083"}}, records[0].Cultures)
	assert.Equal(t, []string{"U5/41"}, records[0].Designations)

	// taxon 缺失的记录照常保留
	assert.Equal(t, 340, records[1].SIID)
	assert.Nil(t, records[1].Taxon)
}

func TestRequest_RetryOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[7]`))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	ids, err := adapter.IDsFor(context.Background(), map[string]struct{}{"DSM 30083": {}})

	assert.Nil(t, err)
	assert.Equal(t, []int{7}, ids)
	assert.Equal(t, 3, calls)
}

func TestPace(t *testing.T) {
	config := DefaultConfig()
	config.PaceInterval = 20 * time.Millisecond

	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	adapter := New(config, logging.NewLogger())

	begin := time.Now()
	adapter.pace()
	adapter.pace()

	assert.GreaterOrEqual(t, time.Since(begin), 20*time.Millisecond)
}
