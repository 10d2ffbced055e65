package ncbi

import (
	"bacref-backend-controller/logging"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const summaryXML = `<?xml version="1.0" encoding="UTF-8"?>
<eSummaryResult>
<DocSum>
	<Id>10022820</Id>
	<Item Name="Title" Type="String">Tyrosyl-tRNA synthetase.</Item>
	<Item Name="ArticleIds" Type="List">
		<Item Name="pubmed" Type="String">10022820</Item>
		<Item Name="pmc" Type="String">PMC1220288</Item>
		<Item Name="doi" Type="String">10.1042/bj2560915</Item>
	</Item>
</DocSum>
</eSummaryResult>`

const efetchXML = `<?xml version="1.0" encoding="UTF-8"?>
<PubmedArticleSet>
<PubmedArticle>
	<MedlineCitation>
		<PMID Version="1">10022820</PMID>
		<Article>
			<Abstract>
				<AbstractText>Tyrosyl-tRNA ligase from Escherichia coli ATCC 35896 was purified.</AbstractText>
			</Abstract>
		</Article>
	</MedlineCitation>
</PubmedArticle>
<PubmedArticle>
	<MedlineCitation>
		<PMID Version="1">10022821</PMID>
		<Article></Article>
	</MedlineCitation>
</PubmedArticle>
</PubmedArticleSet>`

const oaiXML = `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
<GetRecord>
	<record>
		<header>
			<setSpec>pmc</setSpec>
			<setSpec>pmc-open</setSpec>
		</header>
	</record>
</GetRecord>
</OAI-PMH>`

func newTestAdapter(t *testing.T, server *httptest.Server) *Adapter {
	config := DefaultConfig()
	config.EUtilsRoot = server.URL + "/eutils/"
	config.OAIRoot = server.URL + "/oai"
	config.PaceInterval = 0
	config.MaxRetries = 2

	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	return New(config, logging.NewLogger())
}

func TestArticleIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eutils/esummary.fcgi", r.URL.Path)
		assert.Equal(t, "10022820", r.URL.Query().Get("id"))
		w.Write([]byte(summaryXML))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	ids, err := adapter.ArticleIDs(context.Background(), "10022820")

	assert.Nil(t, err)
	assert.Equal(t, map[string]string{
		"pubmed": "10022820",
		"pmc":    "PMC1220288",
		"doi":    "10.1042/bj2560915",
	}, ids)
}

func TestArticleIDs_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	ids, err := adapter.ArticleIDs(context.Background(), "1")

	assert.Nil(t, err)
	assert.Empty(t, ids)
}

func TestAbstracts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eutils/efetch.fcgi", r.URL.Path)
		assert.Equal(t, "10022820,10022821", r.URL.Query().Get("id"))
		w.Write([]byte(efetchXML))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	abstracts, err := adapter.Abstracts(context.Background(), []string{"10022820", "10022821"})

	assert.Nil(t, err)
	// 没有摘要的文献不出现在结果中
	assert.Equal(t, 1, len(abstracts))
	assert.True(t, strings.HasPrefix(abstracts["10022820"], "Tyrosyl-tRNA ligase"))
}

func TestIsPMCOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oai", r.URL.Path)
		w.Write([]byte(oaiXML))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server)

	open, err := adapter.IsPMCOpen(context.Background(), "1220288")
	assert.Nil(t, err)
	assert.True(t, open)

	open, err = adapter.IsPMCOpen(context.Background(), "")
	assert.Nil(t, err)
	assert.False(t, open)
}
