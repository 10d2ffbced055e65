package ncbi

import (
	"bacref-backend-controller/utils"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

/*
Config 描述 NCBI E-utilities 的访问参数。

	APIKey 可以为空，带 key 时 NCBI 放宽限流。
*/
type Config struct {
	EUtilsRoot   string
	OAIRoot      string
	APIKey       string
	Timeout      time.Duration
	PaceInterval time.Duration
	MaxRetries   uint64
}

func DefaultConfig() *Config {
	return &Config{
		EUtilsRoot:   "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/",
		OAIRoot:      "https://www.ncbi.nlm.nih.gov/pmc/oai/oai.cgi",
		Timeout:      30 * time.Second,
		PaceInterval: 350 * time.Millisecond,
		MaxRetries:   4,
	}
}

// Adapter 包装 NCBI 的三类查询：文章编号映射、摘要、PMC 开放状态。
type Adapter struct {
	config *Config
	client *http.Client
	logger *logrus.Logger

	paceLock sync.Mutex
	lastCall time.Time
}

func New(config *Config, logger *logrus.Logger) *Adapter {
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type errNotFound struct {
	url string
}

func (e *errNotFound) Error() string {
	return fmt.Sprintf("[%s] not found on ncbi", e.url)
}

func (a *Adapter) pace() {
	a.paceLock.Lock()
	defer a.paceLock.Unlock()

	wait := a.config.PaceInterval - time.Since(a.lastCall)
	if wait > 0 {
		time.Sleep(wait)
	}

	a.lastCall = time.Now()
}

func (a *Adapter) requestOnce(ctx context.Context, requestURL string) ([]byte, error) {
	a.pace()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, backoff.Permanent(utils.WrapError(err, "build request fail"))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, utils.WrapError(err, "do request fail")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, utils.WrapError(err, "read body fail")
		}
		return body, nil

	case http.StatusNotFound:
		return nil, backoff.Permanent(&errNotFound{url: requestURL})

	default:
		return nil, fmt.Errorf("request [%s] fail with http status %d", requestURL, resp.StatusCode)
	}
}

// request 带退避重试地执行一次 GET。404 视为正常的空结果，返回 (nil, nil)。
func (a *Adapter) request(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		var err error
		body, err = a.requestOnce(ctx, requestURL)
		return err
	}

	err := backoff.Retry(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.config.MaxRetries), ctx),
	)

	if err != nil {
		var notFound *errNotFound
		if ok := asNotFound(err, &notFound); ok {
			a.logger.Infof("%s", notFound.Error())
			return nil, nil
		}

		return nil, err
	}

	return body, nil
}

func asNotFound(err error, target **errNotFound) bool {
	for err != nil {
		if nf, ok := err.(*errNotFound); ok {
			*target = nf
			return true
		}

		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}

	return false
}

////////////////////////////////////////// article ids //////////////////////////////////////////

type summaryItem struct {
	Name  string        `xml:"Name,attr"`
	Value string        `xml:",chardata"`
	Items []summaryItem `xml:"Item"`
}

type summaryResult struct {
	Items []summaryItem `xml:"DocSum>Item"`
}

func (a *Adapter) summaryURL(pubmedID string) string {
	requestURL := a.config.EUtilsRoot + "esummary.fcgi?db=pubmed&id=" + url.QueryEscape(pubmedID)
	if len(a.config.APIKey) != 0 {
		requestURL += "&api_key=" + url.QueryEscape(a.config.APIKey)
	}
	return requestURL
}

/*
ArticleIDs 查询一篇 PubMed 文献登记的各类编号（pubmed、pmc、doi 等）。
查不到时返回空 map。
*/
func (a *Adapter) ArticleIDs(ctx context.Context, pubmedID string) (map[string]string, error) {
	body, err := a.request(ctx, a.summaryURL(pubmedID))
	if err != nil {
		return nil, utils.WrapErrorf(err, "fetch article ids of [%s] fail", pubmedID)
	}
	if body == nil {
		return map[string]string{}, nil
	}

	var result summaryResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, utils.WrapErrorf(err, "xml unmarshal summary of [%s] fail", pubmedID)
	}

	ids := make(map[string]string)
	for _, item := range result.Items {
		if item.Name != "ArticleIds" {
			continue
		}
		for _, sub := range item.Items {
			ids[sub.Name] = strings.TrimSpace(sub.Value)
		}
	}

	return ids, nil
}

////////////////////////////////////////// abstracts //////////////////////////////////////////

type abstractResult struct {
	Articles []struct {
		PMID      string   `xml:"MedlineCitation>PMID"`
		Abstracts []string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	} `xml:"PubmedArticle"`
}

/*
Abstracts 批量取回摘要文本，返回 pubmed_id 到摘要的映射。
没有摘要的文献不出现在结果中。
*/
func (a *Adapter) Abstracts(ctx context.Context, pubmedIDs []string) (map[string]string, error) {
	if len(pubmedIDs) == 0 {
		return map[string]string{}, nil
	}

	requestURL := a.config.EUtilsRoot + "efetch.fcgi?db=pubmed&retmode=xml&id=" +
		url.QueryEscape(strings.Join(pubmedIDs, ","))
	if len(a.config.APIKey) != 0 {
		requestURL += "&api_key=" + url.QueryEscape(a.config.APIKey)
	}

	body, err := a.request(ctx, requestURL)
	if err != nil {
		return nil, utils.WrapError(err, "fetch abstracts fail")
	}
	if body == nil {
		return map[string]string{}, nil
	}

	var result abstractResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, utils.WrapError(err, "xml unmarshal abstracts fail")
	}

	abstracts := make(map[string]string)
	for _, article := range result.Articles {
		text := strings.TrimSpace(strings.Join(article.Abstracts, " "))
		if len(text) != 0 {
			abstracts[article.PMID] = text
		}
	}

	return abstracts, nil
}

////////////////////////////////////////// pmc open //////////////////////////////////////////

type oaiRecord struct {
	SetSpecs []string `xml:"GetRecord>record>header>setSpec"`
}

/*
IsPMCOpen 判断一篇 PMC 文献是否属于开放获取集合。
*/
func (a *Adapter) IsPMCOpen(ctx context.Context, pmcID string) (bool, error) {
	if len(pmcID) == 0 {
		return false, nil
	}

	requestURL := a.config.OAIRoot +
		"?verb=GetRecord&identifier=oai:pubmedcentral.nih.gov:" + url.QueryEscape(pmcID) +
		"&metadataPrefix=pmc_fm"

	body, err := a.request(ctx, requestURL)
	if err != nil {
		return false, utils.WrapErrorf(err, "fetch oai record of [%s] fail", pmcID)
	}
	if body == nil {
		return false, nil
	}

	var record oaiRecord
	if err := xml.Unmarshal(body, &record); err != nil {
		return false, utils.WrapErrorf(err, "xml unmarshal oai record of [%s] fail", pmcID)
	}

	for _, spec := range record.SetSpecs {
		if spec == "pmc-open" {
			return true, nil
		}
	}

	return false, nil
}
