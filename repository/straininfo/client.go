package straininfo

import (
	"bacref-backend-controller/utils"
	"context"
	"encoding/json"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

/*
Config 描述 StrainInfo API 的访问参数。

	APIRoot 服务根路径；
	Timeout 单次 HTTP 请求超时；
	PaceInterval 对同一服务两次请求之间的最小间隔；
	MaxRetries 瞬时故障的最大重试次数。
*/
type Config struct {
	APIRoot      string
	Timeout      time.Duration
	PaceInterval time.Duration
	MaxRetries   uint64
}

func DefaultConfig() *Config {
	return &Config{
		APIRoot:      "https://api.straininfo.dsmz.de/v1/",
		Timeout:      30 * time.Second,
		PaceInterval: 200 * time.Millisecond,
		MaxRetries:   4,
	}
}

// Taxon 为外部菌株记录关联的分类信息。
type Taxon struct {
	Name string `json:"name"`
	LPSN *int   `json:"lpsn"`
	NCBI *int   `json:"ncbi"`
}

// Culture 为菌株在某保藏中心的一条培养物记录。
type Culture struct {
	SIID         int    `json:"id"`
	StrainNumber string `json:"strain_number"`
}

/*
Record 为从 StrainInfo 取回的一条菌株数据。Taxon 可能缺失（数据质量问题，
记 warning 后照常接受）。
*/
type Record struct {
	SIID         int
	Taxon        *Taxon
	Cultures     []Culture
	Designations []string
}

type relationPayload struct {
	Culture     []Culture `json:"culture"`
	Designation []string  `json:"designation"`
}

type strainPayload struct {
	ID       int             `json:"id"`
	Taxon    *Taxon          `json:"taxon"`
	Relation relationPayload `json:"relation"`
}

type dataItem struct {
	Strain strainPayload `json:"strain"`
}

// Adapter 包装 StrainInfo v1 API 的两类查询：按标识搜索 id、按 id 批量取数据。
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

// errNotFound 不对外暴露：404 等价于空结果，在 request 内部消化掉。
type errNotFound struct {
	url string
}

func (e *errNotFound) Error() string {
	return fmt.Sprintf("[%s] not found on straininfo", e.url)
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

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

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
		// 503 等瞬时故障交给 backoff 重试
		return nil, fmt.Errorf("request [%s] fail with http status %d", requestURL, resp.StatusCode)
	}
}

/*
request 带退避重试地执行一次 GET。404 视为正常的空结果，返回 (nil, nil)。
*/
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

func (a *Adapter) searchURL(designations []string) string {
	escaped := make([]string, len(designations))
	for i, designation := range designations {
		escaped[i] = url.PathEscape(designation)
	}

	return a.config.APIRoot + "search/strain/str_des/" + strings.Join(escaped, ",")
}

func (a *Adapter) dataURL(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	return a.config.APIRoot + "data/strain/max/" + strings.Join(parts, ",")
}

/*
IDsFor 用规范化后的标识集合查询候选菌株 id。查不到返回空切片，不算错误。
返回的 id 升序排列，保证可复现。
*/
func (a *Adapter) IDsFor(ctx context.Context, designations map[string]struct{}) ([]int, error) {
	if len(designations) == 0 {
		return nil, nil
	}

	query := make([]string, 0, len(designations))
	for designation := range designations {
		query = append(query, designation)
	}
	sort.Strings(query)

	body, err := a.request(ctx, a.searchURL(query))
	if err != nil {
		return nil, utils.WrapError(err, "search strain ids fail")
	}
	if body == nil {
		return nil, nil
	}

	var ids []int
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, utils.WrapErrorf(err, "json unmarshal ids [%#v] fail", string(body))
	}

	sort.Ints(ids)

	return ids, nil
}

/*
MetadataFor 按 id 批量取回菌株数据。缺少 taxon 的记录记 warning 后保留，
不中断整批。
*/
func (a *Adapter) MetadataFor(ctx context.Context, ids []int) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	body, err := a.request(ctx, a.dataURL(ids))
	if err != nil {
		return nil, utils.WrapError(err, "fetch strain data fail")
	}
	if body == nil {
		return nil, nil
	}

	var items []dataItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, utils.WrapErrorf(err, "json unmarshal strain data [%#v] fail", string(body))
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		if item.Strain.Taxon == nil {
			a.logger.Warnf("straininfo has no taxon information for [%d]", item.Strain.ID)
		}

		records = append(records, Record{
			SIID:         item.Strain.ID,
			Taxon:        item.Strain.Taxon,
			Cultures:     item.Strain.Relation.Culture,
			Designations: item.Strain.Relation.Designation,
		})
	}

	return records, nil
}
