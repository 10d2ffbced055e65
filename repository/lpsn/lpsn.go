package lpsn

import (
	"bacref-backend-controller/utils"
	"encoding/csv"
	"fmt"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"strconv"
	"strings"
)

/*
Config 描述 LPSN 本地快照的位置。

快照为 csv 文件，至少包含 record_no、record_lnk、genus_name、sp_epithet、
subsp_epithet 五列，其中 record_lnk 指向该名称链接到的记录（通常为有效名）。
*/
type Config struct {
	CSVPath string
}

type record struct {
	RecordNo     int
	RecordLnk    int // 0 表示无链接
	GenusName    string
	SpEpithet    string
	SubspEpithet string
}

// name 按 LPSN 记录的各字段拼出物种名。
func (r *record) name() string {
	parts := make([]string, 0, 3)

	if len(r.GenusName) != 0 {
		parts = append(parts, r.GenusName)
	}
	if len(r.SpEpithet) != 0 {
		parts = append(parts, r.SpEpithet)
	}
	if len(r.SubspEpithet) != 0 {
		parts = append(parts, "subsp. "+r.SubspEpithet)
	}

	return strings.Join(parts, " ")
}

/*
Resolver 包装对分类学权威数据（LPSN）的查询：名字到记录号、记录号到同物
异名集合、记录号到上级链接。

所有查不到的情况都返回空结果并记录日志，不作为错误向上传递。
*/
type Resolver struct {
	logger *logrus.Logger

	records []record
	byNo    map[int]*record
	byLnk   map[int][]*record

	synCache *lru.Cache[int, map[string]struct{}]
}

const synCacheSize = 4096

func New(config *Config, logger *logrus.Logger) (*Resolver, error) {
	file, err := os.Open(config.CSVPath)
	if err != nil {
		return nil, utils.WrapError(err, "open lpsn csv fail")
	}
	defer file.Close()

	resolver, err := load(file, logger)
	if err != nil {
		return nil, utils.WrapErrorf(err, "load lpsn csv [%s] fail", config.CSVPath)
	}

	return resolver, nil
}

func load(reader io.Reader, logger *logrus.Logger) (*Resolver, error) {
	r := csv.NewReader(reader)

	header, err := r.Read()
	if err != nil {
		return nil, utils.WrapError(err, "read header fail")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	for _, required := range []string{"record_no", "record_lnk", "genus_name", "sp_epithet", "subsp_epithet"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("column [%s] not found in lpsn csv", required)
		}
	}

	ret := Resolver{
		logger: logger,
		byNo:   make(map[int]*record),
		byLnk:  make(map[int][]*record),
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, utils.WrapError(err, "read row fail")
		}

		no, err := strconv.Atoi(row[columns["record_no"]])
		if err != nil {
			return nil, utils.WrapErrorf(err, "parse record_no [%s] fail", row[columns["record_no"]])
		}

		lnk := 0
		if raw := strings.TrimSpace(row[columns["record_lnk"]]); len(raw) != 0 {
			// 快照中 record_lnk 可能带小数点（来自表格导出），截断即可
			lnk, err = strconv.Atoi(strings.SplitN(raw, ".", 2)[0])
			if err != nil {
				return nil, utils.WrapErrorf(err, "parse record_lnk [%s] fail", raw)
			}
		}

		ret.records = append(ret.records, record{
			RecordNo:     no,
			RecordLnk:    lnk,
			GenusName:    strings.TrimSpace(row[columns["genus_name"]]),
			SpEpithet:    strings.TrimSpace(row[columns["sp_epithet"]]),
			SubspEpithet: strings.TrimSpace(row[columns["subsp_epithet"]]),
		})
	}

	for i := range ret.records {
		rec := &ret.records[i]
		ret.byNo[rec.RecordNo] = rec
		if rec.RecordLnk != 0 {
			ret.byLnk[rec.RecordLnk] = append(ret.byLnk[rec.RecordLnk], rec)
		}
	}

	cache, err := lru.New[int, map[string]struct{}](synCacheSize)
	if err != nil {
		return nil, utils.WrapError(err, "create synonym cache fail")
	}
	ret.synCache = cache

	return &ret, nil
}

/*
SynonymsOfID 收集记录号 id 的同物异名集合：所有链接到 id 的记录，加上 id
自身链接到的那条记录。查不到时返回空集合。
*/
func (r *Resolver) SynonymsOfID(id int) map[string]struct{} {
	if cached, ok := r.synCache.Get(id); ok {
		return cached
	}

	synonyms := make(map[string]struct{})

	own, ok := r.byNo[id]
	if !ok {
		r.logger.Infof("no lpsn record for id [%d]", id)
		return synonyms
	}

	for _, rec := range r.byLnk[id] {
		synonyms[rec.name()] = struct{}{}
	}

	if own.RecordLnk != 0 {
		if parent, ok := r.byNo[own.RecordLnk]; ok {
			synonyms[parent.name()] = struct{}{}
		}
	}

	r.synCache.Add(id, synonyms)

	return synonyms
}

// SynonymsOfName 先解析名字得到记录号，再收集同物异名集合。
func (r *Resolver) SynonymsOfName(name string) map[string]struct{} {
	id, ok := r.IDOf(name)
	if !ok {
		return map[string]struct{}{}
	}

	return r.SynonymsOfID(id)
}

/*
IDOf 在 LPSN 中查找 name 的记录号。按 NameParts 解析出属名、种加词、亚种
加词后做结构化的精确匹配。查不到时返回 (0, false) 并记录日志。
*/
func (r *Resolver) IDOf(name string) (int, bool) {
	parts := NameParts(name)

	for i := range r.records {
		rec := &r.records[i]
		if rec.GenusName == parts.Genus &&
			rec.SpEpithet == parts.Species &&
			rec.SubspEpithet == parts.Subspecies {
			return rec.RecordNo, true
		}
	}

	r.logger.Infof("no lpsn record for name [%s] (genus=%s, sp=%s, subsp=%s)",
		name, parts.Genus, parts.Species, parts.Subspecies)

	return 0, false
}

/*
ParentOf 返回 id 所链接到的记录号和名字。无链接时返回 (0, "", false)。
*/
func (r *Resolver) ParentOf(id int) (int, string, bool) {
	own, ok := r.byNo[id]
	if !ok || own.RecordLnk == 0 {
		return 0, "", false
	}

	parent, ok := r.byNo[own.RecordLnk]
	if !ok {
		return 0, "", false
	}

	return parent.RecordNo, parent.name(), true
}

// Parts 为一个物种名拆出的各组成部分。
type Parts struct {
	Genus      string
	Species    string
	Subspecies string
	Strain     string
}

var infixes = []string{"subsp.", "ssp.", "sp.", "pv.", "serovar", "serotype"}

// Infixes 返回名称解析时按序剔除的分类学中缀。
func Infixes() []string {
	return infixes
}

/*
NameParts 拆解物种名。去掉 subsp. 等连接词之后按空白切分，前四个 token 中
第一个「除首字符外含非小写字母字符」的 token 视为菌株标识，其之前的 token
依次为属名、种加词、亚种加词。
*/
func NameParts(name string) Parts {
	cleaned := name
	for _, infix := range infixes {
		cleaned = strings.ReplaceAll(cleaned, infix, "")
	}

	tokens := strings.Fields(cleaned)
	if len(tokens) > 4 {
		tokens = tokens[:4]
	}

	out := Parts{}
	fields := []*string{&out.Genus, &out.Species, &out.Subspecies}

	for i, term := range tokens {
		if isStrainToken(term) || i >= len(fields) {
			out.Strain = term
			break
		}

		*fields[i] = term
	}

	return out
}

// isStrainToken 判断 term 除首字符外是否含有非小写字母字符。
func isStrainToken(term string) bool {
	for _, ch := range term[1:] {
		if ch < 'a' || ch > 'z' {
			return true
		}
	}

	return false
}
