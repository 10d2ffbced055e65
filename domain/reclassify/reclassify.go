package reclassify

import (
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/utils"
	"context"
	"sort"
	"time"
)

func run(setting *Setting, ctx context.Context) error {
	return docstore.EachDocument(128, func(ids []uint, docs []*docstore.SchemaDocument) error {
		for i := range docs {
			r := docReclassifier{
				ctx:     ctx,
				setting: setting,
				docID:   ids[i],
				doc:     docs[i],
			}

			if err := r.produce(); err != nil {
				return utils.WrapErrorf(err, "reclassify document [%d] fail", ids[i])
			}
		}
		return nil
	})
}

type docReclassifier struct {
	// input
	ctx     context.Context
	setting *Setting
	docID   uint
	doc     *docstore.SchemaDocument

	// 分类结果
	reclassified map[uint]struct{}
	bacteria     map[string]struct{}
	strains      map[string]struct{}
}

func (r *docReclassifier) produce() error {
	r.classify()

	if len(r.reclassified) == 0 {
		return nil
	}

	if err := r.applyBacteria(); err != nil {
		return utils.WrapError(err, "apply bacteria merges fail")
	}

	if err := r.applyStrains(); err != nil {
		return utils.WrapError(err, "apply strain merges fail")
	}

	for id := range r.reclassified {
		delete(r.doc.OtherOrganisms, id)
	}
	r.doc.Modified = time.Now().UTC().Format(time.RFC3339)

	if err := docstore.SaveDocument(r.docID, r.doc); err != nil {
		return utils.WrapError(err, "save document fail")
	}

	return nil
}

/*
classify 遍历未归类提及，决定每条是物种、菌株还是原样保留。
同名提及在一篇文献内只排一次合并，避免重复的外部查询。
*/
func (r *docReclassifier) classify() {
	r.reclassified = make(map[uint]struct{})
	r.bacteria = make(map[string]struct{})
	r.strains = make(map[string]struct{})

	for _, mentionID := range utils.SortedKeys(r.doc.OtherOrganisms) {
		name := r.doc.OtherOrganisms[mentionID]

		switch {
		case IsBacterialStrain(name):
			r.reclassified[mentionID] = struct{}{}

			species, strain := Decompose(name)
			if species != "" {
				r.bacteria[species] = struct{}{}
			}
			if strain != "" {
				r.strains[strain] = struct{}{}
			}

		case IsBacteria(name):
			r.reclassified[mentionID] = struct{}{}
			r.bacteria[name] = struct{}{}
		}
	}
}

func (r *docReclassifier) applyBacteria() error {
	for _, name := range sortedNames(r.bacteria) {
		id, err := docstore.InsertOrMergeBacteria(r.setting.LPSN, name)
		if err != nil {
			return utils.WrapErrorf(err, "merge bacteria [%s] fail", name)
		}

		if r.doc.Bacteria == nil {
			r.doc.Bacteria = make(map[uint][]string)
		}
		r.doc.Bacteria[id] = unionName(r.doc.Bacteria[id], name)
	}

	return nil
}

func (r *docReclassifier) applyStrains() error {
	for _, name := range sortedNames(r.strains) {
		id, err := docstore.InsertOrMergeStrain(r.ctx, r.setting.StrainInfo, []string{name})
		if err != nil {
			return utils.WrapErrorf(err, "merge strain [%s] fail", name)
		}

		r.doc.Strains = unionID(r.doc.Strains, id)
	}

	return nil
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unionName(names []string, name string) []string {
	for _, existing := range names {
		if existing == name {
			return names
		}
	}
	return append(names, name)
}

func unionID(ids []uint, id uint) []uint {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
