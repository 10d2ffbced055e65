package pipeline

import (
	"bacref-backend-controller/domain/reclassify"
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/brenda"
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/utils"
	"context"
	"sort"
	"strings"
	"time"
)

/*
Sync 把源库中的文献及其关联实体同步进文献库。

第一遍补齐缺失的文献记录（含 NCBI 编号扩充），第二遍为每篇文献重建
实体桶与关系三元组。酶与关系由源库完全决定，重跑会重建；细菌与菌株
走合并优先的入库路径，重跑不会产生重复实体。
*/
func Sync(ctx context.Context) error {
	return runSync(&globalConfig, ctx)
}

func runSync(config *Config, ctx context.Context) error {
	total, err := brenda.CountReferences()
	if err != nil {
		return utils.WrapError(err, "count references fail")
	}
	logging.Default().Infof("syncing [%d] references from source database", total)

	err = brenda.EachReference(64, func(references []brenda.Reference) error {
		for i := range references {
			has, err := docstore.HasDocument(references[i].ReferenceID)
			if err != nil {
				return err
			}
			if has {
				continue
			}

			if err := addDocument(config, ctx, &references[i]); err != nil {
				return utils.WrapErrorf(err, "add document [%d] fail", references[i].ReferenceID)
			}
		}
		return nil
	})
	if err != nil {
		return utils.WrapError(err, "sync references fail")
	}

	err = docstore.EachDocument(64, func(ids []uint, docs []*docstore.SchemaDocument) error {
		for i := range docs {
			s := docSyncer{
				config: config,
				ctx:    ctx,
				docID:  ids[i],
				doc:    docs[i],
			}

			if err := s.produce(); err != nil {
				return utils.WrapErrorf(err, "sync relations of document [%d] fail", ids[i])
			}
		}
		return nil
	})
	if err != nil {
		return utils.WrapError(err, "sync relations fail")
	}

	return nil
}

/*
addDocument 把一条文献引用写入文献库，先向 NCBI 补充 pmc / doi 编号与
开放获取状态。NCBI 查不到不阻塞入库。
*/
func addDocument(config *Config, ctx context.Context, reference *brenda.Reference) error {
	now := time.Now().UTC().Format(time.RFC3339)

	doc := docstore.SchemaDocument{
		Authors:  reference.Authors,
		Title:    reference.Title,
		Journal:  reference.Journal,
		Volume:   reference.Volume,
		Pages:    reference.Pages,
		Year:     reference.Year,
		PubmedID: reference.PubmedID,
		Path:     reference.Path,

		Created:  now,
		Reviewed: now,

		Enzymes:        map[uint][]string{},
		Bacteria:       map[uint][]string{},
		Strains:        []uint{},
		OtherOrganisms: map[uint]string{},
	}

	if len(reference.PubmedID) != 0 {
		articleIDs, err := config.NCBI.ArticleIDs(ctx, reference.PubmedID)
		if err != nil {
			return utils.WrapError(err, "fetch article ids fail")
		}

		if pmcID, ok := articleIDs["pmc"]; ok {
			pmcID = strings.TrimPrefix(pmcID, "PMC")
			doc.PMCID = &pmcID

			open, err := config.NCBI.IsPMCOpen(ctx, pmcID)
			if err != nil {
				return utils.WrapError(err, "check pmc open fail")
			}
			doc.PMCOpen = &open
		}

		if doi, ok := articleIDs["doi"]; ok {
			doc.DOI = &doi
		}
	}

	return docstore.SaveDocument(reference.ReferenceID, &doc)
}

type docSyncer struct {
	// input
	config *Config
	ctx    context.Context
	docID  uint
	doc    *docstore.SchemaDocument

	// 去重后的三元组
	hasEnzyme  map[docstore.RelationTriple]struct{}
	hasSpecies map[docstore.RelationTriple]struct{}
}

func (s *docSyncer) produce() error {
	relations, err := brenda.EnzymeRelations(s.docID)
	if err != nil {
		return utils.WrapError(err, "query enzyme relations fail")
	}

	if len(relations) == 0 {
		return nil
	}

	s.hasEnzyme = make(map[docstore.RelationTriple]struct{})
	s.hasSpecies = make(map[docstore.RelationTriple]struct{})

	// 酶、关系与未归类桶由源库完全决定
	s.doc.Enzymes = map[uint][]string{}
	s.doc.OtherOrganisms = map[uint]string{}

	for i := range relations {
		if err := s.produceRelation(&relations[i]); err != nil {
			return err
		}
	}

	s.doc.Relations = docstore.SchemaRelations{
		HasEnzyme:  sortedTriples(s.hasEnzyme),
		HasSpecies: sortedTriples(s.hasSpecies),
	}
	s.doc.Modified = time.Now().UTC().Format(time.RFC3339)

	return docstore.SaveDocument(s.docID, s.doc)
}

func (s *docSyncer) produceRelation(relation *brenda.EnzymeRelation) error {
	if err := s.produceEnzyme(&relation.EC); err != nil {
		return utils.WrapErrorf(err, "produce enzyme [%d] fail", relation.EC.ECClassID)
	}

	if err := s.produceOrganism(&relation.Organism); err != nil {
		return utils.WrapErrorf(err, "produce organism [%d] fail", relation.Organism.OrganismID)
	}

	if relation.Strain != nil {
		strainID, err := docstore.InsertOrMergeStrain(s.ctx, s.config.StrainInfo, []string{relation.Strain.Name})
		if err != nil {
			return utils.WrapErrorf(err, "merge strain [%s] fail", relation.Strain.Name)
		}

		s.doc.Strains = unionID(s.doc.Strains, strainID)
		s.hasSpecies[docstore.RelationTriple{Subject: strainID, Object: relation.Organism.OrganismID}] = struct{}{}

		if !relation.StrainNoActivity {
			s.hasEnzyme[docstore.RelationTriple{Subject: strainID, Object: relation.EC.ECClassID}] = struct{}{}
		}

		return nil
	}

	if !relation.OrganismNoActivity {
		s.hasEnzyme[docstore.RelationTriple{Subject: relation.Organism.OrganismID, Object: relation.EC.ECClassID}] = struct{}{}
	}

	return nil
}

/*
produceEnzyme 写入酶实体（别名取全量），文献上只记在本篇中被引证的别名。
*/
func (s *docSyncer) produceEnzyme(ec *brenda.ECClass) error {
	synonymRefs, err := brenda.ECSynonyms(ec.ECClassID)
	if err != nil {
		return err
	}

	all := make(map[string]struct{}, len(synonymRefs))
	attested := make(map[string]struct{})
	for _, ref := range synonymRefs {
		all[ref.Synonym] = struct{}{}
		if ref.ReferenceID == s.docID {
			attested[ref.Synonym] = struct{}{}
		}
	}

	err = docstore.UpsertEnzyme(ec.ECClassID, &docstore.SchemaEnzyme{
		ECClass:         ec.ECClass,
		RecommendedName: ec.RecommendedName,
		Synonyms:        sortedSet(all),
	})
	if err != nil {
		return err
	}

	s.doc.Enzymes[ec.ECClassID] = sortedSet(attested)

	return nil
}

func (s *docSyncer) produceOrganism(organism *brenda.Organism) error {
	if !reclassify.IsBacteria(organism.Organism) {
		s.doc.OtherOrganisms[organism.OrganismID] = organism.Organism
		return nil
	}

	schema := docstore.SchemaBacteria{
		Organism: organism.Organism,
		Synonyms: sortedSet(s.config.LPSN.SynonymsOfName(organism.Organism)),
	}
	if lpsnID, ok := s.config.LPSN.IDOf(organism.Organism); ok {
		schema.LPSNID = &lpsnID
	}

	if err := docstore.UpsertBacteria(organism.OrganismID, &schema); err != nil {
		return err
	}

	if s.doc.Bacteria == nil {
		s.doc.Bacteria = map[uint][]string{}
	}
	s.doc.Bacteria[organism.OrganismID] = unionName(s.doc.Bacteria[organism.OrganismID], organism.Organism)

	return nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func sortedTriples(set map[docstore.RelationTriple]struct{}) []docstore.RelationTriple {
	out := make([]docstore.RelationTriple, 0, len(set))
	for triple := range set {
		out = append(out, triple)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Object < out[j].Object
	})

	return out
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
