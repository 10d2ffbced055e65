package export

import (
	"bacref-backend-controller/repository/filesave"
	"bacref-backend-controller/repository/neograph"
	"bacref-backend-controller/utils"
	"context"
	"fmt"
)

/*
export 把整编后的实体与关系导出为 CSV，经由文件服务交给 neo4j 的
LOAD CSV 导入。导入用 merge 写法，重复导出是幂等的。
*/
func export(setting *Setting, ctx context.Context) (*Result, error) {
	builder := &csvBuilder{
		logger: setting.Logger,
	}

	if err := builder.buildCSV(); err != nil {
		return nil, utils.WrapError(err, "build csv fail")
	}

	entityFileInfo, err := filesave.SaveFile(builder.entityCSV.Bytes())
	if err != nil {
		return nil, utils.WrapError(err, "save entity csv fail")
	}

	relationFileInfo, err := filesave.SaveFile(builder.relationCSV.Bytes())
	if err != nil {
		return nil, utils.WrapError(err, "save relation csv fail")
	}

	entityFileURL := fmt.Sprintf("http://%s/raw/%s", filesave.GetConfig().FullHost(), entityFileInfo.URL)
	relationFileURL := fmt.Sprintf("http://%s/raw/%s", filesave.GetConfig().FullHost(), relationFileInfo.URL)

	entityCypher := `
		load csv
		with headers
		from $url
		as line
		merge (e:Entity{
			label:toString(line.label),
			ref:toInteger(line.id)
		})
		set e.name = toString(line.name)
	`
	relationCypher := `
		load csv
		with headers
		from $url
		as line
		match (h:Entity{
			label:toString(line.head_label),
			ref:toInteger(line.head)
		}),(t:Entity{
			label:toString(line.tail_label),
			ref:toInteger(line.tail)
		})
		merge (h)-[r:Relation{
			name:toString(line.rel)
		}]->(t)
	`

	_, err = neograph.Execute(entityCypher, map[string]interface{}{
		"url": entityFileURL,
	})
	if err != nil {
		return nil, utils.WrapError(err, "load entity csv to neo4j fail")
	}

	_, err = neograph.Execute(relationCypher, map[string]interface{}{
		"url": relationFileURL,
	})
	if err != nil {
		return nil, utils.WrapError(err, "load relation csv to neo4j fail")
	}

	setting.Logger.Infof("exported [%d] entities and [%d] relations", len(builder.entities), len(builder.triples))

	return &Result{
		EntityCount:   len(builder.entities),
		RelationCount: len(builder.triples),
	}, nil
}
