package pipeline

import (
	"bacref-backend-controller/domain/annotate"
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/utils"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/streadway/amqp"
)

var errEmptyBody = errors.New("message body is empty")

/*
buildWork 构造输入队列的消费回调：取文献、补摘要、跑标注，把结果发回
输出队列。worker 不直接写库，落库统一由输出队列的消费者完成。
*/
func buildWork(config *Config) func(msg *amqp.Delivery) error {
	return func(msg *amqp.Delivery) error {
		if len(msg.Body) == 0 {
			return utils.WrapError(errEmptyBody, "msg.Body is empty")
		}

		var data SendSchema
		if err := json.Unmarshal(msg.Body, &data); err != nil {
			return utils.WrapErrorf(err, "json unmarshal fail with[%#v]", msg.Body)
		}

		result, err := work(config, &data)
		if err != nil {
			sendErr := globalMQManager.SendObjectByJSON(QueuePreannotateOutput, ReceiveSchema{
				DocID:  data.DocID,
				TaskID: utils.UintToPtr(data.TaskID),
				Failed: true,
			})
			if sendErr != nil {
				return utils.WrapError(sendErr, "report failed doc fail")
			}
			return utils.WrapErrorf(err, "annotate document [%d] fail", data.DocID)
		}

		return globalMQManager.SendObjectByJSON(QueuePreannotateOutput, *result)
	}
}

func work(config *Config, data *SendSchema) (*ReceiveSchema, error) {
	doc, err := docstore.DocumentByID(data.DocID)
	if err != nil {
		return nil, utils.WrapError(err, "load document fail")
	}

	if len(doc.Abstract) == 0 && len(data.PubmedID) != 0 {
		abstracts, err := config.NCBI.Abstracts(context.Background(), []string{data.PubmedID})
		if err != nil {
			return nil, utils.WrapError(err, "fetch abstract fail")
		}
		doc.Abstract = abstracts[data.PubmedID]
	}

	if _, err := annotate.Annotate(doc); err != nil {
		return nil, utils.WrapError(err, "annotate fail")
	}

	return &ReceiveSchema{
		DocID:    data.DocID,
		TaskID:   utils.UintToPtr(data.TaskID),
		Abstract: doc.Abstract,
		Spans:    doc.EntitySpans,
	}, nil
}

/*
buildReceive 构造输出队列的消费回调：把标注结果写回文献库并更新任务项。
*/
func buildReceive() func(msg *amqp.Delivery) error {
	return func(msg *amqp.Delivery) error {
		if len(msg.Body) == 0 {
			return utils.WrapError(errEmptyBody, "msg.Body is empty")
		}

		var data ReceiveSchema
		if err := json.Unmarshal(msg.Body, &data); err != nil {
			return utils.WrapErrorf(err, "json unmarshal fail with[%#v]", msg.Body)
		}

		if data.Failed {
			return updateTaskItem(data.TaskID, data.DocID, docstore.TaskStatusFail)
		}

		if err := saveReceivedData(&data); err != nil {
			if updateErr := updateTaskItem(data.TaskID, data.DocID, docstore.TaskStatusFail); updateErr != nil {
				return utils.WrapError(updateErr, "mark task item failed fail")
			}
			return utils.WrapError(err, "save data to db fail")
		}

		return updateTaskItem(data.TaskID, data.DocID, docstore.TaskStatusDone)
	}
}

func saveReceivedData(data *ReceiveSchema) error {
	doc, err := docstore.DocumentByID(data.DocID)
	if err != nil {
		return utils.WrapError(err, "load document fail")
	}

	if len(data.Abstract) != 0 {
		doc.Abstract = data.Abstract
	}

	// 与已有标注做并集，重放不会累积
	spanSet := make(map[docstore.EntityMarkup]struct{}, len(doc.EntitySpans)+len(data.Spans))
	for _, span := range doc.EntitySpans {
		spanSet[span] = struct{}{}
	}
	for _, span := range data.Spans {
		spanSet[span] = struct{}{}
	}

	merged := make([]docstore.EntityMarkup, 0, len(spanSet))
	for span := range spanSet {
		merged = append(merged, span)
	}
	docstore.SortEntityMarkups(merged)
	doc.EntitySpans = merged

	now := time.Now().UTC().Format(time.RFC3339)
	doc.Modified = now
	doc.Reviewed = now

	return docstore.SaveDocument(data.DocID, doc)
}

func updateTaskItem(taskID *uint, docID uint, status uint) error {
	if taskID == nil {
		return nil
	}

	var item docstore.CurationTaskItem
	err := docstore.DatabaseRaw().Where(&docstore.CurationTaskItem{
		CurationTaskID: *taskID,
		DocumentID:     docID,
	}).First(&item).Error
	if err != nil {
		return utils.WrapError(err, "update task fail")
	}

	item.Status = status
	return docstore.DatabaseRaw().Save(&item).Error
}
