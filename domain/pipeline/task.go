package pipeline

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/utils"
	"time"
)

func Send(info SendSchema) error {
	return globalMQManager.SendObjectByJSON(QueuePreannotateInput, info)
}

type annotateTarget struct {
	docID    uint
	pubmedID string
}

/*
DoPreannotation 对所有未标注的文献发起一轮预标注。

未标注 = 没有实体标注，且从未经过复核（reviewed 为空或等于 created）。
每篇文献一条任务项，标注结果由输出队列的消费者落库，本函数阻塞直到
全部任务项离开 DOING 状态，然后发送通知邮件。
*/
func DoPreannotation(name string, notifyEmail string) {
	db := docstore.DatabaseRaw()

	targets, err := collectTargets()
	if err != nil {
		logging.Default().WithError(err).Errorf("collect annotate targets fail: %s", err.Error())
		return
	}

	if len(targets) == 0 {
		logging.Default().Info("no documents to annotate")
		return
	}

	task := docstore.CurationTask{
		Name:  name,
		Email: notifyEmail,
	}
	db.Create(&task)

	// 发送标注信号
	for _, target := range targets {
		item := docstore.CurationTaskItem{
			Status:         docstore.TaskStatusDoing,
			DocumentID:     target.docID,
			CurationTaskID: task.ID,
		}
		err := db.Create(&item).Error
		if err != nil {
			logging.Default().WithError(err).Errorf("create task{docID=%d} fail: %s", target.docID, err.Error())
		}

		err = Send(SendSchema{
			DocID:    target.docID,
			TaskID:   task.ID,
			PubmedID: target.pubmedID,
		})

		if err != nil {
			logging.Default().WithError(err).Errorf("send doc{id=%d} fail: %s", target.docID, err.Error())
			item.Status = docstore.TaskStatusFail
			db.Save(&item)
		}
	}

	// 监听标注结果
	monitorOnCurationTask(task.ID)

	logging.Default().Infof("Task{ID=%d, Name=%#v, Email=%#v} Success", task.ID, task.Name, task.Email)
}

func collectTargets() ([]annotateTarget, error) {
	var targets []annotateTarget

	err := docstore.EachDocument(batchSize, func(ids []uint, docs []*docstore.SchemaDocument) error {
		for i, doc := range docs {
			if len(doc.EntitySpans) != 0 {
				continue
			}
			if len(doc.Reviewed) != 0 && doc.Reviewed != doc.Created {
				continue
			}

			targets = append(targets, annotateTarget{
				docID:    ids[i],
				pubmedID: doc.PubmedID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, utils.WrapError(err, "scan documents fail")
	}

	return targets, nil
}

func monitorOnCurationTask(taskID uint) {
	tick := time.Tick(1 * time.Minute)

	for {
		<-tick

		var count int64

		err := docstore.DatabaseRaw().Model(&docstore.CurationTaskItem{}).Where(docstore.CurationTaskItem{
			CurationTaskID: taskID,
			Status:         docstore.TaskStatusDoing,
		}).Count(&count).Error

		if err != nil {
			logging.Default().WithError(err).Errorf("check curation-task[%d] fail: %s", taskID, err.Error())
			continue
		}

		if count == 0 {
			logging.Default().Infof("check curation-task[%d]: finished!", taskID)

			break
		}

		logging.Default().Infof("check curation-task[%d]: not finish yet", taskID)
	}

	for i := 0; i < 3; i++ {
		err := sendCurationResult(taskID)
		if err == nil {
			break
		}

		logging.Default().WithError(err).Errorf("send curation result fail: %s", err.Error())
	}
}

func sendCurationResult(taskID uint) error {
	var task docstore.CurationTask
	err := docstore.DatabaseRaw().Find(&task, taskID).Error
	if err != nil {
		return utils.WrapErrorf(err, "select task[%d] fail", taskID)
	}

	if len(task.Email) == 0 {
		logging.Default().Warnf("task[%d] has no notifying email", taskID)
		return nil
	}

	var done, failed int64

	err = docstore.DatabaseRaw().Model(&docstore.CurationTaskItem{}).Where(docstore.CurationTaskItem{
		CurationTaskID: taskID,
		Status:         docstore.TaskStatusDone,
	}).Count(&done).Error
	if err != nil {
		return utils.WrapErrorf(err, "count done items of task[%d] fail", taskID)
	}

	err = docstore.DatabaseRaw().Model(&docstore.CurationTaskItem{}).Where(docstore.CurationTaskItem{
		CurationTaskID: taskID,
		Status:         docstore.TaskStatusFail,
	}).Count(&failed).Error
	if err != nil {
		return utils.WrapErrorf(err, "count failed items of task[%d] fail", taskID)
	}

	err = sendCurationResultEmail(task.Email, task.Name, done, failed)
	if err != nil {
		return utils.WrapErrorf(err, "send email fail")
	}

	return nil
}
