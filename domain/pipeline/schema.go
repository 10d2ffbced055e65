package pipeline

import (
	"bacref-backend-controller/repository/docstore"
)

type SendSchema struct {
	DocID    uint   `json:"doc_id"`
	TaskID   uint   `json:"task_id"`
	PubmedID string `json:"pubmed_id"`
}

type ReceiveSchema struct {
	DocID    uint                    `json:"doc_id"`
	TaskID   *uint                   `json:"task_id"`
	Abstract string                  `json:"abstract"`
	Spans    []docstore.EntityMarkup `json:"spans"`
	Failed   bool                    `json:"failed"`
}
