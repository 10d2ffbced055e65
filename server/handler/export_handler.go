package handler

import (
	"bacref-backend-controller/domain/export"
	"bacref-backend-controller/logging"
	"bacref-backend-controller/server/common"
	"bacref-backend-controller/utils"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ExportGraph(ctx *gin.Context) {
	handler := exportGraphHandler{}

	result, err := handler.produce()
	if err != nil {
		logging.Default().WithError(err).Errorf("produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(exportGraphRespSchema{
		EntityCount:   result.EntityCount,
		RelationCount: result.RelationCount,
	}))
}

type exportGraphHandler struct{}

type exportGraphRespSchema struct {
	EntityCount   int `json:"entity_count"`
	RelationCount int `json:"relation_count"`
}

func (h *exportGraphHandler) produce() (*export.Result, error) {
	result, err := export.Export(context.TODO())
	if err != nil {
		return nil, utils.WrapError(err, "export graph fail")
	}

	return result, nil
}
