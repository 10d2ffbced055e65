package handler

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/server/common"
	"bacref-backend-controller/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetDocument(ctx *gin.Context) {
	handler := documentHandler{
		ctx: ctx,
	}

	if err := handler.checkParam(); err != nil {
		logging.Default().WithError(err).Errorf("parse req error: %s", err.Error())
		ctx.JSON(http.StatusBadRequest, common.MakeUnknownErrorResp())
		return
	}

	doc, err := handler.produce()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, common.MakeUnknownErrorResp())
		return
	}
	if err != nil {
		logging.Default().WithError(err).Errorf("produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(doc))
}

func GetDocumentSpans(ctx *gin.Context) {
	handler := documentHandler{
		ctx: ctx,
	}

	if err := handler.checkParam(); err != nil {
		logging.Default().WithError(err).Errorf("parse req error: %s", err.Error())
		ctx.JSON(http.StatusBadRequest, common.MakeUnknownErrorResp())
		return
	}

	doc, err := handler.produce()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, common.MakeUnknownErrorResp())
		return
	}
	if err != nil {
		logging.Default().WithError(err).Errorf("produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(documentSpansRespSchema{
		Abstract: doc.Abstract,
		Spans:    doc.EntitySpans,
	}))
}

type documentSpansRespSchema struct {
	Abstract string                  `json:"abstract"`
	Spans    []docstore.EntityMarkup `json:"spans"`
}

type documentHandler struct {
	ctx *gin.Context

	// params
	docID uint
}

func (h *documentHandler) checkParam() error {
	raw := h.ctx.Param("id")
	if len(raw) == 0 {
		return utils.WrapError(common.ErrRequestParamEmpty, "param id is empty")
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return utils.WrapErrorf(err, "parse param id [%s] fail", raw)
	}

	h.docID = uint(id)

	return nil
}

func (h *documentHandler) produce() (*docstore.SchemaDocument, error) {
	doc, err := docstore.DocumentByID(h.docID)
	if err != nil {
		return nil, utils.WrapErrorf(err, "query document [%d] fail", h.docID)
	}

	return doc, nil
}
