package handler

import (
	"bacref-backend-controller/domain/pipeline"
	"bacref-backend-controller/logging"
	"bacref-backend-controller/server/common"
	"bacref-backend-controller/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Preannotate(ctx *gin.Context) {
	handler := preannotateHandler{
		ctx: ctx,
	}

	if err := handler.checkParam(); err != nil {
		logging.Default().WithError(err).Errorf("parse req error: %s", err.Error())
		ctx.JSON(http.StatusBadRequest, common.MakeUnknownErrorResp())
		return
	}

	handler.produce()

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(nil))
}

type preannotateHandler struct {
	ctx *gin.Context

	// params
	taskName string
}

type preannotateReqSchema struct {
	Name string `json:"name"`
}

func (h *preannotateHandler) checkParam() error {
	var req preannotateReqSchema
	if err := h.ctx.Bind(&req); err != nil {
		return utils.WrapError(err, "bind req fail")
	}

	if len(req.Name) == 0 {
		return utils.WrapError(common.ErrRequestParamEmpty, "param name is empty")
	}

	h.taskName = req.Name

	return nil
}

func (h *preannotateHandler) produce() {
	email := ""
	user, exist := h.ctx.Get(common.RequestContextKeyUser)
	if exist {
		userInfo, ok := user.(*common.UserInfo)
		if ok {
			email = userInfo.Email
		} else {
			logging.Default().Errorf("ctx.Get(%s) get [%#v] not (*common.UserInfo)", common.RequestContextKeyUser, user)
		}
	}

	go pipeline.DoPreannotation(h.taskName, email)
}
