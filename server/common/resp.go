package common

import "errors"

var ErrRequestParamEmpty = errors.New("request param empty")

type RespSchema struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func MakeSuccessResp(data interface{}) *RespSchema {
	return &RespSchema{
		Code: 0,
		Msg:  "success",
		Data: data,
	}
}

func MakeUnknownErrorResp() *RespSchema {
	return &RespSchema{
		Code: 1,
		Msg:  "unknown error",
	}
}
