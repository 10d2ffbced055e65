package common

import (
	"bacref-backend-controller/logging"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const RequestContextKeyUser = "login_user"

type UserInfo struct {
	Name  string
	Email string
}

// LogRequest 记录每个请求的方法、路径、状态码与耗时。
func LogRequest(ctx *gin.Context) {
	start := time.Now()

	ctx.Next()

	logging.Default().Infof(
		"%s %s -> %d (%s)",
		ctx.Request.Method, ctx.Request.URL.Path, ctx.Writer.Status(), time.Since(start),
	)
}

/*
SetUserInfo 从请求头解析登录态写入请求上下文。
debugMode 为 true 时所有请求视为管理员登录。
*/
func SetUserInfo(debugMode bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if debugMode {
			ctx.Set(RequestContextKeyUser, &UserInfo{Name: "debug"})
			ctx.Next()
			return
		}

		if name := ctx.GetHeader("X-User-Name"); len(name) != 0 {
			ctx.Set(RequestContextKeyUser, &UserInfo{
				Name:  name,
				Email: ctx.GetHeader("X-User-Email"),
			})
		}

		ctx.Next()
	}
}

// RejectNotLogin 拦截未登录的请求。
func RejectNotLogin(debugMode bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if debugMode {
			ctx.Next()
			return
		}

		if _, ok := ctx.Get(RequestContextKeyUser); !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, &RespSchema{
				Code: 2,
				Msg:  "not login",
			})
			return
		}

		ctx.Next()
	}
}
