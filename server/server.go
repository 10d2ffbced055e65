package server

import (
	"bacref-backend-controller/server/common"
	"bacref-backend-controller/server/handler"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Config struct {
	Host      string
	Port      int
	DebugMode bool
}

type Server struct {
	engine *gin.Engine
	config *Config
}

func New(config *Config) *Server {
	eng := gin.Default()

	eng.Use(common.LogRequest)
	eng.Use(common.SetUserInfo(config.DebugMode))
	eng.Use(cors.Default())

	eng.GET("/test/coffee", coffeeHandler)

	eng.GET("/document/:id", handler.GetDocument)
	eng.GET("/document/:id/spans", handler.GetDocumentSpans)

	// 需要登录的路由
	adminGroup := eng.Group("admin")
	{
		adminGroup.Use(common.RejectNotLogin(config.DebugMode))

		adminGroup.POST("/sync", handler.SyncDocuments)
		adminGroup.POST("/reclassify", handler.ReclassifyOrganisms)
		adminGroup.POST("/preannotate", handler.Preannotate)
		adminGroup.POST("/export", handler.ExportGraph)
	}

	return &Server{
		engine: eng,
		config: config,
	}
}

func coffeeHandler(ctx *gin.Context) {
	ctx.String(http.StatusTeapot, "I'm a teapot")
}

func (s *Server) RunServer() error {
	return s.engine.Run(fmt.Sprintf("%s:%d", s.config.Host, s.config.Port))
}
