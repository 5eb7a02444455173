package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/relayhub/errors"
	"github.com/techagentng/relayhub/server/response"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s.defineRoutes(r)

	return r
}

// limitRateForIntake throttles the unauthenticated public submission
// endpoint by client IP.
func limitRateForIntake() gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			respondAndAbort(c, "too many submissions, try again later", http.StatusTooManyRequests, nil,
				errs.New("rate limit exceeded", http.StatusTooManyRequests))
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

func (s *Server) defineRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		response.JSON(c, "ok", http.StatusOK, nil, nil)
	})

	apirouter := router.Group("/api/v1")
	apirouter.POST("/intake", limitRateForIntake(), s.handlePublicIntake())
	apirouter.GET("/ws", s.handleLiveChannel())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.POST("/conversations", s.handleInitiateConversation())
	authorized.GET("/conversations", s.handleListConversations())
	authorized.GET("/conversations/:id/messages", s.handleListConversationMessages())
	authorized.DELETE("/conversations/:id", s.handleDeleteConversation())
	authorized.POST("/messages", s.handleSendMessage())
	authorized.PUT("/messages/:id", s.handleEditMessage())
	authorized.DELETE("/messages/:id", s.handleDeleteMessage())
	authorized.PUT("/messages/:id/read", s.handleMarkMessageRead())
}
