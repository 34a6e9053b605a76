package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/dvega-dev/community-events-api/docs"
	v1 "github.com/dvega-dev/community-events-api/internal/api/handler/v1"
	"github.com/dvega-dev/community-events-api/internal/api/middleware"
	"github.com/dvega-dev/community-events-api/internal/config"
	"github.com/dvega-dev/community-events-api/internal/repository"
	"github.com/dvega-dev/community-events-api/internal/repository/dao"
	"github.com/dvega-dev/community-events-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	// One watcher shared by every handler that mutates events, so a single
	// websocket subscription sees creates, enrollment changes and deletes.
	watcher := service.NewEventWatcher()

	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	commentRepo := repository.NewCommentRepository(dao.NewCommentDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))

	uSvc := service.NewUserService(userRepo)
	querySvc := service.NewEventQueryService(eventRepo, watcher)

	authHandler := v1.NewAuthHandler(s.Config.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(uSvc)
	eventHandler := v1.NewEventHandler(
		service.NewEventService(eventRepo, watcher),
		service.NewEnrollmentService(eventRepo, watcher),
		querySvc,
		uSvc,
	)
	commentHandler := v1.NewCommentHandler(service.NewRatingService(commentRepo, eventRepo), uSvc)
	watchHandler := v1.NewWatchHandler(querySvc, uSvc)

	s.MountHandlers(authHandler, userHandler, eventHandler, commentHandler, watchHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	commentHandler *v1.CommentHandler,
	watchHandler *v1.WatchHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	users := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	events := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		events.GET("/events", eventHandler.HandleListUpcoming)
		events.GET("/events/past", eventHandler.HandleListPast)
		events.GET("/events/mine", eventHandler.HandleListMine)
		events.GET("/events/categories", eventHandler.HandleGetCategories)
		events.GET("/events/watch", watchHandler.HandleWatchEvents)
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		events.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		events.POST("/events/:eventID/join", eventHandler.HandleJoinEvent)
		events.POST("/events/:eventID/leave", eventHandler.HandleLeaveEvent)
		events.GET("/events/:eventID/comments", commentHandler.HandleListComments)
		events.POST("/events/:eventID/comments", commentHandler.HandleCreateComment)
		events.DELETE("/events/:eventID/comments/:commentID", commentHandler.HandleDeleteComment)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Community Events API"
	docs.SwaggerInfo.Description = "Event enrollment, ratings and live event feeds."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
