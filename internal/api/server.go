package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/arenahq/competition-api/docs"
	v1 "github.com/arenahq/competition-api/internal/api/handler/v1"
	"github.com/arenahq/competition-api/internal/api/middleware"
	"github.com/arenahq/competition-api/internal/config"
	"github.com/arenahq/competition-api/internal/metrics"
	"github.com/arenahq/competition-api/internal/repository"
	"github.com/arenahq/competition-api/internal/repository/dao"
	"github.com/arenahq/competition-api/internal/service"
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

	notificationSvc := initNotificationService(db)
	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	competitionHandler := s.initCompetitionHandler(db, notificationSvc)
	teamHandler := s.initTeamHandler(db, notificationSvc)
	notificationHandler := v1.NewNotificationHandler(notificationSvc)
	s.MountHandlers(authHandler, userHandler, competitionHandler, teamHandler, notificationHandler)

	return s
}

func initNotificationService(db *gorm.DB) *service.NotificationService {
	notificationDAO := dao.NewNotificationDAO(db)
	repo := repository.NewNotificationRepository(notificationDAO)

	return service.NewNotificationService(repo)
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initCompetitionHandler(db *gorm.DB, sink service.NotificationSink) *v1.CompetitionHandler {
	competitionDAO := dao.NewCompetitionDAO(db)
	repo := repository.NewCompetitionRepository(competitionDAO)
	svc := service.NewCompetitionService(repo, sink)
	handler := v1.NewCompetitionHandler(svc)

	return handler
}

func (s *Server) initTeamHandler(db *gorm.DB, sink service.NotificationSink) *v1.TeamHandler {
	teamDAO := dao.NewTeamDAO(db)
	repo := repository.NewTeamRepository(teamDAO)
	compRepo := repository.NewCompetitionRepository(dao.NewCompetitionDAO(db))
	svc := service.NewTeamService(repo, compRepo, sink)
	handler := v1.NewTeamHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(metrics.GinMiddleware)
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	competitionHandler *v1.CompetitionHandler,
	teamHandler *v1.TeamHandler,
	notificationHandler *v1.NotificationHandler,
) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.POST("/auth/federated", authHandler.HandleFederatedLogin)

		public.GET("/competitions", competitionHandler.HandleGetCompetitions)
		public.GET("/competitions/:competitionID", competitionHandler.HandleGetCompetition)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.POST("/auth/refresh", authHandler.HandleRefresh)

		authenticated.GET("/users/:userID", userHandler.HandleGetUser)
		authenticated.PATCH("/users/:userID/role", userHandler.HandleUpdateUserRole)
		authenticated.PATCH("/users/:userID/status", userHandler.HandleUpdateUserStatus)
		authenticated.DELETE("/users/:userID", userHandler.HandleDeleteUser)

		authenticated.POST("/competitions", competitionHandler.HandleCreateCompetition)
		authenticated.PUT("/competitions/:competitionID", competitionHandler.HandleUpdateCompetition)
		authenticated.PATCH("/competitions/:competitionID/status", competitionHandler.HandleUpdateCompetitionStatus)
		authenticated.DELETE("/competitions/:competitionID", competitionHandler.HandleDeleteCompetition)

		authenticated.POST("/competitions/:competitionID/teams", teamHandler.HandleRegisterTeam)
		authenticated.GET("/competitions/:competitionID/teams", teamHandler.HandleGetTeams)
		authenticated.POST("/competitions/:competitionID/teams/join", teamHandler.HandleJoinTeam)
		authenticated.GET("/competitions/:competitionID/teams/mine", teamHandler.HandleGetMyTeam)
		authenticated.GET("/teams/:teamID", teamHandler.HandleGetTeam)
		authenticated.POST("/teams/:teamID/approve", teamHandler.HandleApproveTeam)
		authenticated.POST("/teams/:teamID/reject", teamHandler.HandleRejectTeam)
		authenticated.DELETE("/teams/:teamID/members/:email", teamHandler.HandleRemoveMember)
		authenticated.DELETE("/teams/:teamID", teamHandler.HandleDeleteTeam)

		authenticated.GET("/notifications", notificationHandler.HandleGetNotifications)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", metrics.Handler())

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Competition API"
	docs.SwaggerInfo.Description = "Competition and team registration lifecycle API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
