//	@title						ipgeo dev backend
//	@version					1.0
//	@description				Local backend for the ipgeo client: login and IP geolocation.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"net/http"

	"ipgeo-client/internal/app"
	"ipgeo-client/internal/config"
	"ipgeo-client/internal/handler"
	"ipgeo-client/internal/repository"
	"ipgeo-client/internal/service"

	_ "ipgeo-client/docs"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	log.Logger = app.NewLogger(config.LogLevel)

	// GeoIP databases
	repo, err := repository.NewGeoIPRepository(config.GeoIPCityDB, config.GeoIPASNDB)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open geoip database")
	}
	defer repo.Close()

	if config.DevUserPassword == "" {
		log.Warn().Msg("DEV_USER_PASSWORD is empty, every login will be rejected")
	}

	// Initialize layers
	geoService := service.NewGeoService(repo)
	authService := service.NewStaticAuthService(config.DevUserEmail, config.DevUserPassword)
	tokens := handler.NewTokenRegistry()

	geoHandler := handler.NewGeoHandler(geoService)
	loginHandler := handler.NewLoginHandler(authService, tokens)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	api.POST("/login", loginHandler.Login)
	api.GET("/geo", handler.RequireToken(tokens), geoHandler.Geo)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Info().Str("address", config.ServerAddress).Msg("dev backend listening")
	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
