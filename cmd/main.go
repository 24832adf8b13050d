package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/application/services"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/infrastructure/adapters"
	"github.com/zullum/comfyui-wan/infrastructure/gin_interface/controllers"
	"github.com/zullum/comfyui-wan/middleware"
)

func main() {
	comfyConfig, err := config.GetComfyConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get comfy config")
	}

	workflowConfig, err := config.GetWorkflowConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get workflow config")
	}

	serverConfig, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get server config")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	contentFetcher := adapters.NewContentFetcher(zeroLogger, comfyConfig.RequestTimeout)

	comfyClient := adapters.NewComfyClient(zeroLogger, contentFetcher, comfyConfig)

	// One client id for both submission and the event stream; the backend
	// only routes per-prompt events to the session that submitted them.
	backendClientID := uuid.NewString()

	var watcher outbound.ExecutionWatcherPort
	if comfyConfig.WsUrl != "" {
		watcher = adapters.NewComfyEventListener(zeroLogger, comfyConfig, backendClientID)
	}

	var publisher outbound.VideoPublisherPort
	var archiver outbound.JobArchiverPort
	if os.Getenv("BUCKET_NAME") != "" || os.Getenv("JOBS_TABLE_NAME") != "" {
		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))

		if os.Getenv("BUCKET_NAME") != "" {
			s3Config, err := config.GetS3Config()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get s3 config")
			}
			publisher = adapters.NewS3VideoPublisher(zeroLogger, s3.New(sess), s3Config)
		}

		if os.Getenv("JOBS_TABLE_NAME") != "" {
			dynamoConfig, err := config.GetDynamoConfig()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get dynamo config")
			}
			archiver = adapters.NewDynamoJobArchiver(zeroLogger, dynamodb.New(sess), dynamoConfig)
		}
	}

	templateStore, err := adapters.NewWorkflowTemplateStore(zeroLogger, workflowConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load workflow templates")
	}

	imageFetcher := adapters.NewImageFetcher(zeroLogger, contentFetcher, comfyConfig)

	nodeLocator := services.NewNodeLocator(zeroLogger, workflowConfig)
	parameterPatcher := services.NewParameterPatcher(zeroLogger, nodeLocator)
	graphConverter := services.NewGraphConverter(zeroLogger)

	jobRegistry := services.NewJobRegistry()

	jobTracker := services.NewJobTracker(zeroLogger, workerPool, comfyClient, watcher, archiver, jobRegistry, comfyConfig, backendClientID)

	videoGenerator := services.NewVideoGenerationService(zeroLogger, templateStore, imageFetcher, parameterPatcher,
		graphConverter, jobTracker, comfyClient, publisher, jobRegistry, workflowConfig.DefaultTemplate)

	generationController := controllers.NewGenerationController(zeroLogger, videoGenerator)
	workflowController := controllers.NewWorkflowController(zeroLogger, templateStore, comfyClient, videoGenerator)

	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if jwksUrl := os.Getenv("JWKS_URL"); jwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(jwksUrl, zeroLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	generationController.RegisterRoutes(router)
	workflowController.RegisterRoutes(router)

	err = router.Run(fmt.Sprintf(":%d", serverConfig.Port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
