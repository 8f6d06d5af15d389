// bizradar API 서버 엔트리포인트
//
// 기동 순서:
//  1. 환경변수 로드 (.env) 및 설정 파싱
//  2. PostgreSQL 연결 + 테이블 부트스트랩
//  3. 외부 클라이언트 생성 (research, trends, financial, genai, slack)
//  4. 오케스트레이션 엔진 + 2-tier 캐시 + 서비스 조립
//  5. Scheduler 백그라운드 기동 (Monitor 재체크 루프)
//  6. Gin 라우터 등록 후 서버 시작

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/bizradar/backend/internal/cache"
	"github.com/bizradar/backend/internal/client"
	"github.com/bizradar/backend/internal/config"
	"github.com/bizradar/backend/internal/db"
	"github.com/bizradar/backend/internal/detector"
	"github.com/bizradar/backend/internal/dispatcher"
	"github.com/bizradar/backend/internal/handler"
	"github.com/bizradar/backend/internal/orchestrator"
	"github.com/bizradar/backend/internal/scorer"
	"github.com/bizradar/backend/internal/service"
	"github.com/bizradar/backend/internal/template"
)

// adaptive weight 캐시 TTL (피드백 집계 재조회 주기)
const weightCacheTTL = 10 * time.Minute

func main() {
	// .env 파일이 없어도 무시하고 OS 환경변수로 진행
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using OS environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	// PostgreSQL 연결 및 스키마 부트스트랩
	database, err := db.NewPostgres(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer database.Pool.Close()
	if err := database.EnsureSchemas(ctx); err != nil {
		log.Fatalf("Failed to ensure schemas: %v", err)
	}

	// 외부 클라이언트
	researchClient := client.NewResearchClient(cfg.Research)
	trendsClient := client.NewTrendsClient(cfg.Trends)
	financialClient := client.NewFinancialClient(cfg.Financial)
	slackClient := client.NewSlackClient(cfg.Slack)

	genaiClient, err := client.NewGenAIClient(cfg.GenAI)
	if err != nil {
		// genai 없이도 기동함: framework scoring과 semantic 캐시만 비활성화
		log.Printf("GenAI client unavailable, framework scoring disabled: %v", err)
		genaiClient = nil
	}

	// 오케스트레이션 엔진
	gatherTasks := []orchestrator.Task{
		orchestrator.NewResearchTask(researchClient),
		orchestrator.NewTrendsTask(trendsClient),
		orchestrator.NewFinancialTask(financialClient),
	}
	var scoringTask orchestrator.Task
	if genaiClient != nil {
		scoringTask = orchestrator.NewFrameworkTask(genaiClient)
	}
	engine := orchestrator.New(orchestrator.NewExecutor(), gatherTasks, scoringTask, cfg.Orchestrator.TaskTimeout)

	// 2-tier 캐시 (genai 불가 시 exact tier만 동작)
	var embedder cache.Embedder
	var index cache.SemanticIndex
	if genaiClient != nil {
		embedder = genaiClient
		index = database
	}
	store := cache.NewStore(embedder, index, cfg.Cache.DefaultTTL, cfg.Cache.VolatileTTL, cfg.Cache.MinSimilarity)

	// 서비스 조립
	orchestrationService := service.NewOrchestrationService(engine, store, database)
	monitorService := service.NewMonitorService(database)
	alertService := service.NewAlertService(database)

	changeDetector := detector.New(detector.DefaultConfig())
	alertScorer := scorer.New(scorer.NewFeedbackWeights(database, weightCacheTTL))
	alertDispatcher := dispatcher.New(database, database,
		dispatcher.NewSlackChannel(slackClient),
		dispatcher.NewWebhookChannel(template.DefaultBody),
		dispatcher.NewEmailChannel(cfg.Email),
	)

	// Scheduler 백그라운드 기동
	scheduler := service.NewScheduler(database, orchestrationService, changeDetector, alertScorer, alertDispatcher, cfg.Scheduler, cfg.Cache.RetentionDays)
	go scheduler.Start(ctx)

	// 라우터 등록
	router := gin.Default()
	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)

	orchestrationHandler := handler.NewOrchestrationHandler(orchestrationService)
	router.POST("/api/orchestrations", orchestrationHandler.Run)

	monitorHandler := handler.NewMonitorHandler(monitorService)
	router.POST("/api/monitors", monitorHandler.Create)
	router.GET("/api/monitors", monitorHandler.List)
	router.GET("/api/monitors/:id", monitorHandler.Get)
	router.PATCH("/api/monitors/:id", monitorHandler.Update)
	router.DELETE("/api/monitors/:id", monitorHandler.Delete)
	router.POST("/api/monitors/:id/pause", monitorHandler.Pause)
	router.POST("/api/monitors/:id/resume", monitorHandler.Resume)

	alertHandler := handler.NewAlertHandler(alertService)
	router.GET("/api/alerts", alertHandler.List)
	router.POST("/api/alerts/:id/read", alertHandler.MarkRead)
	router.POST("/api/alerts/:id/feedback", alertHandler.Feedback)

	channelHandler := handler.NewChannelHandler(service.NewChannelService(database))
	router.GET("/api/channels", channelHandler.List)
	router.PUT("/api/channels", channelHandler.Upsert)

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
