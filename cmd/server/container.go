package main

import (
	"context"
	"log"

	"github.com/Abraxas-365/craftable/eventx"
	"github.com/Abraxas-365/craftable/eventx/providers/eventxmemory"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/pelangilabs/moltbot/channels"
	"github.com/pelangilabs/moltbot/channels/channeladapters/console"
	whatsapp "github.com/pelangilabs/moltbot/channels/channeladapters/whatsapp"
	"github.com/pelangilabs/moltbot/channels/channelmanager"
	"github.com/pelangilabs/moltbot/classifier/classifierengines"
	"github.com/pelangilabs/moltbot/conversation"
	"github.com/pelangilabs/moltbot/conversation/convapi"
	"github.com/pelangilabs/moltbot/conversation/convinfra"
	"github.com/pelangilabs/moltbot/conversation/convmanager"
	"github.com/pelangilabs/moltbot/conversation/msgprocessor"
	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/engine/actioninvoker"
	"github.com/pelangilabs/moltbot/engine/engineapi"
	"github.com/pelangilabs/moltbot/engine/engineinfra"
	"github.com/pelangilabs/moltbot/engine/enginesrv"
	"github.com/pelangilabs/moltbot/engine/graphexec"
	"github.com/pelangilabs/moltbot/engine/stepexec"
	"github.com/pelangilabs/moltbot/iam/auth"
	"github.com/pelangilabs/moltbot/iam/auth/authinfra"
	"github.com/pelangilabs/moltbot/pkg/config"
	"github.com/pelangilabs/moltbot/pkg/kernel"
	"github.com/pelangilabs/moltbot/report"
	"github.com/pelangilabs/moltbot/report/pmsclient"
	"github.com/pelangilabs/moltbot/report/reportapi"
	"github.com/pelangilabs/moltbot/report/reportsrv"
	reportscheduler "github.com/pelangilabs/moltbot/report/scheduler"
	"github.com/pelangilabs/moltbot/testapi"
)

// Container contiene todas las dependencias de la aplicación
type Container struct {
	// =================================================================
	// CONFIGURATION & INFRASTRUCTURE
	// =================================================================
	Config      *config.Config
	DB          *sqlx.DB
	RedisClient *redis.Client

	// =================================================================
	// EVENT BUS ⚡
	// =================================================================
	EventBus eventx.EventBus

	// =================================================================
	// AUTH
	// =================================================================
	PasswordService auth.PasswordService
	TokenService    auth.TokenService
	AuthService     *auth.Service
	AuthHandlers    *auth.AuthHandlers
	AuthRoutes      *auth.AuthRoutes
	AuthMiddleware  *auth.AuthMiddleware

	// =================================================================
	// CHANNELS
	// =================================================================
	ChannelManager  *channelmanager.Manager
	WhatsAppAdapter *whatsapp.Adapter
	ConsoleAdapter  *console.Adapter
	Transport       engine.Transport
	StaffAlerter    *channelmanager.StaffAlerter
	StaffChannel    channels.ChannelType

	WhatsAppWebhookHandler *whatsapp.WebhookHandler
	WhatsAppWebhookRoutes  *whatsapp.WebhookRoutes

	// =================================================================
	// CLASSIFIER 🧠
	// =================================================================
	Classifier engine.Classifier

	// =================================================================
	// ENGINE ⚙️
	// =================================================================
	WorkflowRepo   engine.WorkflowRepository
	ActionInvoker  engine.ActionInvoker
	FlatExecutor   engine.StepExecutor
	GraphExecutor  engine.StepExecutor
	EngineService  *enginesrv.Service
	WorkflowRoutes *engineapi.WorkflowRoutes

	// =================================================================
	// CONVERSATIONS 💬
	// =================================================================
	ConversationRepo   conversation.ConversationRepository
	MessageLog         conversation.MessageLog
	Locker             conversation.Locker
	RateLimiter        conversation.RateLimiter
	TranscriptArchiver conversation.TranscriptArchiver
	ConvManager        *convmanager.Manager
	MessageProcessor   *msgprocessor.Processor
	ConversationRoutes *convapi.ConversationRoutes

	// =================================================================
	// DAILY REPORT 📋
	// =================================================================
	PMSClient       *pmsclient.Client
	ReportService   *reportsrv.Service
	ReportScheduler *reportscheduler.ReportScheduler
	ReportRoutes    *reportapi.ReportRoutes

	// =================================================================
	// TEST API (development only)
	// =================================================================
	TestRoutes *testapi.TestRoutes
}

// NewContainer crea el contenedor e inicializa las dependencias en orden
func NewContainer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client) *Container {
	c := &Container{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
	}

	log.Println("📦 Initializing dependency container...")

	c.initEventBus()
	c.initAuthComponents()
	c.initChannelComponents()
	c.initClassifier()
	c.initEngineComponents()
	c.initConversationComponents()
	c.initWebhookComponents() // necesita el MessageProcessor
	c.initReportComponents()
	c.initTestAPI()

	log.Println("✅ Dependency container initialized successfully")

	return c
}

// =================================================================
// EVENT BUS INITIALIZATION ⚡
// =================================================================

func (c *Container) initEventBus() {
	log.Println("  ⚡ Initializing event bus...")

	busConfig := eventx.BusConfig{
		ConnectionName:    "moltbot-event-bus",
		EnableLogging:     true,
		EnableMetrics:     true,
		EnablePersistence: false,
		AutoAck:           true,
		MaxRetries:        3,
	}

	c.EventBus = eventxmemory.New(busConfig)

	ctx := context.Background()
	if err := c.EventBus.Connect(ctx); err != nil {
		log.Fatalf("❌ Failed to connect event bus: %v", err)
	}

	log.Println("  ✅ Event bus initialized and connected")
}

// =================================================================
// AUTH INITIALIZATION 🔐
// =================================================================

func (c *Container) initAuthComponents() {
	log.Println("  🔐 Initializing auth components...")

	c.PasswordService = authinfra.NewBcryptPasswordService()

	c.TokenService = auth.NewJWTService(
		c.Config.Auth.JWTSecret,
		c.Config.Auth.AccessTokenTTL,
		c.Config.Auth.RefreshTokenTTL,
		c.Config.Auth.Issuer,
	)

	c.AuthService = auth.NewService(c.TokenService, c.PasswordService, c.Config.Auth)
	c.AuthHandlers = auth.NewAuthHandlers(c.AuthService)
	c.AuthRoutes = auth.NewAuthRoutes(c.AuthHandlers)
	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService)
}

// =================================================================
// CHANNEL INITIALIZATION 📱
// =================================================================

func (c *Container) initChannelComponents() {
	log.Println("  📱 Initializing channel components...")

	c.ChannelManager = channelmanager.NewManager()

	c.ConsoleAdapter = console.NewAdapter()
	c.ChannelManager.Register(c.ConsoleAdapter)

	c.StaffChannel = channels.ChannelTypeConsole
	if c.Config.WhatsApp.AccessToken != "" {
		c.WhatsAppAdapter = whatsapp.NewAdapter(c.Config.WhatsApp)
		c.ChannelManager.Register(c.WhatsAppAdapter)
		c.StaffChannel = channels.ChannelTypeWhatsApp
	} else {
		log.Println("  ⚠️  WHATSAPP_ACCESS_TOKEN not set, WhatsApp adapter disabled")
	}

	// Los nodos send y las acciones notify salen por el canal de guardia
	c.Transport = channelmanager.NewTransport(c.ChannelManager, c.StaffChannel)
	c.StaffAlerter = channelmanager.NewStaffAlerter(c.ChannelManager, c.StaffChannel, c.Config.Report.Recipients)
}

// =================================================================
// CLASSIFIER INITIALIZATION 🧠
// =================================================================

func (c *Container) initClassifier() {
	log.Println("  🧠 Initializing classifier...")

	if c.Config.OpenAI.APIKey != "" {
		c.Classifier = classifierengines.NewLLMClassifier(c.Config.OpenAI.APIKey, c.Config.OpenAI.Model)
		log.Println("  ✅ LLM classifier initialized")
		return
	}

	// Sin API key, los pasos de evaluación caen al resultado por defecto
	log.Println("  ⚠️  OPENAI_API_KEY not set, using keyword classifier fallback")
	c.Classifier = classifierengines.NewKeywordClassifier(nil)
}

// =================================================================
// ENGINE INITIALIZATION ⚙️
// =================================================================

func (c *Container) initEngineComponents() {
	log.Println("  ⚙️  Initializing engine components...")

	c.WorkflowRepo = engineinfra.NewPostgresWorkflowRepository(c.DB)
	c.ActionInvoker = actioninvoker.NewInvoker(c.Transport)
	c.FlatExecutor = stepexec.NewExecutor(c.ActionInvoker, c.Classifier)
	c.GraphExecutor = graphexec.NewExecutor(c.ActionInvoker, c.Transport)

	c.EngineService = enginesrv.NewService(
		c.WorkflowRepo,
		c.FlatExecutor,
		c.GraphExecutor,
		c.StaffAlerter,
	)

	workflowHandler := engineapi.NewWorkflowHandler(c.EngineService)
	c.WorkflowRoutes = engineapi.NewWorkflowRoutes(workflowHandler, c.AuthMiddleware.Authenticate())
}

// =================================================================
// CONVERSATION INITIALIZATION 💬
// =================================================================

func (c *Container) initConversationComponents() {
	log.Println("  💬 Initializing conversation components...")

	c.ConversationRepo = convinfra.NewPostgresConversationRepository(c.DB)
	c.MessageLog = convinfra.NewPostgresMessageLog(c.DB)
	c.Locker = convinfra.NewRedisLocker(c.RedisClient)
	c.RateLimiter = convinfra.NewRedisRateLimiter(c.RedisClient, c.Config.Engine.RateLimitPerMin)

	if c.Config.S3.Enabled {
		c.TranscriptArchiver = convinfra.NewS3TranscriptArchiver(
			c.Config.S3.Region,
			c.Config.S3.Bucket,
			c.Config.S3.AccessKey,
			c.Config.S3.SecretKey,
		)
		log.Println("  ✅ S3 transcript archiver enabled")
	}

	c.ConvManager = convmanager.NewManager(
		c.ConversationRepo,
		c.WorkflowRepo,
		kernel.NewWorkflowID(c.Config.Engine.DefaultWorkflowID),
	)

	c.MessageProcessor = msgprocessor.NewProcessor(
		c.ConvManager,
		c.EngineService,
		c.MessageLog,
		c.ChannelManager,
		c.Locker,
		c.RateLimiter,
		c.TranscriptArchiver,
		msgprocessor.Config{
			ExecutionTimeout: c.Config.Engine.ExecutionTimeout,
			LockTTL:          c.Config.Engine.LockTTL,
			StaffRecipients:  c.Config.Report.Recipients,
			StaffChannel:     c.StaffChannel.String(),
		},
	)

	conversationHandler := convapi.NewConversationHandler(c.ConversationRepo, c.MessageLog)
	c.ConversationRoutes = convapi.NewConversationRoutes(conversationHandler, c.AuthMiddleware.Authenticate())
}

// =================================================================
// WEBHOOK INITIALIZATION 📥
// =================================================================

func (c *Container) initWebhookComponents() {
	if c.WhatsAppAdapter == nil {
		return
	}

	log.Println("  📥 Initializing WhatsApp webhook...")

	c.WhatsAppWebhookHandler = whatsapp.NewWebhookHandler(c.WhatsAppAdapter, c.MessageProcessor)
	c.WhatsAppWebhookRoutes = whatsapp.NewWebhookRoutes(c.WhatsAppWebhookHandler)
}

// =================================================================
// REPORT INITIALIZATION 📋
// =================================================================

func (c *Container) initReportComponents() {
	if !c.Config.Report.Enabled {
		log.Println("  📋 Daily report disabled")
		return
	}

	log.Println("  📋 Initializing daily report components...")

	c.PMSClient = pmsclient.NewClient(c.Config.PMS)
	builder := report.NewBuilder(c.PMSClient, c.Config.Report.HostelName)
	c.ReportService = reportsrv.NewService(builder, c.ChannelManager, c.StaffChannel.String(), c.Config.Report)

	scheduler, err := reportscheduler.NewReportScheduler(c.ReportService, c.Config.Report.CronExpression)
	if err != nil {
		log.Fatalf("❌ Invalid report cron expression: %v", err)
	}
	c.ReportScheduler = scheduler

	reportHandler := reportapi.NewReportHandler(c.ReportService)
	c.ReportRoutes = reportapi.NewReportRoutes(reportHandler, c.AuthMiddleware.Authenticate())
}

// =================================================================
// TEST API INITIALIZATION 🧪
// =================================================================

func (c *Container) initTestAPI() {
	if !c.Config.TestAPI.Enabled {
		return
	}

	log.Println("  🧪 Initializing test API...")

	testHandler := testapi.NewTestHandler(c.MessageProcessor, c.ConsoleAdapter)
	c.TestRoutes = testapi.NewTestRoutes(testHandler)
}

// =================================================================
// LIFECYCLE
// =================================================================

func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.ReportScheduler != nil {
		log.Println("  ⏰ Stopping report scheduler...")
		c.ReportScheduler.Stop()
	}

	if c.EventBus != nil {
		log.Println("  ⚡ Disconnecting event bus...")
		ctx := context.Background()
		if err := c.EventBus.Disconnect(ctx); err != nil {
			log.Printf("  ⚠️  Failed to disconnect event bus: %v", err)
		}
	}

	if c.DB != nil {
		log.Println("  🗄️  Closing database connections...")
		c.DB.Close()
	}

	if c.RedisClient != nil {
		log.Println("  🔴 Closing Redis connections...")
		c.RedisClient.Close()
	}

	log.Println("✅ Container cleanup complete")
}

func (c *Container) HealthCheck() map[string]bool {
	health := make(map[string]bool)

	if c.DB != nil {
		health["database"] = c.DB.Ping() == nil
	} else {
		health["database"] = false
	}

	if c.RedisClient != nil {
		health["redis"] = c.RedisClient.Ping(c.RedisClient.Context()).Err() == nil
	} else {
		health["redis"] = false
	}

	if c.EventBus != nil {
		health["event_bus"] = c.EventBus.IsConnected()
	} else {
		health["event_bus"] = false
	}

	health["engine"] = c.EngineService != nil
	health["message_processor"] = c.MessageProcessor != nil
	health["channel_manager"] = c.ChannelManager != nil
	health["whatsapp_adapter"] = c.WhatsAppAdapter != nil
	health["report_scheduler"] = c.ReportScheduler != nil

	return health
}

func (c *Container) GetEventBusMetrics() eventx.BusMetrics {
	if metricsbus, ok := c.EventBus.(eventx.MetricsEventBus); ok {
		return metricsbus.GetMetrics()
	}
	return eventx.BusMetrics{}
}

func (c *Container) GetServiceNames() []string {
	names := []string{
		"AuthService",
		"ChannelManager",
		"EngineService",
		"ConvManager",
		"MessageProcessor",
		"EventBus",
	}
	if c.ReportService != nil {
		names = append(names, "ReportService")
	}
	return names
}

func (c *Container) GetChannelAdapterNames() []string {
	adapters := []string{"ConsoleAdapter"}
	if c.WhatsAppAdapter != nil {
		adapters = append(adapters, "WhatsAppAdapter")
	}
	return adapters
}
