package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/stayflow/access-service/internal/app"
	"github.com/stayflow/access-service/internal/config"
	"github.com/stayflow/access-service/internal/controllers"
	"github.com/stayflow/access-service/internal/locks"
	"github.com/stayflow/access-service/internal/middleware"
	"github.com/stayflow/access-service/internal/repositories"
	"github.com/stayflow/access-service/internal/routes"
	"github.com/stayflow/access-service/internal/services"
	"github.com/stayflow/access-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize access-service:", err)
	}
	defer application.Close()

	ruleRepo := repositories.NewAccessRuleRepository(application.DB)
	codeRepo := repositories.NewAccessCodeRepository(application.DB)
	monitoringRepo := repositories.NewAccessMonitoringRepository(application.DB)
	logRepo := repositories.NewAccessLogRepository(application.DB)
	lockRepo := repositories.NewSmartLockRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	providerRepo := repositories.NewProviderRepository(application.DB)
	tenantRepo := repositories.NewTenantRepository(application.DB)

	if cfg.SeedDbWithTestData {
		if err := app.SeedTestData(
			context.Background(),
			propRepo,
			lockRepo,
			providerRepo,
			tenantRepo,
		); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	lockGateway := locks.NewVendorClient(cfg.LockVendorBaseURL, cfg.LockVendorAPIKey)

	issuer := services.NewCodeIssuerService(codeRepo, lockRepo, tenantRepo, lockGateway)
	ruleService := services.NewAccessRuleService(
		cfg,
		ruleRepo,
		propRepo,
		providerRepo,
		tenantRepo,
		issuer,
		twClient,
		sgClient,
	)
	monitorService := services.NewAccessMonitorService(
		cfg,
		monitoringRepo,
		logRepo,
		codeRepo,
		ruleRepo,
		propRepo,
		providerRepo,
		tenantRepo,
		twClient,
		sgClient,
	)

	rulesController := controllers.NewAccessRulesController(ruleService)
	monitoringController := controllers.NewMonitoringController(monitorService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.AccessProvidersRegular, rulesController.SetupRegularProviderHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessProvidersOccasional, rulesController.SetupOccasionalProviderHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessTenantsLongTerm, rulesController.SetupLongTermTenantHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessTenantsShortTerm, rulesController.SetupShortTermTenantHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessRules, rulesController.ListRulesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AccessRuleCodes, rulesController.ListRuleCodesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AccessRuleSuspend, rulesController.SuspendRuleHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessRuleReactivate, rulesController.ReactivateRuleHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessRenewalsRun, rulesController.RunRenewalsHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AccessViolations, monitoringController.ListViolationsHandler).Methods(http.MethodGet)

	// Lock-vendor webhook uses a shared token, not a JWT.
	webhook := router.NewRoute().Subrouter()
	webhook.Use(middleware.WebhookAuthMiddleware(cfg.LockWebhookToken))
	webhook.HandleFunc(routes.AccessMonitor, monitoringController.MonitorAccessHandler).Methods(http.MethodPost)

	c := cron.New()
	_, renewErr := c.AddFunc("0 6 * * *", func() {
		result, e := ruleService.RenewExpiringAccess(context.Background())
		if e != nil {
			utils.Logger.WithError(e).Error("Scheduled renewal batch failed")
			return
		}
		utils.Logger.Infof("Scheduled renewal batch done: renewed=%d failed=%d", result.Renewed, len(result.Failed))
	})
	if renewErr != nil {
		utils.Logger.WithError(renewErr).Fatal("Failed to schedule renewal cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Webhook-Token", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("access-service failed to start:", err)
	}
}
