package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stayflow/access-service/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string

	// Database
	DBUrl string

	// Auth
	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	// Twilio / SendGrid for code delivery and violation alerts
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioFromPhone     string
	SendGridAPIKey      string
	SendgridFromEmail   string
	SendgridSandboxMode bool

	// Smart-lock vendor gateway
	LockVendorBaseURL string
	LockVendorAPIKey  string
	LockWebhookToken  string

	SeedDbWithTestData bool
	CORSHighSecurity   bool
}

const OrganizationName = "StayFlow"

// build-time override
var AppName string

func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	appUrl := requireEnv("APP_URL_FROM_ANYWHERE")
	appPort := requireEnv("APP_PORT")
	dbURL := requireEnv("DB_URL")

	privPEM, _ := base64.StdEncoding.DecodeString(requireEnv("RSA_PRIVATE_KEY_BASE64"))
	if block, _ := pem.Decode(privPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}

	pubPEM, _ := base64.StdEncoding.DecodeString(requireEnv("RSA_PUBLIC_KEY_BASE64"))
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	twilioFrom := os.Getenv("TWILIO_FROM_PHONE")
	if twilioFrom == "" {
		utils.Logger.Warn("TWILIO_FROM_PHONE is empty, defaulting to +10005550006")
		twilioFrom = "+10005550006"
	}
	sgFrom := os.Getenv("SENDGRID_FROM_EMAIL")
	if sgFrom == "" {
		utils.Logger.Warn("SENDGRID_FROM_EMAIL is empty, defaulting to no-reply@stayflow.app")
		sgFrom = "no-reply@stayflow.app"
	}

	return &Config{
		OrganizationName:    OrganizationName,
		AppName:             AppName,
		AppPort:             appPort,
		AppUrl:              appUrl,
		DBUrl:               dbURL,
		RSAPrivateKey:       privKey,
		RSAPublicKey:        pubKey,
		TwilioAccountSID:    requireEnv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     requireEnv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:     twilioFrom,
		SendGridAPIKey:      requireEnv("SENDGRID_API_KEY"),
		SendgridFromEmail:   sgFrom,
		SendgridSandboxMode: boolEnv("SENDGRID_SANDBOX_MODE"),
		LockVendorBaseURL:   requireEnv("LOCK_VENDOR_BASE_URL"),
		LockVendorAPIKey:    requireEnv("LOCK_VENDOR_API_KEY"),
		LockWebhookToken:    requireEnv("LOCK_WEBHOOK_TOKEN"),
		SeedDbWithTestData:  boolEnv("SEED_DB_WITH_TEST_DATA"),
		CORSHighSecurity:    boolEnv("CORS_HIGH_SECURITY"),
	}
}

func (c *Config) Close() {}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return val
}

func boolEnv(key string) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return val
}
