package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"studio-assistant/handler"
	"studio-assistant/internal/businessdata"
	"studio-assistant/internal/integrations/llm"
	"studio-assistant/internal/integrations/paramstore"
	"studio-assistant/internal/integrations/partnerapi"
	"studio-assistant/internal/langdetect"
	"studio-assistant/internal/repository"
	"studio-assistant/internal/resolver"
	"studio-assistant/internal/tenant"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	sessionTable := mustEnv("SESSION_TABLE")
	businessTable := mustEnv("BUSINESS_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	llmTimeout := envInt("LLM_TIMEOUT_SECONDS", 10)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	profile := loadTenantProfile(ctx, ssmClient, paramPrefix)

	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	sessionStore, err := repository.New(dynamoClient, sessionTable, profile.Namespace)
	if err != nil {
		slog.Error("failed to create session store", "err", err)
		os.Exit(1)
	}
	businessSource, err := businessdata.New(dynamoClient, businessTable, profile.Namespace, profile.DefaultLanguage)
	if err != nil {
		slog.Error("failed to create business data source", "err", err)
		os.Exit(1)
	}

	openaiToken, err := ssmClient.Token(ctx, paramPrefix+"/open-ai-token")
	if err != nil {
		slog.Error("failed to read OpenAI token", "err", err)
		os.Exit(1)
	}
	model, err := ssmClient.GetParameter(ctx, paramPrefix+"/config/openai_model")
	if err != nil {
		slog.Error("failed to read OpenAI model", "err", err)
		os.Exit(1)
	}
	chatBackend, err := llm.New(openaiToken, model, llm.WithTimeout(time.Duration(llmTimeout)*time.Second))
	if err != nil {
		slog.Error("failed to create chat backend", "err", err)
		os.Exit(1)
	}

	partnerEndpoint, err := ssmClient.GetParameter(ctx, paramPrefix+"/config/partner_endpoint")
	if err != nil {
		slog.Error("failed to read partner endpoint", "err", err)
		os.Exit(1)
	}
	partnerToken, err := ssmClient.Token(ctx, paramPrefix+"/partner-api-token")
	if err != nil {
		slog.Error("failed to read partner API token", "err", err)
		os.Exit(1)
	}
	partnerSource, err := partnerapi.New(partnerEndpoint, partnerToken)
	if err != nil {
		slog.Error("failed to create partner client", "err", err)
		os.Exit(1)
	}

	// ---- Service and handler ----
	service, err := resolver.New(sessionStore, businessSource, partnerSource, chatBackend, langdetect.New(), profile)
	if err != nil {
		slog.Error("failed to create resolver service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(service)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

// loadTenantProfile overlays the optional JSON document from the parameter
// store on the built-in defaults. A missing parameter is fine; a malformed
// one is a deployment error.
func loadTenantProfile(ctx context.Context, ssmClient *paramstore.Client, paramPrefix string) *tenant.Profile {
	profile := tenant.Default()
	raw, err := ssmClient.GetParameter(ctx, paramPrefix+"/tenant_profile")
	if err != nil {
		slog.Warn("tenant profile parameter not readable, using defaults", "err", err)
		return profile
	}
	if err := json.Unmarshal([]byte(raw), profile); err != nil {
		slog.Error("malformed tenant profile parameter", "err", err)
		os.Exit(1)
	}
	return profile
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
