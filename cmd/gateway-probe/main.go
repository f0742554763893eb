package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fortepay/goemerchant-gateway/internal/adapters/goemerchant"
	"github.com/fortepay/goemerchant-gateway/internal/adapters/ports"
	"github.com/fortepay/goemerchant-gateway/internal/adapters/secrets"
	"github.com/fortepay/goemerchant-gateway/internal/config"
	"github.com/fortepay/goemerchant-gateway/internal/domain"
	"github.com/fortepay/goemerchant-gateway/pkg/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// gateway-probe exercises the adapter against a sandbox account: a $1.00
// authorization by default, or a settled-batch query with -query.
func main() {
	queryDays := flag.Int("query", 0, "query settled batches for the past N days instead of authorizing")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := buildLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := security.NewZapLogger(zapLogger)

	ctx := context.Background()

	gatewayID, err := resolveGatewayID(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to resolve gateway credential", zap.Error(err))
	}

	adapter, err := goemerchant.NewAdapter(
		goemerchant.Config{
			TransactionCenterID: cfg.Gateway.TransactionCenterID,
			GatewayID:           gatewayID,
			Routing: goemerchant.Routing{
				MID:         cfg.Gateway.MID,
				TID:         cfg.Gateway.TID,
				Processor:   cfg.Gateway.Processor,
				ProcessorID: cfg.Gateway.ProcessorID,
			},
			Endpoint:      cfg.Gateway.Endpoint,
			BatchEndpoint: cfg.Gateway.BatchEndpoint,
		},
		&http.Client{Timeout: time.Duration(cfg.Gateway.BatchTimeout) * time.Second},
		logger,
	)
	if err != nil {
		zapLogger.Fatal("failed to construct adapter", zap.Error(err))
	}

	if *queryDays > 0 {
		runSettledQuery(ctx, adapter, *queryDays, zapLogger)
		return
	}
	runAuthProbe(ctx, adapter, zapLogger)
}

func buildLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	return zapCfg.Build()
}

// resolveGatewayID loads the transaction key from the configured secrets backend
func resolveGatewayID(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	var manager ports.SecretManagerAdapter

	switch cfg.Secrets.Backend {
	case "env":
		return cfg.Gateway.GatewayID, nil
	case "local":
		manager = secrets.NewLocalSecretManager(cfg.Secrets.LocalBase, logger)
	case "aws":
		var err error
		manager, err = secrets.NewAWSSecretsManagerAdapter(ctx,
			secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion), logger)
		if err != nil {
			return "", err
		}
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultCfg.Token = cfg.Secrets.VaultToken
		var err error
		manager, err = secrets.NewVaultAdapter(ctx, vaultCfg, logger)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown secrets backend: %s", cfg.Secrets.Backend)
	}

	secret, err := manager.GetSecret(ctx, cfg.Secrets.Path)
	if err != nil {
		return "", err
	}
	return secret.Value, nil
}

func runAuthProbe(ctx context.Context, adapter *goemerchant.Adapter, logger *zap.Logger) {
	order := ports.Order{
		ID:     fmt.Sprintf("probe-%s", uuid.NewString()),
		Amount: decimal.NewFromFloat(1.00),
	}
	card := ports.CreditCard{
		CardType:        "Visa",
		Number:          "4111111111111111",
		ExpirationMonth: 12,
		ExpirationYear:  2030,
		CardHolder:      "Probe Tester",
	}
	billing := ports.BillingInfo{
		FirstName:  "Probe",
		LastName:   "Tester",
		Address1:   "1 Test Way",
		City:       "Testville",
		State:      "CA",
		PostalCode: "94000",
		Country:    "US",
	}

	result, err := adapter.AuthorizeTransaction(ctx, order, card, billing, nil)
	if err != nil {
		reportFailure(err, logger)
		return
	}

	logger.Info("authorization approved",
		zap.String("order_id", order.ID),
		zap.String("transaction_id", result.TransactionID),
		zap.String("auth_code", result.AuthCode),
	)
}

func runSettledQuery(ctx context.Context, adapter *goemerchant.Adapter, days int, logger *zap.Logger) {
	result, err := adapter.GetSettledBatchList(ctx, time.Now().AddDate(0, 0, -days), time.Now())
	if err != nil {
		reportFailure(err, logger)
		return
	}

	logger.Info("settled batch query completed",
		zap.Int("records_found", result.RecordsFound),
		zap.String("total_settled", result.TotalSettled),
		zap.String("total_net", result.TotalNet),
	)
	for _, record := range result.Records {
		logger.Info("settled transaction",
			zap.String("order_id", record.OrderID),
			zap.String("reference_number", record.ReferenceNumber),
			zap.String("amount_settled", record.AmountSettled),
			zap.String("card_num", record.CardNumber),
		)
	}
}

func reportFailure(err error, logger *zap.Logger) {
	if gwErr, ok := domain.AsGatewayError(err); ok {
		logger.Error("gateway call failed",
			zap.String("kind", string(gwErr.Kind)),
			zap.String("message", gwErr.Message),
			zap.Any("original", gwErr.Original),
		)
		os.Exit(1)
	}
	logger.Error("gateway call failed", zap.Error(err))
	os.Exit(1)
}
