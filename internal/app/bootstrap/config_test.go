package bootstrap

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "places",
		TxnMaxAttempts: 3,
		SweepEnabled:   true,
		SweepInterval:  10 * time.Minute,
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Errorf("ValidateConfig rejected a valid config: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "http://not-a-mongo-uri"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for invalid Mongo URI")
	}
}

func TestValidateConfig_BadTxnAttempts(t *testing.T) {
	cfg := validAppConfig()
	cfg.TxnMaxAttempts = 0
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for zero txn_max_attempts")
	}
}

func TestValidateConfig_BadSweepInterval(t *testing.T) {
	cfg := validAppConfig()
	cfg.SweepInterval = 0
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for zero sweep_interval with sweep enabled")
	}

	// Disabled sweep does not need an interval.
	cfg.SweepEnabled = false
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Errorf("ValidateConfig rejected disabled sweep: %v", err)
	}
}
