// server runs the ContractClarity API: authentication, saved contracts, and
// the asynchronous analysis pipeline.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/youzhaozhao/ContractClarity/internal/analysis"
	analysishandler "github.com/youzhaozhao/ContractClarity/internal/analysis/handler"
	"github.com/youzhaozhao/ContractClarity/internal/config"
	contracthandler "github.com/youzhaozhao/ContractClarity/internal/contract/handler"
	contractrepo "github.com/youzhaozhao/ContractClarity/internal/contract/repository"
	contractservice "github.com/youzhaozhao/ContractClarity/internal/contract/service"
	"github.com/youzhaozhao/ContractClarity/internal/db"
	identityhandler "github.com/youzhaozhao/ContractClarity/internal/identity/handler"
	identityservice "github.com/youzhaozhao/ContractClarity/internal/identity/service"
	"github.com/youzhaozhao/ContractClarity/internal/llm"
	"github.com/youzhaozhao/ContractClarity/internal/metrics"
	"github.com/youzhaozhao/ContractClarity/internal/otp"
	"github.com/youzhaozhao/ContractClarity/internal/retrieval"
	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/server"
	"github.com/youzhaozhao/ContractClarity/internal/sms"
	userhandler "github.com/youzhaozhao/ContractClarity/internal/user/handler"
	userrepo "github.com/youzhaozhao/ContractClarity/internal/user/repository"
	userservice "github.com/youzhaozhao/ContractClarity/internal/user/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	// Session and challenge state is in-process and lost on restart.
	revoked := security.NewMemoryRevocationSet()
	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.AccessTTL(), cfg.RefreshTTL(), revoked)
	hasher := security.NewHasher(12)
	codes := otp.NewStore(cfg.OTPExpiryWindow(), cfg.OTPResendWindow(), cfg.OTPMaxAttempts)

	var sender sms.Sender
	if cfg.SMSLocalAPIKey != "" {
		sender = sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	} else {
		sender = &sms.LogSender{Logger: logger}
	}

	var searcher retrieval.Searcher = retrieval.NopSearcher{}
	if cfg.RetrievalURL != "" {
		searcher = retrieval.NewHTTPSearcher(cfg.RetrievalURL)
	}

	users := userrepo.NewPostgresRepository(database)
	contracts := contractrepo.NewPostgresRepository(database)

	authSvc := identityservice.NewAuthService(users, codes, tokens, hasher, sender, cfg.DevMode, logger)
	userSvc := userservice.NewUserService(users, hasher)
	contractSvc := contractservice.NewContractService(contracts, users)

	m := metrics.New()
	registry := analysis.NewRegistry()
	runner := analysis.NewRunner(llm.NewClient(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL), searcher, registry, cfg.StageTimeout(), logger)
	pool := analysis.NewPool(cfg.AnalysisWorkers, cfg.AnalysisQueueSize, func(task analysis.Task) {
		m.JobsRunning.Inc()
		defer m.JobsRunning.Dec()
		runner.Run(task.JobID, task.Text, task.Category, task.Language)
		if job, ok := registry.Get(task.JobID); ok {
			m.JobsTotal.WithLabelValues(string(job.Status)).Inc()
		}
	})

	router := server.NewRouter(server.Handlers{
		Auth:     identityhandler.NewAuthHandler(authSvc, tokens),
		User:     userhandler.NewUserHandler(userSvc, tokens),
		Contract: contracthandler.NewContractHandler(contractSvc, tokens),
		Analysis: analysishandler.NewAnalysisHandler(registry, pool, runner),
	}, m, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	if err := pool.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("worker pool shutdown")
	}
	return nil
}
