package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rcmulti/config"
	httpLayer "rcmulti/http"
	"rcmulti/repository"
	"rcmulti/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	classifier, err := service.LoadClassifier(cfg.SpecialtiesPath)
	if err != nil {
		logger.Fatal("erro carregando enquadramentos", zap.Error(err))
	}

	translator, err := service.LoadTranslator(cfg.CarrierClassesPath)
	if err != nil {
		logger.Warn("erro carregando tabela de classes, usando a embutida", zap.Error(err))
		translator = service.DefaultTranslator()
	}

	unimedTable, err := service.LoadUnimedTable(cfg.UnimedTablePath)
	if err != nil {
		logger.Fatal("erro carregando tabela Unimed", zap.Error(err))
	}

	var tokens repository.TokenCache
	if cfg.RedisAddr != "" {
		tokens = repository.NewRedisTokenCache(cfg.RedisAddr)
		logger.Info("cache de tokens no Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		tokens = repository.NewMemoryTokenCache()
	}

	var quoteRepo repository.QuoteRepository
	if cfg.PostgresDSN != "" {
		pg, err := repository.NewPostgresQuoteRepository(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("erro conectando no Postgres", zap.Error(err))
		}
		defer pg.Close()
		quoteRepo = pg
		logger.Info("histórico de cotações no Postgres")
	} else {
		quoteRepo = repository.NewQuoteRepositoryMemory()
	}

	akad := service.NewAkadClient(service.AkadConfig{
		SubscriptionKey:  cfg.AkadSubscriptionKey,
		ClientHeader:     cfg.AkadClientHeader,
		SecurityBaseURL:  cfg.AkadSecurityBaseURL,
		TokenPath:        cfg.AkadTokenPath,
		QuotationBaseURL: cfg.AkadQuotationBaseURL,
		OperationCode:    cfg.AkadOperationCode,
		Username:         cfg.AkadUsername,
		Password:         cfg.AkadPassword,
		ClientID:         cfg.AkadClientID,
		ClientSecret:     cfg.AkadClientSecret,
		BrokerCPF:        cfg.AkadBrokerCPF,
		BrokerageCNPJ:    cfg.AkadBrokerageCNPJ,
	}, translator, tokens, nil, logger)

	fairfax := service.NewFairfaxClient(service.FairfaxConfig{
		QuotationURL:  cfg.FairfaxQuotationURL,
		OperationCode: cfg.FairfaxOperationCode,
		APIKeyHeader:  cfg.FairfaxAPIKeyHeader,
		APIKeyValue:   cfg.FairfaxAPIKeyValue,
		BearerToken:   cfg.FairfaxBearerToken,
	}, translator, nil, logger)

	unimed := service.NewUnimedClient(unimedTable, classifier, logger)

	quoteService := service.NewQuoteService(
		classifier,
		[]service.CarrierClient{akad, fairfax, unimed},
		quoteRepo,
		logger,
	)
	quoteHandler := httpLayer.NewQuoteHandler(quoteService)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	mux.Handle(
		"/quote/rc",
		httpLayer.RateLimitMiddleware(
			rateLimiter,
			http.HandlerFunc(quoteHandler.QuoteAll),
		),
	)
	mux.Handle("/quote/rc/specialties", http.HandlerFunc(quoteHandler.Specialties))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a agregação espera todas as seguradoras
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API de multi-cálculo no ar", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("erro subindo o servidor", zap.Error(err))
		return
	case <-quit:
		logger.Info("encerrando o servidor...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("erro no shutdown", zap.Error(err))
	}

	logger.Info("servidor finalizado")
}
