package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gorecords/config"
	"gorecords/internal/api/address"
	"gorecords/internal/api/product"
	"gorecords/internal/api/router"
	"gorecords/internal/api/user"
	"gorecords/internal/domain"
	"gorecords/internal/pkg/cache"
	"gorecords/internal/pkg/database"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/metrics"
	"gorecords/internal/pkg/token"
	"gorecords/internal/repository/memrepo"
	"gorecords/internal/repository/unitofwork"
	"gorecords/internal/service/addressservice"
	"gorecords/internal/service/productservice"
	"gorecords/internal/service/userservice"
	"gorecords/migrations"
)

// storage é o que os serviços precisam do armazenamento: unidade de trabalho
// para escrita e repositórios de leitura.
type storage interface {
	domain.UnitOfWork
	Repositories() domain.Repositories
}

func main() {
	log.Println("⚡ Inicializando serviço gorecords...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("configuração: %v", err)
	}
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", map[string]interface{}{
		"env":            cfg.Environment,
		"storage_driver": cfg.StorageDriver,
		"auth_enabled":   cfg.AuthEnabled,
	})

	ctx := context.Background()

	// 1. Armazenamento
	var store storage
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store = memrepo.NewStore(appLog)
		appLog.Warn("Armazenamento em memória ativo: os dados não sobrevivem ao processo.", nil)
	default:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			appLog.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer closeDB(db, appLog)
		appLog.Info("Conexão PostgreSQL estabelecida.", nil)

		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db, migrations.FS, "up"); err != nil {
				appLog.Fatal("Falha ao aplicar migrations.", err)
			}
			appLog.Info("Migrations aplicadas.", nil)
		}
		store = unitofwork.New(db, cfg.DBTimeout, appLog)
	}
	repos := store.Repositories()

	// 2. Rate limiting (opcional)
	var limiter cache.Client
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Fatal("Falha ao conectar ao Redis.", err)
		}
		defer redisClient.Close()
		limiter = redisClient
		appLog.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
	}

	// 3. Métricas
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry, cfg.ServiceName)

	// 4. Injeção de dependências: Service -> Handler
	userHandler := user.NewHandler(userservice.NewService(store, repos, appLog), appLog)
	productHandler := product.NewHandler(productservice.NewService(store, repos, appLog), appLog)
	addressHandler := address.NewHandler(addressservice.NewService(store, repos, appLog), appLog)

	deps := router.Dependencies{
		Users:           userHandler,
		Products:        productHandler,
		Addresses:       addressHandler,
		Logger:          appLog,
		Metrics:         appMetrics,
		Gatherer:        registry,
		RateLimiter:     limiter,
		RateLimitMax:    cfg.RateLimitMaxRequests,
		RateLimitWindow: cfg.RateLimitPeriod,
	}
	if cfg.AuthEnabled {
		deps.Tokens = token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
		appLog.Debug("Autenticação JWT habilitada nas rotas de escrita.", nil)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor gorecords ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}

func closeDB(db *sql.DB, log logger.Logger) {
	if err := db.Close(); err != nil {
		log.Error("Falha ao fechar o pool do DB.", err)
	}
}
