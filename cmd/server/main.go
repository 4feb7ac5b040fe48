package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"delivery-service/internal/config"
	"delivery-service/internal/controllers/http"
	mmysql "delivery-service/internal/infra/mysql"
	"delivery-service/internal/infra/rabbitmq"
	rediscache "delivery-service/internal/infra/redis"
	"delivery-service/internal/lifecycle"
	"delivery-service/internal/metrics"
	mysqlrepo "delivery-service/internal/repository/mysql"
	"delivery-service/internal/scheduler"
	"delivery-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mmysql.Open(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	orders := mysqlrepo.NewOrderRepository(db)
	products := mysqlrepo.NewProductRepository(db)
	customers := mysqlrepo.NewCustomerRepository(db)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: ping %s: %v", cfg.Redis.Addr, err)
		}
		defer redisClient.Close()
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.Enabled() {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		log.Println("RABBITMQ_URL not set, order events are dropped")
	}

	var sched scheduler.Scheduler
	switch cfg.Lifecycle.Scheduler {
	case config.SchedulerRedis:
		if redisClient == nil {
			log.Fatalf("LIFECYCLE_SCHEDULER=redis requires REDIS_ADDR")
		}
		sched = scheduler.NewRedisScheduler(redisClient, scheduler.DefaultRedisKey, cfg.Lifecycle.PollInterval)
	default:
		sched = scheduler.NewTimerScheduler()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	driver := lifecycle.NewDriver(orders, sched, publisher, m, lifecycle.Delays{
		Transit:  cfg.Lifecycle.TransitDelay,
		Delivery: cfg.Lifecycle.DeliveryDelay,
	})
	go func() {
		if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("lifecycle driver stopped: %v", err)
		}
	}()

	orderService := services.NewOrderService(orders, products, customers, publisher, driver)
	orderService.SetMetrics(m)
	if redisClient != nil {
		orderService.SetProductCache(rediscache.NewProductCache(redisClient, cfg.Redis.ProductCacheTTL))
	}

	handler := http.NewHandler(
		orderService,
		services.NewOrderQuery(orders, products, customers),
		services.NewCatalogService(products),
		services.NewCustomerService(customers),
	)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(http.Metrics(m), http.Recovery(m), http.CORS(cfg.Server.AllowedOrigin))
	r.GET("/metrics", gin.WrapH(m.Handler()))
	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Starting delivery service on port %s (scheduler=%s)", cfg.Server.Port, cfg.Lifecycle.Scheduler)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("server run: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
