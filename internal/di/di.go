/*
OMS DI-package

Composition root, written in the manual-wire style: explicit provider calls
composed in InitializeOMSService, mirroring what the wire generator would
emit for the same graph.
*/
package oms_di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	config "github.com/shortlink-org/go-sdk/config"
	"github.com/shortlink-org/go-sdk/db"
	logger "github.com/shortlink-org/go-sdk/logger"
	"github.com/shortlink-org/go-sdk/observability/metrics"
	profiling "github.com/shortlink-org/go-sdk/observability/profiling"
	"github.com/shortlink-org/go-sdk/observability/tracing"
	"github.com/shortlink-org/go-sdk/temporal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/dispatch"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	suborderv1 "github.com/shortlink-org/shop/oms/internal/domain/suborder/v1"
	redisCache "github.com/shortlink-org/shop/oms/internal/infrastructure/cache/redis"
	capacitygate "github.com/shortlink-org/shop/oms/internal/infrastructure/dispatcher"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/events"
	eventskafka "github.com/shortlink-org/shop/oms/internal/infrastructure/events/kafka"
	omshttp "github.com/shortlink-org/shop/oms/internal/infrastructure/http"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/push"
	orderRepo "github.com/shortlink-org/shop/oms/internal/infrastructure/repository/postgres/order"
	providerConfigRepo "github.com/shortlink-org/shop/oms/internal/infrastructure/repository/postgres/providerconfig"
	shipmentRepo "github.com/shortlink-org/shop/oms/internal/infrastructure/repository/postgres/shipment"
	shipperRepo "github.com/shortlink-org/shop/oms/internal/infrastructure/repository/postgres/shipper"
	subOrderRepo "github.com/shortlink-org/shop/oms/internal/infrastructure/repository/postgres/suborder"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/shipping/providers"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/shipping/retrier"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/shipping/vault"
	"github.com/shortlink-org/shop/oms/internal/usecases/dispatch/command/dispatchshipment"
	"github.com/shortlink-org/shop/oms/internal/usecases/location/command/ingestsample"
	"github.com/shortlink-org/shop/oms/internal/usecases/middleware"
	orderApplyPaymentFailed "github.com/shortlink-org/shop/oms/internal/usecases/order/command/applypaymentfailed"
	orderApplyPaymentSucceeded "github.com/shortlink-org/shop/oms/internal/usecases/order/command/applypaymentsucceeded"
	orderCancel "github.com/shortlink-org/shop/oms/internal/usecases/order/command/cancel"
	orderComplete "github.com/shortlink-org/shop/oms/internal/usecases/order/command/complete"
	orderConfirm "github.com/shortlink-org/shop/oms/internal/usecases/order/command/confirm"
	orderMarkRefunded "github.com/shortlink-org/shop/oms/internal/usecases/order/command/markrefunded"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/query/getorder"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/query/listbycustomer"
	shipmentApplyWebhook "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/applywebhook"
	shipmentCancel "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/cancel"
	shipmentCollectCOD "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/collectcod"
	shipmentCreate "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/create"
	shipmentMarkDelivered "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/markdelivered"
	shipmentMarkFailed "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/markfailed"
	shipmentMarkPickedUp "github.com/shortlink-org/shop/oms/internal/usecases/shipment/command/markpickedup"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipment/query/gettracking"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipping/facade"
	subOrderApproveReturn "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/approvereturn"
	subOrderCancelByPartner "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/cancelbypartner"
	subOrderConfirm "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/confirm"
	subOrderConfirmReceipt "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/confirmreceipt"
	subOrderMarkDelivered "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markdelivered"
	subOrderMarkReadyToShip "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markreadytoship"
	subOrderMarkReturned "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markreturned"
	subOrderMarkShipping "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markshipping"
	subOrderProcess "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/process"
	subOrderRefund "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/refund"
	subOrderRequestReturn "github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/requestreturn"
	dispatchActivities "github.com/shortlink-org/shop/oms/internal/workers/dispatch/activities"
	"github.com/shortlink-org/shop/oms/internal/workers/dispatch/dispatch_worker"
	uowpg "github.com/shortlink-org/shop/oms/pkg/uow/postgres"
)

type OMSService struct {
	// Common
	Log    logger.Logger
	Config *config.Config

	// Observability
	Tracer        trace.TracerProvider
	Monitoring    *metrics.Monitoring
	PprofEndpoint profiling.PprofEndpoint

	// Database
	DB db.DB

	// UnitOfWork
	UoW ports.UnitOfWork

	// Repositories
	OrderRepo          ports.OrderRepository
	SubOrderRepo       ports.SubOrderRepository
	ShipmentRepo       ports.ShipmentRepository
	ShipperRepo        ports.ShipperRepository
	ProviderConfigRepo ports.ProviderConfigRepository

	// Applications
	Facade     *facade.Facade
	Dispatcher *dispatch.Dispatcher

	// Delivery
	HTTPServer *omshttp.Server
	PushHub    *push.Hub
	consumer   *eventskafka.ShipmentStatusConsumer

	// Temporal
	temporalClient temporalclient.Client
	resetWorker    worker.Worker
}

// command wraps a handler with the standard middleware chain:
// logging > metrics > tracing, same order as the base module.
func command[C any](log logger.Logger, h ports.CommandHandler[C]) ports.CommandHandler[C] {
	return middleware.LoggingCommandMiddleware(log, middleware.MetricsCommandMiddleware(middleware.TracingCommandMiddleware(h)))
}

func commandWithResult[C any, R any](log logger.Logger, h ports.CommandHandlerWithResult[C, R]) ports.CommandHandlerWithResult[C, R] {
	return middleware.LoggingCommandWithResultMiddleware(log, middleware.MetricsCommandWithResultMiddleware(middleware.TracingCommandWithResultMiddleware(h)))
}

func query[Q any, R any](log logger.Logger, h ports.QueryHandler[Q, R]) ports.QueryHandler[Q, R] {
	return middleware.LoggingQueryMiddleware(log, middleware.MetricsQueryMiddleware(middleware.TracingQueryMiddleware(h)))
}

func setDefaults() {
	viper.SetDefault("SERVICE_NAME", "shortlink-shop-oms")
	viper.SetDefault("API_HTTP_ADDR", ":8080")
	viper.SetDefault("STORE_REDIS_URI", "localhost:6379")
	viper.SetDefault("WATERMILL_KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("SHIPPING_VAULT_SECRET", "")
	viper.SetDefault("DISPATCH_RESET_TZ_NORTH", "Asia/Ho_Chi_Minh")
	viper.SetDefault("DISPATCH_RESET_TZ_CENTRAL", "Asia/Ho_Chi_Minh")
	viper.SetDefault("DISPATCH_RESET_TZ_SOUTH", "Asia/Ho_Chi_Minh")
}

// newRedisClient creates a Redis client using rueidis.
func newRedisClient(cfg *config.Config) (rueidis.Client, func(), error) {
	redisURI := cfg.GetString("STORE_REDIS_URI")

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{redisURI},
	})
	if err != nil {
		return nil, nil, err
	}

	return client, client.Close, nil
}

// newRegistry binds every carrier code to its constructor.
func newRegistry() *shipping.Registry {
	registry := shipping.NewRegistry()

	registry.Register(shipping.ProviderInHouse, providers.NewInHouse)
	registry.Register(shipping.ProviderGHTK, providers.NewGHTK)
	registry.Register(shipping.ProviderGHN, providers.NewGHN)
	registry.Register(shipping.ProviderViettelPost, providers.NewViettelPost)

	return registry
}

// InitializeOMSService builds the full service graph and returns it with an
// aggregate cleanup.
//
//nolint:funlen,maintidx // composition root: long by nature, no logic
func InitializeOMSService() (*OMSService, func(), error) {
	setDefaults()

	ctx := context.Background()

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	fail := func(err error) (*OMSService, func(), error) {
		cleanup()

		return nil, nil, err
	}

	cfg, err := config.New()
	if err != nil {
		return fail(fmt.Errorf("config: %w", err))
	}

	log, logCleanup, err := logger.NewDefault(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("logger: %w", err))
	}
	cleanups = append(cleanups, logCleanup)

	tracer, tracerCleanup, err := tracing.New(ctx, log, cfg)
	if err != nil {
		return fail(fmt.Errorf("tracer: %w", err))
	}
	cleanups = append(cleanups, tracerCleanup)

	monitoring, monitoringCleanup, err := metrics.New(ctx, log, tracer, cfg)
	if err != nil {
		return fail(fmt.Errorf("monitoring: %w", err))
	}
	cleanups = append(cleanups, monitoringCleanup)

	pprofEndpoint, err := profiling.New(ctx, log, tracer, cfg)
	if err != nil {
		return fail(fmt.Errorf("profiling: %w", err))
	}

	database, err := db.New(ctx, log, tracer, monitoring.Metrics, cfg)
	if err != nil {
		return fail(fmt.Errorf("database: %w", err))
	}

	pool, ok := database.GetConn().(*pgxpool.Pool)
	if !ok {
		return fail(db.ErrGetConnection)
	}

	unitOfWork := uowpg.New(pool)

	redisClient, redisCleanup, err := newRedisClient(cfg)
	if err != nil {
		return fail(fmt.Errorf("redis: %w", err))
	}
	cleanups = append(cleanups, redisCleanup)

	cache := redisCache.New(redisClient)

	// Repositories.
	orders, err := orderRepo.New(ctx, database)
	if err != nil {
		return fail(fmt.Errorf("order repository: %w", err))
	}

	subOrders, err := subOrderRepo.New(ctx, database)
	if err != nil {
		return fail(fmt.Errorf("suborder repository: %w", err))
	}

	shipments, err := shipmentRepo.New(ctx, database)
	if err != nil {
		return fail(fmt.Errorf("shipment repository: %w", err))
	}

	shippers, err := shipperRepo.New(ctx, database)
	if err != nil {
		return fail(fmt.Errorf("shipper repository: %w", err))
	}

	providerConfigs, err := providerConfigRepo.New(ctx, database)
	if err != nil {
		return fail(fmt.Errorf("provider config repository: %w", err))
	}

	gate, err := capacitygate.New(database)
	if err != nil {
		return fail(fmt.Errorf("capacity gate: %w", err))
	}

	dispatcher := dispatch.New(shippers, shippers, gate)

	// Shipping facade.
	credentialVault := vault.New([]byte(cfg.GetString("SHIPPING_VAULT_SECRET")))
	shippingFacade := facade.New(log, newRegistry(), providerConfigs, credentialVault, cache, retrier.New())

	// Event pipeline: durable Kafka publisher teed with the in-process
	// fan-out feeding the push hub.
	brokers := cfg.GetStringSlice("WATERMILL_KAFKA_BROKERS")

	kafkaPublisher, err := eventskafka.New(brokers, log)
	if err != nil {
		return fail(fmt.Errorf("kafka publisher: %w", err))
	}
	cleanups = append(cleanups, func() {
		if err := kafkaPublisher.Close(); err != nil {
			log.Warn("failed to close kafka publisher", slog.Any("error", err))
		}
	})

	inMemory := events.NewInMemoryPublisher()
	publisher := events.Fanout{kafkaPublisher, inMemory}

	hub := push.New(log)
	push.RegisterRelays(inMemory, hub)

	// Usecase handlers.
	dispatchHandler, err := dispatchshipment.NewHandler(log, unitOfWork, shipments, dispatcher, publisher)
	if err != nil {
		return fail(err)
	}

	orderGet, err := getorder.NewHandler(unitOfWork, orders)
	if err != nil {
		return fail(err)
	}

	orderList, err := listbycustomer.NewHandler(unitOfWork, orders)
	if err != nil {
		return fail(err)
	}

	orderCancelHandler, err := orderCancel.NewHandler(log, unitOfWork, orders, publisher)
	if err != nil {
		return fail(err)
	}

	orderConfirmHandler, err := orderConfirm.NewHandler(log, unitOfWork, orders, publisher)
	if err != nil {
		return fail(err)
	}

	orderCompleteHandler, err := orderComplete.NewHandler(log, unitOfWork, orders, publisher)
	if err != nil {
		return fail(err)
	}

	orderMarkRefundedHandler, err := orderMarkRefunded.NewHandler(log, unitOfWork, orders, publisher)
	if err != nil {
		return fail(err)
	}

	paymentSucceeded, err := orderApplyPaymentSucceeded.NewHandler(log, unitOfWork, orders, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	paymentFailed, err := orderApplyPaymentFailed.NewHandler(log, unitOfWork, orders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderConfirmHandler, err := subOrderConfirm.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderProcessHandler, err := subOrderProcess.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderReadyHandler, err := subOrderMarkReadyToShip.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderCancelHandler, err := subOrderCancelByPartner.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderReceiptHandler, err := subOrderConfirmReceipt.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderRequestReturnHandler, err := subOrderRequestReturn.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderApproveReturnHandler, err := subOrderApproveReturn.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderMarkShippingHandler, err := subOrderMarkShipping.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderMarkDeliveredHandler, err := subOrderMarkDelivered.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderMarkReturnedHandler, err := subOrderMarkReturned.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	subOrderRefundHandler, err := subOrderRefund.NewHandler(log, unitOfWork, subOrders, publisher)
	if err != nil {
		return fail(err)
	}

	shipmentPickupHandler, err := shipmentMarkPickedUp.NewHandler(log, unitOfWork, shipments, publisher)
	if err != nil {
		return fail(err)
	}

	shipmentDeliverHandler, err := shipmentMarkDelivered.NewHandler(log, unitOfWork, shipments, publisher)
	if err != nil {
		return fail(err)
	}

	shipmentFailHandler, err := shipmentMarkFailed.NewHandler(log, unitOfWork, shipments, publisher)
	if err != nil {
		return fail(err)
	}

	shipmentCODHandler, err := shipmentCollectCOD.NewHandler(log, unitOfWork, shipments)
	if err != nil {
		return fail(err)
	}

	shipmentCancelHandler, err := shipmentCancel.NewHandler(log, unitOfWork, shipments, shippingFacade, publisher)
	if err != nil {
		return fail(err)
	}

	webhookHandler, err := shipmentApplyWebhook.NewHandler(log, unitOfWork, shipments, shippingFacade, publisher)
	if err != nil {
		return fail(err)
	}

	trackingHandler, err := gettracking.NewHandler(log, shipments, subOrders, shippingFacade)
	if err != nil {
		return fail(err)
	}

	ingestHandler, err := ingestsample.NewHandler(log, unitOfWork, shippers, cache, hub)
	if err != nil {
		return fail(err)
	}

	createShipmentHandler, err := shipmentCreate.NewHandler(log, unitOfWork, shipments, shippingFacade, dispatchHandler, publisher)
	if err != nil {
		return fail(err)
	}

	// Aggregate-completion projection: every SubOrder
	// reaching a terminal state re-evaluates the parent Order. An Order not
	// yet eligible fails the transition check, which is the expected no-op.
	completeOrder := func(ctx context.Context, orderID uuid.UUID) error {
		err := orderCompleteHandler.Handle(ctx, orderComplete.NewCommand(orderID))
		if err != nil && !errors.Is(err, domain.ErrInvalidStatusTransition) {
			return err
		}

		return nil
	}

	events.SubscribeTyped(inMemory, func(ctx context.Context, event suborderv1.SubOrderCompleted) error {
		return completeOrder(ctx, event.OrderID)
	})
	events.SubscribeTyped(inMemory, func(ctx context.Context, event suborderv1.SubOrderStatusChanged) error {
		if event.To != suborderv1.StatusCancelled && event.To != suborderv1.StatusDelivered {
			return nil
		}

		return completeOrder(ctx, event.OrderID)
	})

	// HTTP surface.
	httpServer := omshttp.NewServer(log, cfg.GetString("API_HTTP_ADDR"),
		omshttp.NewOrderHandlers(log,
			query(log, orderGet),
			query(log, orderList),
			commandWithResult(log, orderCancelHandler),
			command(log, orderConfirmHandler),
			command(log, orderMarkRefundedHandler),
		),
		omshttp.NewSubOrderHandlers(log,
			command(log, subOrderConfirmHandler),
			command(log, subOrderProcessHandler),
			command(log, subOrderReadyHandler),
			command(log, subOrderCancelHandler),
			command(log, subOrderReceiptHandler),
			command(log, subOrderRequestReturnHandler),
			command(log, subOrderApproveReturnHandler),
			command(log, subOrderRefundHandler),
		),
		omshttp.NewShipmentHandlers(log,
			command(log, shipmentPickupHandler),
			command(log, shipmentDeliverHandler),
			command(log, shipmentFailHandler),
			command(log, shipmentCODHandler),
			command(log, shipmentCancelHandler),
			query(log, trackingHandler),
		),
		omshttp.NewShippingHandlers(log, shippingFacade,
			command(log, webhookHandler),
			commandWithResult(log, createShipmentHandler),
			command(log, dispatchHandler),
		),
		omshttp.NewLocationHandlers(log, command(log, ingestHandler), hub),
	)
	httpServer.Start()
	cleanups = append(cleanups, func() {
		if err := httpServer.Shutdown(context.Background()); err != nil {
			log.Warn("http server shutdown failed", slog.Any("error", err))
		}
	})

	// Kafka projection: shipment.status_changed -> SubOrder FSM.
	consumer, err := eventskafka.NewShipmentStatusConsumer(brokers, log, shipments,
		subOrderMarkShippingHandler, subOrderMarkDeliveredHandler,
		subOrderMarkReturnedHandler, subOrderCancelHandler)
	if err != nil {
		log.Warn("failed to create shipment status consumer, running without projection", slog.Any("error", err))
	} else if err := consumer.Start(ctx); err != nil {
		log.Warn("failed to start shipment status consumer", slog.Any("error", err))
	} else {
		cleanups = append(cleanups, func() {
			if err := consumer.Close(); err != nil {
				log.Warn("failed to close shipment status consumer", slog.Any("error", err))
			}
		})
	}

	// Payments queue projection: payment.succeeded / payment.failed ->
	// Order state machine.
	paymentConsumer, err := eventskafka.NewPaymentConsumer(brokers, log, paymentSucceeded, paymentFailed)
	if err != nil {
		log.Warn("failed to create payment consumer, running without payment projection", slog.Any("error", err))
	} else if err := paymentConsumer.Start(ctx); err != nil {
		log.Warn("failed to start payment consumer", slog.Any("error", err))
	} else {
		cleanups = append(cleanups, func() {
			if err := paymentConsumer.Close(); err != nil {
				log.Warn("failed to close payment consumer", slog.Any("error", err))
			}
		})
	}

	// Temporal: daily leg-counter reset.
	temporalClient, temporalCleanup, err := temporal.New(ctx, log, cfg)

	var resetWorker worker.Worker

	if err != nil {
		log.Warn("temporal unavailable, daily reset worker not started", slog.Any("error", err))
	} else {
		cleanups = append(cleanups, temporalCleanup)

		cutovers := map[location.Region]string{
			location.RegionNorth:   cfg.GetString("DISPATCH_RESET_TZ_NORTH"),
			location.RegionCentral: cfg.GetString("DISPATCH_RESET_TZ_CENTRAL"),
			location.RegionSouth:   cfg.GetString("DISPATCH_RESET_TZ_SOUTH"),
		}

		resetWorker, err = dispatch_worker.New(ctx, temporalClient, log,
			dispatchActivities.New(shippers, gate), cutovers)
		if err != nil {
			return fail(fmt.Errorf("dispatch reset worker: %w", err))
		}
	}

	service := &OMSService{
		Log:    log,
		Config: cfg,

		Tracer:        tracer,
		Monitoring:    monitoring,
		PprofEndpoint: pprofEndpoint,

		DB:  database,
		UoW: unitOfWork,

		OrderRepo:          orders,
		SubOrderRepo:       subOrders,
		ShipmentRepo:       shipments,
		ShipperRepo:        shippers,
		ProviderConfigRepo: providerConfigs,

		Facade:     shippingFacade,
		Dispatcher: dispatcher,

		HTTPServer: httpServer,
		PushHub:    hub,
		consumer:   consumer,

		temporalClient: temporalClient,
		resetWorker:    resetWorker,
	}

	return service, cleanup, nil
}
