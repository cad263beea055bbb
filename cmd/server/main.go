package main

import (
	"github.com/joho/godotenv"

	"fleetdesk/internal/directory"
	driverhandler "fleetdesk/internal/drivers/handler"
	driverrepo "fleetdesk/internal/drivers/repository"
	driverservice "fleetdesk/internal/drivers/service"
	drivervalidator "fleetdesk/internal/drivers/validator"
	profhandler "fleetdesk/internal/professionals/handler"
	profrepo "fleetdesk/internal/professionals/repository"
	profservice "fleetdesk/internal/professionals/service"
	profvalidator "fleetdesk/internal/professionals/validator"
	schedulehandler "fleetdesk/internal/schedules/handler"
	"fleetdesk/internal/schedules/notifier"
	schedulerepo "fleetdesk/internal/schedules/repository"
	scheduleservice "fleetdesk/internal/schedules/service"
	schedulevalidator "fleetdesk/internal/schedules/validator"
	userhandler "fleetdesk/internal/users/handler"
	userrepo "fleetdesk/internal/users/repository"
	userservice "fleetdesk/internal/users/service"
	"fleetdesk/pkg/app"
	"fleetdesk/pkg/auth"
	"fleetdesk/pkg/config"
	"fleetdesk/pkg/kafka"
	kafkaconfig "fleetdesk/pkg/kafka/config"
	"fleetdesk/pkg/mailer"
	"fleetdesk/pkg/middleware"
	"fleetdesk/pkg/model"
	"fleetdesk/pkg/storage"
)

const ServiceName = "fleetdesk"

func main() {
	// running with plain environment variables is fine
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting FleetDesk service")

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)

	authenticate := middleware.Authenticate(tokens, cfg.Log)
	readGuard := middleware.Chain(
		authenticate,
		middleware.RequireRole(cfg.Log,
			model.RoleEmployee, model.RoleManager, model.RoleAdmin, model.RoleSuperAdmin),
	)
	writeGuard := middleware.Chain(
		authenticate,
		middleware.RequireRole(cfg.Log, model.RoleAdmin, model.RoleSuperAdmin),
	)
	adminGuard := middleware.Chain(
		authenticate,
		middleware.RequireRole(cfg.Log, model.RoleSuperAdmin),
	)

	uploader, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize media storage", "error", err)
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPUser,
	}, cfg.Log)

	producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.ScheduleEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	defer producer.Close()

	driverRepo := driverrepo.NewMongoDriverRepository(cfg)
	driverService := driverservice.NewDriverService(
		driverRepo,
		drivervalidator.NewDriverValidator(cfg.Log),
		uploader,
		cfg,
	)

	professionalRepo := profrepo.NewMongoProfessionalRepository(cfg)
	professionalService := profservice.NewProfessionalService(
		professionalRepo,
		profvalidator.NewProfessionalValidator(cfg.Log),
		uploader,
		cfg,
	)

	scheduleRepo := schedulerepo.NewMongoScheduleRepository(cfg)
	lockRepo := schedulerepo.NewSlotLockRepository(cfg)
	scheduleService := scheduleservice.NewScheduleService(
		scheduleRepo,
		lockRepo,
		directory.New(driverRepo, professionalRepo),
		schedulevalidator.NewBookingValidator(cfg.Log),
		notifier.New(mail, producer, cfg),
		cfg,
	)

	userRepo := userrepo.NewMongoUserRepository(cfg)
	userService := userservice.NewUserService(userRepo, tokens, mail, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		schedulehandler.NewScheduleHandler(scheduleService, readGuard, writeGuard, cfg.Log),
		driverhandler.NewDriverHandler(driverService, readGuard, writeGuard, cfg.Log),
		profhandler.NewProfessionalHandler(professionalService, readGuard, writeGuard, cfg.Log),
		userhandler.NewUserHandler(userService, adminGuard, cfg.Log),
	)
	serverApp.Run()
}
