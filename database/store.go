package database

import (
	"context"
	"fmt"

	"agenda/config"
	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	professionalRepo "agenda/database/repository/professional"
	"agenda/utils"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
	DriverMemory    = "memory"
)

// Store bundles the repositories of one driver.
type Store struct {
	Driver        string
	Professionals professionalRepo.ProfessionalRepository
	Appointments  appointmentRepo.AppointmentRepository
	Blocks        blockRepo.BlockRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// NewStore opens the driver named by STORE_DRIVER. app is only used by the
// firestore driver.
func NewStore(ctx context.Context, app *firebase.App) (*Store, error) {
	switch driver := config.AppConfig.StoreDriver; driver {
	case DriverFirestore, "":
		if app == nil {
			return nil, fmt.Errorf("firestore driver requires a firebase app")
		}
		client, err := InitFirestore(ctx, app)
		if err != nil {
			return nil, err
		}
		return NewFirestoreStore(client), nil
	case DriverMongo:
		client, err := InitDB(ctx)
		if err != nil {
			return nil, err
		}
		store := NewMongoStore(client, client.Database(config.AppConfig.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		utils.GetLogger().Warn("Using the in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func NewFirestoreStore(client *firestore.Client) *Store {
	return &Store{
		Driver:        DriverFirestore,
		Professionals: professionalRepo.NewFirestoreProfessionalRepo(client),
		Appointments:  appointmentRepo.NewFirestoreAppointmentRepo(client),
		Blocks:        blockRepo.NewFirestoreBlockRepo(client),
		ping: func(ctx context.Context) error {
			_, err := client.Collection("config").Doc("master").Get(ctx)
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		},
		close: func(context.Context) error { return client.Close() },
	}
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Driver:        DriverMongo,
		Professionals: professionalRepo.NewMongoProfessionalRepo(db),
		Appointments:  appointmentRepo.NewMongoAppointmentRepo(db),
		Blocks:        blockRepo.NewMongoBlockRepo(db),
		ping:          func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:         client.Disconnect,
	}
}

func NewMemoryStore() *Store {
	return &Store{
		Driver:        DriverMemory,
		Professionals: professionalRepo.NewMemoryProfessionalRepo(),
		Appointments:  appointmentRepo.NewMemoryAppointmentRepo(),
		Blocks:        blockRepo.NewMemoryBlockRepo(),
	}
}

// EnsureIndexes runs EnsureIndexes on every repository that has one.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, repo := range []any{s.Professionals, s.Appointments, s.Blocks} {
		if ix, ok := repo.(indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				return err
			}
		}
	}
	utils.GetLogger().Info("Store indexes ensured", zap.String("driver", s.Driver))
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
