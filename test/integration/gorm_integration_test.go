package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"run-coach-be/internal/entity"
	"run-coach-be/internal/repository/unitofwork"
	"run-coach-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.RunnerProfileRepository())
	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.ConversationMetaRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Chat Message Repository", func(t *testing.T) {
		count, err := uow.ChatMessageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chat message count: %d", count)
	})
}

func TestChatMessageOrdering(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatMessageRepository()

	userId := uuid.New()
	base := time.Now().Truncate(time.Millisecond)

	// Same server timestamp: client time breaks the tie.
	msgs := []*entity.ChatMessage{
		{Id: uuid.New(), UserId: userId, Sender: entity.SenderUser, Text: "a", ClientAt: 100, ServerAt: base},
		{Id: uuid.New(), UserId: userId, Sender: entity.SenderUser, Text: "b", ClientAt: 200, ServerAt: base},
		{Id: uuid.New(), UserId: userId, Sender: entity.SenderBot, Text: "c", ServerAt: base.Add(time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, repo.Create(ctx, m))
	}

	recent, err := repo.FindRecentByUserId(ctx, userId, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	assert.Equal(t, "a", recent[0].Text)
	assert.Equal(t, "b", recent[1].Text)
	assert.Equal(t, "c", recent[2].Text)

	// Window smaller than history keeps the newest, still oldest-first.
	recent, err = repo.FindRecentByUserId(ctx, userId, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Text)
	assert.Equal(t, "c", recent[1].Text)
}
