package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "shop")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := Load(logger.NewDiscardLogger())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, "localhost", c.Db.Host)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "order-events", c.Kafka.Topic)
	assert.Equal(t, time.Hour, c.Auth.TokenTTL)
	assert.False(t, c.Order.RestockOnCancel)
	assert.Equal(t, 3, c.Order.CheckoutMaxRetries)
	assert.Equal(t, 24*time.Hour, c.Redis.IdempotencyTTL)
}

func TestLoad_RestockOnCancel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ORDER_RESTOCK_ON_CANCEL", "true")

	c, err := Load(logger.NewDiscardLogger())
	require.NoError(t, err)
	assert.True(t, c.Order.RestockOnCancel)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load(logger.NewDiscardLogger())
	require.Error(t, err)
}

func TestParseIntEnv_Invalid(t *testing.T) {
	t.Setenv("KAFKA_PARTITIONS", "three")

	_, err := parseIntEnv("KAFKA_PARTITIONS", 3)
	assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
}

func TestLoad_AdminWithoutPassword(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load(logger.NewDiscardLogger())
	require.Error(t, err)
}
